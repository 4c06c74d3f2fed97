package cli

import "fmt"

type notFoundError struct {
	kind  string
	index int
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found at index %d", e.kind, e.index)
}

func errNotFound(kind string, index int) error {
	return notFoundError{kind: kind, index: index}
}

// missingFileError is returned when a path given explicitly does not exist.
type missingFileError struct {
	path string
}

func (e missingFileError) Error() string {
	return fmt.Sprintf("file %s does not exist", e.path)
}
