package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes v in the requested format.
//
// Supported formats:
// - json (default)
// - edn
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	default:
		return unknownFormatError{format: format}
	}
}

// WriteJSON writes strict JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

type unknownFormatError struct {
	format string
}

func (e unknownFormatError) Error() string {
	return fmt.Sprintf("unknown format: %s", e.format)
}
