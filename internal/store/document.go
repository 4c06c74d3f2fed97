package store

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"lazytodo/internal/model"
)

var (
	sectionPattern  = regexp.MustCompile(`^##\s+(.*)$`)
	checkboxPattern = regexp.MustCompile(`^(\s*)([-*])\s+\[([ xX])\]\s*(.*)$`)
)

// File is a task list persisted as plain text at Path.
type File struct {
	Path string
}

// Load reads and parses the file. A missing file is an empty document with a zero
// modification time; it gets created on the first Save.
func (f File) Load() (model.Document, time.Time, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Document{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, ioErr("read", f.Path, err)
	}
	doc := Parse(string(data))
	modTime, _, err := f.ModTime()
	if err != nil {
		return doc, time.Time{}, err
	}
	return doc, modTime, nil
}

// Save serializes doc to disk and returns the new modification time.
func (f File) Save(doc model.Document) (time.Time, error) {
	if err := atomicWriteFile(f.Path, []byte(Serialize(doc)), 0o644); err != nil {
		return time.Time{}, ioErr("write", f.Path, err)
	}
	modTime, _, err := f.ModTime()
	return modTime, err
}

// ModTime stats the file. ok is false (with a nil error) when the file does not exist.
func (f File) ModTime() (modTime time.Time, ok bool, err error) {
	info, err := os.Stat(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, ioErr("stat", f.Path, err)
	}
	return info.ModTime(), true, nil
}

// Parse keeps only section headers and checkbox tasks; every other line is dropped.
func Parse(data string) model.Document {
	doc := model.Document{}
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r", ""), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			doc = append(doc, model.Section{Title: m[1]})
			continue
		}
		m := checkboxPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		doc = append(doc, model.Task{
			Indent:    m[1],
			Bullet:    m[2],
			Completed: strings.EqualFold(m[3], "x"),
			Text:      m[4],
		})
	}
	return doc
}

// Serialize joins item lines with "\n". Non-empty output always ends in a newline.
func Serialize(doc model.Document) string {
	if len(doc) == 0 {
		return ""
	}
	var b strings.Builder
	for _, it := range doc {
		b.WriteString(it.Line())
		b.WriteString("\n")
	}
	return b.String()
}
