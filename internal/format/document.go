package format

import (
	"errors"
	"io"

	"lazytodo/internal/model"
	"lazytodo/internal/store"
)

// Item is the output shape of one document row.
type Item struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Indent    int    `json:"indent,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
}

// Listing is the output shape of a whole document.
type Listing struct {
	Path      string `json:"path"`
	Open      int    `json:"open"`
	Completed int    `json:"completed"`
	Items     []Item `json:"items"`
}

func NewListing(path string, doc model.Document) Listing {
	open, completed := doc.Counts()
	l := Listing{Path: path, Open: open, Completed: completed, Items: make([]Item, 0, len(doc))}
	for i, it := range doc {
		switch it := it.(type) {
		case model.Task:
			done := it.Completed
			l.Items = append(l.Items, Item{
				Index:     i,
				Kind:      "task",
				Text:      it.Text,
				Indent:    model.IndentLevel(it.Indent),
				Completed: &done,
			})
		case model.Section:
			l.Items = append(l.Items, Item{Index: i, Kind: "section", Text: it.Title})
		}
	}
	return l
}

// DocumentOptions controls WriteDocument.
type DocumentOptions struct {
	Format string
	Pretty bool
	// Render passes Markdown output through the terminal renderer.
	Render bool
	// Width is the render wrap width; <= 0 uses the default.
	Width int
	// Style is a glamour standard style name; empty selects by theme.
	Style string
}

// WriteDocument writes doc as json, edn or md. Markdown is the persisted file
// form, unless Render is set.
func WriteDocument(w io.Writer, path string, doc model.Document, opts DocumentOptions) error {
	switch opts.Format {
	case "md", "markdown":
		md := Markdown(doc)
		if opts.Render {
			out, err := RenderMarkdown(md, opts.Width, opts.Style)
			if err != nil {
				return err
			}
			md = out + "\n"
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		if opts.Render {
			return errors.New("--render requires --format md")
		}
		return Write(w, NewListing(path, doc), opts.Format, opts.Pretty)
	}
}

// Markdown returns the persisted text of doc.
func Markdown(doc model.Document) string {
	return store.Serialize(doc)
}
