// Package documents loads the project documents, keeps them cached and
// answers queries from the best matching passage.
package documents

import (
	"context"
	"strings"
)

// Document is a named text extracted from a source file.
type Document struct {
	Name string
	Text string
}

// NewDocument builds a Document with normalized text. NUL bytes left behind
// by PDF extraction are dropped.
func NewDocument(name, text string) Document {
	return Document{Name: name, Text: strings.ReplaceAll(text, "\x00", "")}
}

// Loader returns every available document. Individual failures are skipped
// by the loader itself.
type Loader interface {
	LoadAll(ctx context.Context) ([]Document, error)
}
