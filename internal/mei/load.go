// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mei

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/beevik/etree"
)

// errNoRoot is wrapped in a ParseError when the input holds no element.
var errNoRoot = errors.New("document has no root element")

// Load reads and parses the MEI document at path. Malformed XML yields a
// *ParseError; an unreadable file yields an *IOError. The document is not
// validated against any schema.
func Load(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return Parse(bytes.NewReader(data), path)
}

// Parse reads a document from r. name labels errors.
func Parse(r io.Reader, name string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Path: name, Err: errNoRoot}
	}
	return doc, nil
}
