// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mei

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// Header is the prolog written in front of every converted document: the XML
// declaration followed by the RELAX NG and Schematron schema associations
// for MEI 5.1.
const Header = `<?xml version="1.0" encoding="UTF-8"?>
<?xml-model href="https://music-encoding.org/schema/5.1/mei-all.rng" type="application/xml" schematypens="http://relaxng.org/ns/structure/1.0"?>
<?xml-model href="https://music-encoding.org/schema/5.1/mei-all.rng" type="application/xml" schematypens="http://purl.oclc.org/dsdl/schematron"?>
`

// Serialize renders doc with Header as its prolog. Any processing
// instructions already present at document level, including the source's own
// declaration and xml-model hints, are dropped so the header appears once.
// doc is not modified.
func Serialize(doc *etree.Document) ([]byte, error) {
	body := doc.Copy()
	stripProlog(body)

	data, err := body.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(Header) + len(data))
	buf.WriteString(Header)
	buf.Write(data)
	return buf.Bytes(), nil
}

// stripProlog removes document-level processing instructions and the
// whitespace between top-level tokens.
func stripProlog(doc *etree.Document) {
	for i := len(doc.Child) - 1; i >= 0; i-- {
		switch t := doc.Child[i].(type) {
		case *etree.ProcInst:
			doc.RemoveChildAt(i)
		case *etree.CharData:
			if t.IsWhitespace() {
				doc.RemoveChildAt(i)
			}
		}
	}
}

// WriteFile serializes doc with Serialize and writes it to path, creating
// parent directories. The file appears only once fully written.
func WriteFile(doc *etree.Document, path string) error {
	data, err := Serialize(doc)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Save writes doc to path exactly as held in memory, prolog included.
// It is used for in-place edits that must not alter the document header.
func Save(doc *etree.Document, path string) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes data through a temporary file in the destination
// directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".lutetab-*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: writeErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "close", Path: path, Err: closeErr}
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
