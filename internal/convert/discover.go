// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/lutetab/internal/tablature"
)

// Kind classifies a discovered file.
type Kind int

const (
	// KindOther is a .mei file that is neither a source nor a companion.
	KindOther Kind = iota
	// KindSource is a *GLT.mei file to convert.
	KindSource
	// KindCompanion is a *CMN.mei file copied as-is.
	KindCompanion
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindCompanion:
		return "companion"
	default:
		return "other"
	}
}

// Candidate is one .mei file found under the source directory.
type Candidate struct {
	Path string // absolute path
	Rel  string // path relative to the source directory
	Kind Kind
}

// KindOf classifies a file by its base name.
func KindOf(name string) Kind {
	switch {
	case tablature.IsSource(name):
		return KindSource
	case strings.HasSuffix(filepath.Base(name), tablature.CompanionSuffix):
		return KindCompanion
	default:
		return KindOther
	}
}

// Discover walks sourceDir and returns every .mei file in lexical order.
// The output directory and hidden directories are never entered. When
// prefix is set, only top-level folders whose name starts with it are
// searched and files directly in sourceDir are ignored.
func Discover(sourceDir, outputDir, prefix string) ([]Candidate, error) {
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory %s is not a directory", sourceDir)
	}

	out := ""
	if outputDir != "" {
		if out, err = filepath.Abs(outputDir); err != nil {
			return nil, fmt.Errorf("resolving output directory: %w", err)
		}
	}

	var found []Candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		topLevel := filepath.Dir(path) == root

		if d.IsDir() {
			switch {
			case path == root:
				return nil
			case path == out, strings.HasPrefix(d.Name(), "."):
				return filepath.SkipDir
			case prefix != "" && topLevel && !strings.HasPrefix(d.Name(), prefix):
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || filepath.Ext(d.Name()) != ".mei" {
			return nil
		}
		if prefix != "" && topLevel {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found = append(found, Candidate{Path: path, Rel: rel, Kind: KindOf(d.Name())})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", sourceDir, err)
	}
	return found, nil
}
