// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package typo corrects known misspellings in the bibliographic title
// (monogr/title) of MEI files, rewriting each affected file in place.
package typo

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/lutetab/internal/mei"
	"github.com/pdiddy/lutetab/pkg/types"
)

// Result is the outcome of checking one file.
type Result string

const (
	ResultFixed   Result = "fixed"
	ResultNoTitle Result = "no-title"
	ResultNoTypo  Result = "no-typo"
	ResultFailed  Result = "failed"
)

// DefaultExclude is skipped when TypoConfig.Exclude is empty.
var DefaultExclude = []string{"converted"}

// DefaultReplacements is used when TypoConfig.Replacements is empty.
var DefaultReplacements = []types.Replacement{
	{From: "kustliche vnerweisung", To: "kunstliche vnderweisung"},
}

// Summary counts results over a tree.
type Summary struct {
	Fixed   int
	NoTitle int
	NoTypo  int
	Failed  int
}

// Fixer applies the configured replacements.
type Fixer struct {
	cfg types.TypoConfig
	log *zap.Logger
	w   io.Writer
}

// New returns a Fixer with defaults filled in. Progress lines go to w.
func New(cfg types.TypoConfig, log *zap.Logger, w io.Writer) *Fixer {
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = DefaultExclude
	}
	if len(cfg.Replacements) == 0 {
		cfg.Replacements = DefaultReplacements
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fixer{cfg: cfg, log: log, w: w}
}

// Apply runs every replacement over s after NFC normalization and reports
// whether anything changed.
func (f *Fixer) Apply(s string) (string, bool) {
	out := norm.NFC.String(s)
	for _, r := range f.cfg.Replacements {
		if r.From == "" {
			continue
		}
		out = strings.ReplaceAll(out, norm.NFC.String(r.From), norm.NFC.String(r.To))
	}
	return out, out != norm.NFC.String(s)
}

// FixFile corrects the first monogr/title of the file at path. The file is
// rewritten only when a replacement applied and DryRun is off.
func (f *Fixer) FixFile(path string) (Result, error) {
	doc, err := mei.Load(path)
	if err != nil {
		return ResultFailed, err
	}

	title := mei.FindPath(doc.Root(), mei.Monogr, mei.Title)
	if title == nil {
		return ResultNoTitle, nil
	}

	fixed, changed := f.Apply(title.Text())
	if !changed {
		return ResultNoTypo, nil
	}
	title.SetText(fixed)

	if f.cfg.DryRun {
		return ResultFixed, nil
	}
	if err := mei.Save(doc, path); err != nil {
		return ResultFailed, err
	}
	return ResultFixed, nil
}

// Discover returns every .mei file under root in lexical order, skipping
// hidden directories and directories named in exclude.
func Discover(root string, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || slices.Contains(exclude, d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && filepath.Ext(path) == ".mei" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// Run fixes every discovered file. Files that fail are reported and counted;
// the error is reserved for discovery failures and cancellation.
func (f *Fixer) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	files, err := Discover(f.cfg.Root, f.cfg.Exclude)
	if err != nil {
		return sum, err
	}
	fmt.Fprintf(f.w, "Processing %d MEI files (excluding %s)\n", len(files), strings.Join(f.cfg.Exclude, ", "))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := f.FixFile(path)
		f.log.Debug("checked title", zap.String("path", path), zap.String("result", string(res)))
		switch res {
		case ResultFixed:
			sum.Fixed++
			if f.cfg.DryRun {
				fmt.Fprintf(f.w, "would fix: %s\n", path)
			}
		case ResultNoTitle:
			sum.NoTitle++
		case ResultNoTypo:
			sum.NoTypo++
		default:
			sum.Failed++
			fmt.Fprintf(f.w, "failed:    %s (%v)\n", path, err)
		}
	}

	fmt.Fprintf(f.w, "\nFixed %d files total\n", sum.Fixed)
	return sum, nil
}
