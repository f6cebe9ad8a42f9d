// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tablature

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Convention is a lute tablature notation convention.
type Convention int

const (
	German Convention = iota + 1
	French
	Italian
)

// SourceSuffix marks files eligible for conversion.
const SourceSuffix = "GLT.mei"

// CompanionSuffix marks common music notation companions that are copied
// through unchanged.
const CompanionSuffix = "CMN.mei"

// Targets lists the conventions produced from every German source, in the
// order they are written.
func Targets() []Convention {
	return []Convention{French, Italian}
}

func (c Convention) String() string {
	switch c {
	case German:
		return "german"
	case French:
		return "french"
	case Italian:
		return "italian"
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// Abbr is the short label used in file names, output folders and the
// document's title abbreviation.
func (c Convention) Abbr() string {
	switch c {
	case German:
		return "GLT"
	case French:
		return "FLT"
	case Italian:
		return "ILT"
	}
	return ""
}

// NotationType is the staffDef@notationtype value for c.
func (c Convention) NotationType() string {
	switch c {
	case German:
		return "tab.lute.german"
	case French:
		return "tab.lute.french"
	case Italian:
		return "tab.lute.italian"
	}
	return ""
}

// Expansion is the abbr@expan value for c.
func (c Convention) Expansion() string {
	switch c {
	case German:
		return "German Lute Tablature"
	case French:
		return "French Lute Tablature"
	case Italian:
		return "Italian Lute Tablature"
	}
	return ""
}

// ParseConvention accepts a convention name or abbreviation, case-insensitively.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "german", "glt":
		return German, nil
	case "french", "flt":
		return French, nil
	case "italian", "ilt":
		return Italian, nil
	}
	return 0, fmt.Errorf("unknown tablature convention %q", s)
}

// IsSource reports whether the file name carries the German tablature suffix.
func IsSource(name string) bool {
	return strings.HasSuffix(filepath.Base(name), SourceSuffix)
}

// OutputName derives the output file name for target from a source path:
// every occurrence of GLT in the base name becomes the target abbreviation.
func OutputName(source string, target Convention) string {
	return strings.ReplaceAll(filepath.Base(source), German.Abbr(), target.Abbr())
}
