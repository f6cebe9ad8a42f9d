// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tablature rewrites German lute tablature MEI documents into the
// French and Italian conventions.
//
// A conversion runs on a private copy of the source tree and never touches
// the caller's document, so one parsed source can feed every target.
// Conversion removes rest elements (a tabGrp that loses a rest gains a
// tabDurSym if it has none), strips tab.line from notes and duration
// symbols, normalizes the first staffDef and relabels the title
// abbreviation.
package tablature

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/pdiddy/lutetab/internal/mei"
)

// outputLines is the course count declared by every converted staffDef.
const outputLines = "6"

// ErrUnsupportedTarget is returned for targets other than French and Italian.
var ErrUnsupportedTarget = errors.New("unsupported target convention")

// StructuralError reports a document that lacks an element the conversion
// requires.
type StructuralError struct {
	Element string
	Reason  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: <%s> %s", e.Element, e.Reason)
}

// Stats describes the edits made by one conversion.
type Stats struct {
	RestsRemoved    int
	MarkersAdded    int
	TabLinesRemoved int
	TitleRelabeled  bool
}

// Transform returns a copy of doc rewritten for target. doc is not modified.
func Transform(doc *etree.Document, target Convention) (*etree.Document, error) {
	out, _, err := TransformWithStats(doc, target)
	return out, err
}

// TransformWithStats is Transform that also reports what was changed.
func TransformWithStats(doc *etree.Document, target Convention) (*etree.Document, Stats, error) {
	if target != French && target != Italian {
		return nil, Stats{}, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}

	out := doc.Copy()
	root := out.Root()
	if root == nil {
		return nil, Stats{}, &StructuralError{Element: "mei", Reason: "root element missing"}
	}

	var stats Stats
	plan := EliminateRests(root)
	stats.RestsRemoved = plan.Removed()
	stats.MarkersAdded = plan.Added()
	stats.TabLinesRemoved = StripTabLines(root)

	if err := NormalizeStaff(root, target); err != nil {
		return nil, Stats{}, err
	}
	stats.TitleRelabeled = RelabelTitle(root, target)

	return out, stats, nil
}

// StripTabLines removes tab.line from every note and tabDurSym under root and
// returns how many attributes were removed. Running it again removes nothing.
func StripTabLines(root *etree.Element) int {
	removed := 0
	mei.Walk(root, func(el *etree.Element) bool {
		switch mei.TagOf(el) {
		case mei.Note, mei.TabDurSym:
			if el.RemoveAttr(mei.AttrTabLine) != nil {
				removed++
			}
		}
		return true
	})
	return removed
}

// NormalizeStaff rewrites the first staffDef under root for target: six
// lines, no German layout hints, and the target's notation type.
func NormalizeStaff(root *etree.Element, target Convention) error {
	staff := mei.Find(root, mei.StaffDef)
	if staff == nil {
		return &StructuralError{Element: mei.StaffDef.Local(), Reason: "not found"}
	}
	staff.CreateAttr(mei.AttrLines, outputLines)
	staff.RemoveAttr(mei.AttrTabAlign)
	staff.RemoveAttr(mei.AttrTabAnchorLine)
	staff.CreateAttr(mei.AttrNotationType, target.NotationType())
	return nil
}

// RelabelTitle sets the title/titlePart/abbr text and expansion for target.
// It reports false when the document has no such element.
func RelabelTitle(root *etree.Element, target Convention) bool {
	abbr := mei.FindPath(root, mei.Title, mei.TitlePart, mei.Abbr)
	if abbr == nil {
		return false
	}
	abbr.SetText(target.Abbr())
	abbr.CreateAttr(mei.AttrExpan, target.Expansion())
	return true
}
