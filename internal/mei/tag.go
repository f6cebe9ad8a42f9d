// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mei loads, queries and writes Music Encoding Initiative documents.
// Documents are held as etree trees; element identity is resolved against
// the MEI namespace URI rather than the literal prefix used in the source,
// so <mei:rest> and a default-namespaced <rest> compare equal while a <rest>
// from any other namespace never matches.
package mei

import "github.com/beevik/etree"

// Namespace is the MEI namespace URI.
const Namespace = "http://www.music-encoding.org/ns/mei"

// Attribute names used by the tablature tools.
const (
	AttrTabLine       = "tab.line"
	AttrLines         = "lines"
	AttrNotationType  = "notationtype"
	AttrTabAlign      = "tab.align"
	AttrTabAnchorLine = "tab.anchorline"
	AttrExpan         = "expan"
)

// QName is an element name with its prefix resolved to a namespace URI.
type QName struct {
	Space string
	Local string
}

// NameOf returns the resolved qualified name of e.
func NameOf(e *etree.Element) QName {
	return QName{Space: e.NamespaceURI(), Local: e.Tag}
}

// Tag identifies the MEI element kinds the tools act on. Everything else,
// including elements outside the MEI namespace, is Other.
type Tag uint8

const (
	Other Tag = iota
	Rest
	TabGrp
	TabDurSym
	Note
	StaffDef
	Title
	TitlePart
	Abbr
	Monogr
)

var localNames = [...]string{
	Other:     "",
	Rest:      "rest",
	TabGrp:    "tabGrp",
	TabDurSym: "tabDurSym",
	Note:      "note",
	StaffDef:  "staffDef",
	Title:     "title",
	TitlePart: "titlePart",
	Abbr:      "abbr",
	Monogr:    "monogr",
}

var tagsByLocal = func() map[string]Tag {
	m := make(map[string]Tag, len(localNames))
	for t, name := range localNames {
		if name != "" {
			m[name] = Tag(t)
		}
	}
	return m
}()

// Local returns the MEI local name for t, or "" for Other.
func (t Tag) Local() string {
	if int(t) < len(localNames) {
		return localNames[t]
	}
	return ""
}

func (t Tag) String() string {
	if name := t.Local(); name != "" {
		return name
	}
	return "other"
}

// TagOf classifies e. A nil element is Other.
func TagOf(e *etree.Element) Tag {
	if e == nil {
		return Other
	}
	q := NameOf(e)
	if q.Space != Namespace {
		return Other
	}
	return tagsByLocal[q.Local]
}

// Is reports whether e is an MEI element of kind t.
func Is(e *etree.Element, t Tag) bool {
	return t != Other && TagOf(e) == t
}

// NewElement creates a detached element of kind t that reuses the namespace
// prefix of like, so it resolves to the MEI namespace once attached next to
// like's children.
func NewElement(t Tag, like *etree.Element) *etree.Element {
	el := etree.NewElement(t.Local())
	if like != nil {
		el.Space = like.Space
	}
	return el
}
