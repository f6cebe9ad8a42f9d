// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mei

import "github.com/beevik/etree"

// Walk visits the descendants of e in document order (pre-order). Returning
// false from fn stops the walk.
func Walk(e *etree.Element, fn func(*etree.Element) bool) bool {
	for _, child := range e.ChildElements() {
		if !fn(child) {
			return false
		}
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// Find returns the first descendant of e of kind t in document order, or nil.
func Find(e *etree.Element, t Tag) *etree.Element {
	var found *etree.Element
	Walk(e, func(el *etree.Element) bool {
		if Is(el, t) {
			found = el
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant of e of kind t in document order.
func FindAll(e *etree.Element, t Tag) []*etree.Element {
	var found []*etree.Element
	Walk(e, func(el *etree.Element) bool {
		if Is(el, t) {
			found = append(found, el)
		}
		return true
	})
	return found
}

// FindPath returns the first descendant of e whose own kind is the last
// entry of path and whose ancestors, read upwards, match the preceding
// entries in order. FindPath(root, Title, TitlePart, Abbr) is the MEI
// equivalent of the relative path .//title/titlePart/abbr.
func FindPath(e *etree.Element, path ...Tag) *etree.Element {
	if len(path) == 0 {
		return nil
	}
	var found *etree.Element
	Walk(e, func(el *etree.Element) bool {
		if matchesUpwards(el, e, path) {
			found = el
			return false
		}
		return true
	})
	return found
}

func matchesUpwards(el, stop *etree.Element, path []Tag) bool {
	cur := el
	for i := len(path) - 1; i >= 0; i-- {
		if cur == nil || cur == stop || !Is(cur, path[i]) {
			return false
		}
		cur = cur.Parent()
	}
	return true
}

// HasChild reports whether e has a direct child of kind t.
func HasChild(e *etree.Element, t Tag) bool {
	for _, child := range e.ChildElements() {
		if Is(child, t) {
			return true
		}
	}
	return false
}
