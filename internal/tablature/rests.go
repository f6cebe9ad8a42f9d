// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tablature

import (
	"github.com/beevik/etree"

	"github.com/pdiddy/lutetab/internal/mei"
)

// Action is what a Directive does to the tree.
type Action int

const (
	// RemoveRest detaches Target from Parent.
	RemoveRest Action = iota + 1
	// AddMarker appends an empty tabDurSym to Parent.
	AddMarker
)

// Directive is one planned edit produced by PlanRests.
type Directive struct {
	Action Action
	Parent *etree.Element
	Target *etree.Element
}

// Plan is an ordered list of edits. Collecting edits before applying them
// keeps the traversal free of mutation.
type Plan []Directive

// Removed counts RemoveRest directives.
func (p Plan) Removed() int { return p.count(RemoveRest) }

// Added counts AddMarker directives.
func (p Plan) Added() int { return p.count(AddMarker) }

func (p Plan) count(a Action) int {
	n := 0
	for _, d := range p {
		if d.Action == a {
			n++
		}
	}
	return n
}

// PlanRests walks root's subtree bottom-up, visiting children in reverse
// order and descending into a child before examining it. Every rest is
// scheduled for removal. A rest whose parent is a tabGrp also schedules one
// tabDurSym for that group, unless the group already has one or another
// rest in it has already scheduled one.
func PlanRests(root *etree.Element) Plan {
	var plan Plan
	marked := make(map[*etree.Element]bool)

	var visit func(parent *etree.Element)
	visit = func(parent *etree.Element) {
		children := parent.ChildElements()
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if len(child.ChildElements()) > 0 {
				visit(child)
			}
			if !mei.Is(child, mei.Rest) {
				continue
			}
			if mei.Is(parent, mei.TabGrp) && !marked[parent] {
				marked[parent] = true
				if !mei.HasChild(parent, mei.TabDurSym) {
					plan = append(plan, Directive{Action: AddMarker, Parent: parent})
				}
			}
			plan = append(plan, Directive{Action: RemoveRest, Parent: parent, Target: child})
		}
	}
	visit(root)
	return plan
}

// Apply performs the planned edits in order.
func (p Plan) Apply() {
	for _, d := range p {
		switch d.Action {
		case AddMarker:
			d.Parent.AddChild(mei.NewElement(mei.TabDurSym, d.Parent))
		case RemoveRest:
			d.Parent.RemoveChild(d.Target)
		}
	}
}

// EliminateRests plans and applies rest elimination under root.
func EliminateRests(root *etree.Element) Plan {
	plan := PlanRests(root)
	plan.Apply()
	return plan
}
