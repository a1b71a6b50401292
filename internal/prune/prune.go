// Package prune removes style rules whose selectors no markup uses.
//
// Prune only decides: it rewrites an in-memory sheet and reports what it
// dropped. Reading and writing files is the caller's job.
package prune

import (
	"strings"

	"github.com/yacobolo/assetclean/internal/selector"
	"github.com/yacobolo/assetclean/internal/stylesheet"
)

// Reachability answers whether a selector's tokens are in use.
// *usage.Set satisfies it.
type Reachability interface {
	Reaches(selector.Tokens) bool
}

// Outcome describes what pruning did to one sheet.
type Outcome struct {
	// Removed lists, in source order, the selectors of every rule that was
	// dropped as a whole, nested rules included. A selector trimmed from a
	// rule that survives with a shorter list is not listed.
	Removed []string
	// Changed is true when any rule was rewritten or dropped.
	Changed bool
	// Malformed counts selector-less rules that were discarded.
	Malformed int
}

// groupRules are conditional at-rules whose body is pruned like a sheet and
// which disappear once empty.
var groupRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"document":       true,
	"container":      true,
	"scope":          true,
	"starting-style": true,
}

// Prune filters sheet in place against used.
//
// A selector survives when at least one of its class, id or tag tokens is
// used. A rule keeps only its surviving selectors and is dropped when none
// survive. Rules nested in a surviving rule are pruned the same way, except
// that a selector made only of "&" and tokenless parts follows its parent.
// Conditional group rules are pruned recursively; @layer blocks are
// pruned but kept even when empty since they fix layer order. Every other
// at-rule (@import, @font-face, @keyframes, ...) is left alone.
func Prune(sheet *stylesheet.Sheet, used Reachability) Outcome {
	var out Outcome
	sheet.Nodes = pruneNodes(sheet.Nodes, used, &out, false)
	return out
}

func pruneNodes(nodes []stylesheet.Node, used Reachability, out *Outcome, nested bool) []stylesheet.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.Rule:
			if pruneRule(n, used, out, nested) {
				kept = append(kept, n)
			}

		case *stylesheet.AtRule:
			if n.Kind != stylesheet.KindRules {
				kept = append(kept, n)
				continue
			}

			base := n.BaseName()
			switch {
			case groupRules[base]:
				n.Children = pruneNodes(n.Children, used, out, nested)
				if len(n.Children) == 0 {
					out.Changed = true
					continue
				}
			case base == "layer":
				n.Children = pruneNodes(n.Children, used, out, nested)
			}
			kept = append(kept, n)

		default:
			kept = append(kept, n)
		}
	}
	return kept
}

// pruneRule filters the rule's selector list and reports whether the rule
// survives.
func pruneRule(r *stylesheet.Rule, used Reachability, out *Outcome, nested bool) bool {
	if len(r.Selectors) == 0 {
		out.Malformed++
		out.Changed = true
		return false
	}

	survivors := make([]string, 0, len(r.Selectors))
	for _, sel := range r.Selectors {
		if reaches(sel, used, nested) {
			survivors = append(survivors, sel)
		}
	}

	if len(survivors) == 0 {
		out.Removed = append(out.Removed, r.Selectors...)
		out.Removed = appendSelectors(out.Removed, r.Nested)
		out.Changed = true
		return false
	}

	if len(survivors) != len(r.Selectors) {
		out.Changed = true
	}
	r.Selectors = survivors
	r.Nested = pruneNodes(r.Nested, used, out, true)
	return true
}

func reaches(sel string, used Reachability, nested bool) bool {
	tokens := selector.Extract(sel)
	if nested && tokens.Empty() && strings.Contains(sel, "&") {
		return true
	}
	return used.Reaches(tokens)
}

// appendSelectors appends the selectors of every rule under nodes.
func appendSelectors(dst []string, nodes []stylesheet.Node) []string {
	for _, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.Rule:
			dst = append(dst, n.Selectors...)
			dst = appendSelectors(dst, n.Nested)
		case *stylesheet.AtRule:
			dst = appendSelectors(dst, n.Children)
		}
	}
	return dst
}
