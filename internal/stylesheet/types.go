// Package stylesheet holds a lossless-enough CSS tree for selector pruning:
// rules and at-rules are kept in source order and serialized back in a
// canonical form, so parsing the output again yields the same tree.
package stylesheet

import (
	"strings"
)

// Node is a top-level or nested item of a stylesheet: *Rule or *AtRule.
type Node interface {
	writeTo(sb *strings.Builder)
}

// Declaration is a single "property:value" pair.
type Declaration struct {
	Property string
	Value    string
}

func (d Declaration) String() string {
	return d.Property + ":" + d.Value
}

// Rule is a style rule: a selector list and its declaration block.
// A rule with no selectors is malformed input ("{color:red}").
type Rule struct {
	Selectors    []string
	Declarations []Declaration
	// Nested rules and at-rules found inside the block, e.g. "@apply x;" or
	// "&:hover{...}". They are written after the declarations.
	Nested []Node
}

// AtRuleKind describes what an at-rule's block contains.
type AtRuleKind int

const (
	// KindStatement has no block: @import, @charset, @layer a, b;
	KindStatement AtRuleKind = iota
	// KindRules holds nested rules: @media, @supports, @layer, @keyframes, @container
	KindRules
	// KindDeclarations holds declarations: @font-face, @page
	KindDeclarations
	// KindRaw keeps an unrecognised block verbatim.
	KindRaw
)

// AtRule is an at-rule with its lower-cased name ("@media") and prelude.
type AtRule struct {
	Name    string
	Prelude string
	Kind    AtRuleKind

	Children     []Node        // KindRules, and nested at-rules of KindDeclarations
	Declarations []Declaration // KindDeclarations
	Body         string        // KindRaw
}

// BaseName returns the at-rule name without "@" and vendor prefix:
// "@-webkit-keyframes" -> "keyframes".
func (a *AtRule) BaseName() string {
	name := strings.TrimPrefix(a.Name, "@")
	if strings.HasPrefix(name, "-") {
		if i := strings.IndexByte(name[1:], '-'); i != -1 {
			name = name[i+2:]
		}
	}
	return name
}

// Sheet is a parsed stylesheet.
type Sheet struct {
	Nodes []Node
	// Malformed counts constructs the parser had to drop (broken
	// declarations, stray tokens). Selector-less rules are kept in Nodes
	// and are not counted here.
	Malformed int
}

// String renders the canonical form of the sheet: comments removed, one
// top-level node per line.
func (s *Sheet) String() string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	writeNodes(&sb, s.Nodes)
	sb.WriteByte('\n')
	return sb.String()
}

func writeNodes(sb *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		n.writeTo(sb)
	}
}

func (r *Rule) writeTo(sb *strings.Builder) {
	sb.WriteString(strings.Join(r.Selectors, ","))
	sb.WriteByte('{')
	writeDeclarations(sb, r.Declarations)
	if len(r.Declarations) > 0 && len(r.Nested) > 0 {
		sb.WriteByte(';')
	}
	for _, n := range r.Nested {
		n.writeTo(sb)
	}
	sb.WriteByte('}')
}

// String renders the rule in canonical form.
func (r *Rule) String() string {
	var sb strings.Builder
	r.writeTo(&sb)
	return sb.String()
}

func writeDeclarations(sb *strings.Builder, decls []Declaration) {
	for i, d := range decls {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.String())
	}
}

func (a *AtRule) writeTo(sb *strings.Builder) {
	sb.WriteString(a.Name)
	if a.Prelude != "" {
		sb.WriteByte(' ')
		sb.WriteString(a.Prelude)
	}

	switch a.Kind {
	case KindStatement:
		sb.WriteByte(';')
	case KindRules:
		sb.WriteByte('{')
		if len(a.Children) > 0 {
			sb.WriteByte('\n')
			writeNodes(sb, a.Children)
			sb.WriteByte('\n')
		}
		sb.WriteByte('}')
	case KindDeclarations:
		sb.WriteByte('{')
		writeDeclarations(sb, a.Declarations)
		if len(a.Declarations) > 0 && len(a.Children) > 0 {
			sb.WriteByte(';')
		}
		for _, c := range a.Children {
			c.writeTo(sb)
		}
		sb.WriteByte('}')
	case KindRaw:
		sb.WriteByte('{')
		sb.WriteString(a.Body)
		sb.WriteByte('}')
	}
}
