package stylesheet

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Parser parses CSS text into a Sheet.
type Parser struct {
	log *log.Logger
}

// NewParser creates a parser. A nil logger discards diagnostics.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{log: logger.WithPrefix("css")}
}

// reparsedBodies are at-rules the grammar does not know but whose block is
// a rule list; their raw body is parsed again as a stylesheet.
var reparsedBodies = map[string]bool{
	"container":      true,
	"scope":          true,
	"starting-style": true,
}

// Parse parses CSS text. It never fails: constructs that cannot be parsed
// are dropped and counted in Sheet.Malformed. The optional source names the
// input in debug logs.
func (p *Parser) Parse(text string, source ...string) *Sheet {
	src := ""
	if len(source) > 0 {
		src = source[0]
	}

	run := &parseRun{
		grammar: css.NewParser(parse.NewInputString(text), false),
		log:     p.log,
		source:  src,
	}
	sheet := &Sheet{Nodes: run.nodes(false)}
	sheet.Malformed = run.malformed

	if run.malformed > 0 {
		p.log.Debug("dropped malformed css", "source", src, "count", run.malformed)
	}
	return sheet
}

// Parse parses text with a parser that discards diagnostics.
func Parse(text string) *Sheet {
	return NewParser(nil).Parse(text)
}

type parseRun struct {
	grammar   *css.Parser
	log       *log.Logger
	source    string
	malformed int
}

// atEOF reports whether the last ErrorGrammar marks the end of input rather
// than a recoverable syntax error.
func (r *parseRun) atEOF() bool {
	return errors.Is(r.grammar.Err(), io.EOF)
}

func (r *parseRun) syntaxError() {
	r.malformed++
	r.log.Debug("css syntax error", "source", r.source, "err", r.grammar.Err())
}

// nodes reads rules and at-rules until the end of input, or until the end of
// the enclosing at-rule block when nested is true.
func (r *parseRun) nodes(nested bool) []Node {
	var out []Node
	for {
		gt, _, data := r.grammar.Next()
		switch gt {
		case css.ErrorGrammar:
			if r.atEOF() {
				return out
			}
			r.syntaxError()

		case css.EndAtRuleGrammar:
			if nested {
				return out
			}

		case css.BeginRulesetGrammar:
			out = append(out, r.rule())

		case css.AtRuleGrammar:
			out = append(out, &AtRule{
				Name:    string(data),
				Prelude: joinTokens(r.grammar.Values()),
				Kind:    KindStatement,
			})

		case css.BeginAtRuleGrammar:
			out = append(out, r.atRule(string(data), joinTokens(r.grammar.Values())))

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			// a declaration outside any block
			r.malformed++

		case css.CommentGrammar, css.TokenGrammar, css.EndRulesetGrammar:
			// comments and CDO/CDC markers are not preserved
		}
	}
}

// rule reads a style rule body after BeginRulesetGrammar.
func (r *parseRun) rule() *Rule {
	rule := &Rule{Selectors: splitSelectors(r.grammar.Values())}

	for {
		gt, _, data := r.grammar.Next()
		switch gt {
		case css.EndRulesetGrammar:
			return rule

		case css.ErrorGrammar:
			if r.atEOF() {
				return rule
			}
			if !r.salvage(rule, r.grammar.Values()) {
				r.syntaxError()
			}

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if d, ok := r.declaration(gt, data); ok {
				rule.Declarations = append(rule.Declarations, d)
			}

		case css.AtRuleGrammar:
			rule.Nested = append(rule.Nested, &AtRule{
				Name:    string(data),
				Prelude: joinTokens(r.grammar.Values()),
				Kind:    KindStatement,
			})

		case css.BeginAtRuleGrammar:
			rule.Nested = append(rule.Nested, r.atRule(string(data), joinTokens(r.grammar.Values())))
		}
	}
}

// salvage recovers the tokens the grammar rejected inside a rule body.
// Nested style rules land here ("a{color:red; .b{color:blue} margin:0}"):
// every "selector{...}" segment is parsed again as a nested rule and the
// "property:value" pieces around them become declarations. It reports
// whether every piece was recovered.
func (r *parseRun) salvage(rule *Rule, tokens []css.Token) bool {
	var pending strings.Builder
	block, depth := false, 0
	recovered, dropped := 0, 0

	flush := func() {
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		switch {
		case text == "":
		case block, strings.HasPrefix(text, "@"):
			rule.Nested = append(rule.Nested, r.reparse(text)...)
			recovered++
		default:
			if d, ok := r.looseDeclaration(text); ok {
				rule.Declarations = append(rule.Declarations, d)
				recovered++
			} else {
				dropped++
			}
		}
		block = false
	}

	for _, t := range tokens {
		switch t.TokenType {
		case css.SemicolonToken:
			if depth == 0 {
				flush()
				continue
			}
		case css.LeftBraceToken:
			if depth == 0 {
				block = true
			}
			depth++
		case css.RightBraceToken:
			if depth == 0 {
				dropped++
				continue
			}
			depth--
			if depth == 0 && block {
				pending.Write(t.Data)
				flush()
				continue
			}
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		}
		pending.Write(t.Data)
	}
	flush()

	return recovered > 0 && dropped == 0
}

// reparse parses a fragment of CSS as a rule list.
func (r *parseRun) reparse(text string) []Node {
	inner := &parseRun{
		grammar: css.NewParser(parse.NewInputString(text), false),
		log:     r.log,
		source:  r.source,
	}
	nodes := inner.nodes(false)
	r.malformed += inner.malformed
	return nodes
}

// looseDeclaration parses "property:value" text the grammar did not see as
// a declaration, so it comes out exactly as a regular one would.
func (r *parseRun) looseDeclaration(text string) (Declaration, bool) {
	inner := &parseRun{
		grammar: css.NewParser(parse.NewInputString(text), true),
		log:     r.log,
		source:  r.source,
	}
	gt, _, data := inner.grammar.Next()
	if gt != css.DeclarationGrammar && gt != css.CustomPropertyGrammar {
		return Declaration{}, false
	}
	d, ok := inner.declaration(gt, data)
	if !ok {
		return Declaration{}, false
	}
	if next, _, _ := inner.grammar.Next(); next != css.ErrorGrammar || !inner.atEOF() {
		return Declaration{}, false
	}
	return d, true
}

func (r *parseRun) declaration(gt css.GrammarType, data []byte) (Declaration, bool) {
	values := r.grammar.Values()
	d := Declaration{Property: string(data)}

	if gt == css.CustomPropertyGrammar {
		if len(values) > 0 {
			d.Value = strings.TrimSpace(string(values[0].Data))
		}
		return d, true
	}

	d.Value = joinTokens(values)
	if d.Value == "" {
		r.malformed++
		return d, false
	}
	return d, true
}

// atRule reads an at-rule block after BeginAtRuleGrammar.
func (r *parseRun) atRule(name, prelude string) *AtRule {
	a := &AtRule{Name: name, Prelude: prelude}

	switch a.BaseName() {
	case "font-face", "page":
		a.Kind = KindDeclarations
		r.declarationBlock(a)

	case "document", "keyframes", "layer", "media", "supports":
		a.Kind = KindRules
		a.Children = r.nodes(true)

	default:
		a.Kind = KindRaw
		a.Body = r.rawBody()
		if reparsedBodies[a.BaseName()] {
			inner := &parseRun{
				grammar: css.NewParser(parse.NewInputString(a.Body), false),
				log:     r.log,
				source:  r.source,
			}
			a.Kind = KindRules
			a.Children = inner.nodes(false)
			a.Body = ""
			r.malformed += inner.malformed
		}
	}
	return a
}

func (r *parseRun) declarationBlock(a *AtRule) {
	for {
		gt, _, data := r.grammar.Next()
		switch gt {
		case css.EndAtRuleGrammar:
			return

		case css.ErrorGrammar:
			if r.atEOF() {
				return
			}
			r.syntaxError()

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if d, ok := r.declaration(gt, data); ok {
				a.Declarations = append(a.Declarations, d)
			}

		case css.AtRuleGrammar:
			a.Children = append(a.Children, &AtRule{
				Name:    string(data),
				Prelude: joinTokens(r.grammar.Values()),
				Kind:    KindStatement,
			})

		case css.BeginAtRuleGrammar:
			a.Children = append(a.Children, r.atRule(string(data), joinTokens(r.grammar.Values())))
		}
	}
}

// rawBody collects the tokens of an unknown at-rule block verbatim.
func (r *parseRun) rawBody() string {
	var sb strings.Builder
	for {
		gt, _, data := r.grammar.Next()
		switch gt {
		case css.TokenGrammar:
			sb.Write(data)
		case css.EndAtRuleGrammar:
			return strings.TrimSpace(sb.String())
		case css.ErrorGrammar:
			if r.atEOF() {
				return strings.TrimSpace(sb.String())
			}
			r.syntaxError()
		}
	}
}

// joinTokens concatenates grammar values. The grammar has already folded
// whitespace into single-space tokens.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// splitSelectors splits a selector list at top-level commas.
func splitSelectors(tokens []css.Token) []string {
	var selectors []string
	var sb strings.Builder
	depth := 0

	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			selectors = append(selectors, s)
		}
		sb.Reset()
	}

	for _, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				flush()
				continue
			}
		}
		sb.Write(t.Data)
	}
	flush()
	return selectors
}
