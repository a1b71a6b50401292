// Package selector extracts the class, id and tag tokens a CSS selector
// syntactically mentions.
//
// Extraction is a tokenizer pass, not selector matching: combinators and
// attribute selectors are skipped, pseudo-classes are skipped except for the
// logical ones (:not, :is, :where, :has, ...) whose arguments are themselves
// selectors and are extracted recursively.
package selector

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Tokens holds the distinct tokens of one selector.
type Tokens struct {
	Classes []string
	IDs     []string
	Tags    []string // lower-cased
}

// Empty reports whether the selector mentions no class, id or tag.
func (t Tokens) Empty() bool {
	return len(t.Classes) == 0 && len(t.IDs) == 0 && len(t.Tags) == 0
}

// logicalPseudos take a selector list as their argument.
var logicalPseudos = map[string]bool{
	"not":          true,
	"is":           true,
	"where":        true,
	"has":          true,
	"matches":      true,
	"-webkit-any":  true,
	"-moz-any":     true,
	"host":         true,
	"host-context": true,
	"slotted":      true,
}

// Extract returns the tokens of a single selector (no top-level commas
// expected, though they are tolerated).
func Extract(sel string) Tokens {
	var e extractor
	e.run(sel)
	return e.tokens
}

type extractor struct {
	tokens Tokens
	seen   map[string]bool
}

func (e *extractor) add(kind byte, value string) {
	if value == "" {
		return
	}
	if e.seen == nil {
		e.seen = make(map[string]bool)
	}
	key := string(kind) + value
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	switch kind {
	case '.':
		e.tokens.Classes = append(e.tokens.Classes, value)
	case '#':
		e.tokens.IDs = append(e.tokens.IDs, value)
	default:
		e.tokens.Tags = append(e.tokens.Tags, value)
	}
}

func (e *extractor) run(sel string) {
	lexer := css.NewLexer(parse.NewInputString(sel))

	// compoundStart is true where a type selector may begin
	compoundStart := true

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return

		case css.WhitespaceToken, css.CommaToken:
			compoundStart = true

		case css.IdentToken:
			if compoundStart {
				e.add('t', strings.ToLower(unescape(string(data))))
			}
			compoundStart = false

		case css.HashToken:
			e.add('#', unescape(string(data[1:])))
			compoundStart = false

		case css.DelimToken:
			switch data[0] {
			case '.':
				if next, text := lexer.Next(); next == css.IdentToken {
					e.add('.', unescape(string(text)))
				}
				compoundStart = false
			case '>', '+', '~', '|':
				compoundStart = true
			default:
				compoundStart = false
			}

		case css.ColonToken:
			e.pseudo(lexer)
			compoundStart = false

		case css.LeftBracketToken:
			skipUntilClose(lexer, css.LeftBracketToken, css.RightBracketToken)
			compoundStart = false

		case css.FunctionToken, css.LeftParenthesisToken:
			skipUntilClose(lexer, css.LeftParenthesisToken, css.RightParenthesisToken)
			compoundStart = false

		default:
			compoundStart = false
		}
	}
}

// pseudo consumes a pseudo-class or pseudo-element after its first colon.
func (e *extractor) pseudo(lexer *css.Lexer) {
	tt, data := lexer.Next()
	if tt == css.ColonToken {
		tt, data = lexer.Next()
	}

	if tt != css.FunctionToken {
		return
	}

	name := strings.ToLower(strings.TrimSuffix(string(data), "("))
	inner := collectUntilClose(lexer)
	if logicalPseudos[name] {
		e.run(inner)
	}
}

// collectUntilClose returns the raw text up to the parenthesis closing the
// function just consumed.
func collectUntilClose(lexer *css.Lexer) string {
	var sb strings.Builder
	depth := 1
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return sb.String()
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 {
				return sb.String()
			}
		}
		sb.Write(data)
	}
}

func skipUntilClose(lexer *css.Lexer, open, close css.TokenType) {
	depth := 1
	for depth > 0 {
		tt, _ := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return
		case open:
			depth++
		case close:
			depth--
		case css.FunctionToken:
			if open == css.LeftParenthesisToken {
				depth++
			}
		}
	}
}

// unescape resolves CSS escapes so ".sm\:flex" matches class="sm:flex".
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++

		// hex escape: up to six digits plus one optional space
		j := i
		for j < len(s) && j-i < 6 && isHex(s[j]) {
			j++
		}
		if j == i {
			sb.WriteByte(s[i])
			continue
		}
		var r rune
		for _, h := range s[i:j] {
			r = r*16 + hexValue(byte(h))
		}
		sb.WriteRune(r)
		if j < len(s) && s[j] == ' ' {
			j++
		}
		i = j - 1
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func hexValue(c byte) rune {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0')
	case 'a' <= c && c <= 'f':
		return rune(c-'a') + 10
	default:
		return rune(c-'A') + 10
	}
}
