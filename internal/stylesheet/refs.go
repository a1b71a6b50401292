package stylesheet

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// References lists the files a stylesheet points at.
type References struct {
	Imports []string // @import targets
	URLs    []string // url(...) values in declarations and preludes
}

// References walks the sheet and returns every @import target and url()
// value, unresolved and in source order.
func (s *Sheet) References() References {
	var refs References
	collectRefs(s.Nodes, &refs)
	return refs
}

func collectRefs(nodes []Node, refs *References) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			for _, d := range n.Declarations {
				refs.URLs = append(refs.URLs, URLs(d.Value)...)
			}
			collectRefs(n.Nested, refs)
		case *AtRule:
			if n.BaseName() == "import" {
				if target := importTarget(n.Prelude); target != "" {
					refs.Imports = append(refs.Imports, target)
				}
			} else {
				refs.URLs = append(refs.URLs, URLs(n.Prelude)...)
			}
			for _, d := range n.Declarations {
				refs.URLs = append(refs.URLs, URLs(d.Value)...)
			}
			refs.URLs = append(refs.URLs, URLs(n.Body)...)
			collectRefs(n.Children, refs)
		}
	}
}

// URLs returns the targets of every url(...) in a fragment of CSS, such as
// a declaration value or a style attribute.
func URLs(text string) []string {
	if !strings.Contains(strings.ToLower(text), "url(") {
		return nil
	}

	var urls []string
	lexer := css.NewLexer(parse.NewInputString(text))
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return urls
		case css.URLToken:
			if u := unwrapURL(string(data)); u != "" {
				urls = append(urls, u)
			}
		}
	}
}

// importTarget returns the stylesheet named by an @import prelude, given as
// either a string or a url().
func importTarget(prelude string) string {
	lexer := css.NewLexer(parse.NewInputString(prelude))
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return ""
		case css.WhitespaceToken:
			continue
		case css.StringToken:
			return unquote(string(data))
		case css.URLToken:
			return unwrapURL(string(data))
		default:
			return ""
		}
	}
}

// unwrapURL turns `url( "a.png" )` into `a.png`.
func unwrapURL(token string) string {
	i := strings.IndexByte(token, '(')
	if i < 0 {
		return ""
	}
	s := strings.TrimSuffix(token[i+1:], ")")
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
