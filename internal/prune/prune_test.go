package prune

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/assetclean/internal/selector"
	"github.com/yacobolo/assetclean/internal/stylesheet"
	"github.com/yacobolo/assetclean/internal/usage"
	"golang.org/x/net/html"
)

// usedSet builds a usage set from explicit tokens.
func usedSet(classes, ids, tags []string) *usage.Set {
	b := usage.NewBuilder()
	for _, c := range classes {
		b.AddClass(c)
	}
	for _, id := range ids {
		b.AddID(id)
	}
	for _, tag := range tags {
		b.AddTag(tag)
	}
	return b.Build()
}

func TestPrune_EndToEndScenario(t *testing.T) {
	sheet := stylesheet.Parse(`.a{color:red}.b{color:blue}`)
	out := Prune(sheet, usedSet([]string{"a"}, nil, nil))

	assert.Equal(t, ".a{color:red}\n", sheet.String())
	assert.Equal(t, []string{".b"}, out.Removed)
	assert.True(t, out.Changed)
}

func TestPrune_Rules(t *testing.T) {
	used := usedSet([]string{"btn", "nav"}, []string{"app"}, []string{"html", "body", "a", "ul", "li"})

	tests := []struct {
		name    string
		css     string
		want    string
		removed []string
		changed bool
	}{
		{
			name:    "partial selector list kept and not reported",
			css:     `.btn, .card { padding: 0 }`,
			want:    ".btn{padding:0}\n",
			changed: true,
		},
		{
			name:    "dropped rule reports every selector",
			css:     `.card, .panel { padding: 0 }`,
			want:    "",
			removed: []string{".card", ".panel"},
			changed: true,
		},
		{
			name:    "all used is unchanged",
			css:     `.btn { padding: 0 } #app { margin: 0 }`,
			want:    ".btn{padding:0}\n#app{margin:0}\n",
			changed: false,
		},
		{
			name:    "one used token protects a compound selector",
			css:     `.modal .btn { color: red }`,
			want:    ".modal .btn{color:red}\n",
			changed: false,
		},
		{
			name:    "tokenless selectors are discarded",
			css:     `[hidden] { display: none } * { box-sizing: border-box } ::selection { color: red }`,
			want:    "",
			removed: []string{"[hidden]", "*", "::selection"},
			changed: true,
		},
		{
			name:    "media emptied and dropped",
			css:     `@media print { .card { display: none } }`,
			want:    "",
			removed: []string{".card"},
			changed: true,
		},
		{
			name:    "media pruned but kept",
			css:     `@media (min-width: 600px) { .card { display: none } .nav { display: flex } }`,
			want:    "@media (min-width:600px){\n.nav{display:flex}\n}\n",
			removed: []string{".card"},
			changed: true,
		},
		{
			name:    "layer kept when empty",
			css:     `@layer components { .card { color: red } }`,
			want:    "@layer components{}\n",
			removed: []string{".card"},
			changed: true,
		},
		{
			name: "non-selector at-rules untouched",
			css: `@import "x.css";
@font-face { font-family: F; src: url(f.woff2) }
@keyframes spin { from { opacity: 0 } to { opacity: 1 } }`,
			want: "@import \"x.css\";\n@font-face{font-family:F;src:url(f.woff2)}\n@keyframes spin{\nfrom{opacity:0}\nto{opacity:1}\n}\n",
		},
		{
			name:    "logical pseudo argument counts",
			css:     `li:not(.active) { opacity: .5 } :is(.card, .panel) { margin: 0 }`,
			want:    "li:not(.active){opacity:.5}\n",
			removed: []string{":is(.card,.panel)"},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := stylesheet.Parse(tt.css)
			out := Prune(sheet, used)
			assert.Equal(t, tt.want, sheet.String())
			assert.Equal(t, tt.removed, out.Removed)
			assert.Equal(t, tt.changed, out.Changed)
		})
	}
}

func TestPrune_NestedRules(t *testing.T) {
	tests := []struct {
		name    string
		used    []string
		want    string
		removed []string
	}{
		{
			name: "both used",
			used: []string{"a", "b"},
			want: ".a{color:red;margin:0;.b{color:blue}}\n",
		},
		{
			name:    "unused nested rule dropped, parent declarations kept",
			used:    []string{"a"},
			want:    ".a{color:red;margin:0}\n",
			removed: []string{".b"},
		},
		{
			name:    "dropped parent reports nested selectors",
			used:    []string{"b"},
			want:    "",
			removed: []string{".a", ".b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := stylesheet.Parse(`.a{color:red; .b{color:blue} margin:0}`)
			out := Prune(sheet, usedSet(tt.used, nil, nil))
			assert.Equal(t, tt.want, sheet.String())
			assert.Equal(t, tt.removed, out.Removed)
			assert.Zero(t, out.Malformed)
		})
	}
}

func TestPrune_NestedAmpersandFollowsParent(t *testing.T) {
	sheet := stylesheet.Parse(`.a{color:red; &[open]{color:blue} & .gone{margin:0}}`)
	out := Prune(sheet, usedSet([]string{"a"}, nil, nil))

	assert.Equal(t, ".a{color:red;&[open]{color:blue}}\n", sheet.String())
	assert.Equal(t, []string{"& .gone"}, out.Removed)
}

func TestPrune_MalformedRuleDroppedAndCounted(t *testing.T) {
	sheet := stylesheet.Parse(`{color:red} .a{color:blue}`)
	out := Prune(sheet, usedSet([]string{"a"}, nil, nil))

	assert.Equal(t, ".a{color:blue}\n", sheet.String())
	assert.Equal(t, 1, out.Malformed)
	assert.Empty(t, out.Removed)
}

func TestPrune_Idempotent(t *testing.T) {
	used := usedSet([]string{"a", "c"}, []string{"x"}, []string{"p"})
	src := `.a, .b { color: red }
p > span { margin: 0 }
@media screen { .c { color: blue } .d { color: green } }
#x, #y { display: block }
div { padding: 0 }`

	first := stylesheet.Parse(src)
	Prune(first, used)
	pass1 := first.String()

	second := stylesheet.Parse(pass1)
	out := Prune(second, used)

	assert.Equal(t, pass1, second.String())
	assert.Empty(t, out.Removed)
	assert.False(t, out.Changed)
}

func TestPrune_Soundness(t *testing.T) {
	used := usedSet([]string{"used"}, []string{"live"}, []string{"main"})
	selectors := []string{
		".used", ".x.used", "div .used:hover", "#live", "main", "main > .gone",
		"section.gone #live", ".gone ~ main", ":not(.used)",
	}

	for _, sel := range selectors {
		t.Run(sel, func(t *testing.T) {
			require.True(t, used.Reaches(selector.Extract(sel)))
			sheet := stylesheet.Parse(sel + "{color:red}")
			out := Prune(sheet, used)
			assert.Empty(t, out.Removed)
		})
	}
}

func TestDocument_InlineScenario(t *testing.T) {
	markup := `<html><head><style>#x{} #y{}</style></head><body><div id="x"></div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	b := usage.NewBuilder()
	usage.Collect(b, doc, "/p/index.html", "/p")
	out := Document(doc, b.Build(), nil)

	assert.True(t, out.Changed)
	assert.Equal(t, []string{"#y"}, out.Removed)
	assert.Equal(t, "#x{}\n", doc.Find("style").Text())
}

func TestDocument_UnchangedDocumentUntouched(t *testing.T) {
	markup := `<html><head><style>
  /* kept as written */
  .a { color: red }
</style></head><body><p class="a">hi</p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	var before bytes.Buffer
	require.NoError(t, html.Render(&before, doc.Nodes[0]))

	b := usage.NewBuilder()
	usage.Collect(b, doc, "/p/index.html", "/p")
	out := Document(doc, b.Build(), nil)

	var after bytes.Buffer
	require.NoError(t, html.Render(&after, doc.Nodes[0]))

	assert.False(t, out.Changed)
	assert.Empty(t, out.Removed)
	assert.Equal(t, before.String(), after.String())
}

func TestDocument_ChangedFlagSpansBlocks(t *testing.T) {
	markup := `<html><head>
<style>.a{color:red}</style>
<style>.gone{color:blue} .a{margin:0}</style>
</head><body><p class="a"></p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	out := Document(doc, usedSet([]string{"a"}, nil, nil), nil)

	assert.True(t, out.Changed)
	assert.Equal(t, []string{".gone"}, out.Removed)
	styles := doc.Find("style")
	require.Equal(t, 2, styles.Length())
	assert.Equal(t, ".a{color:red}", styles.Eq(0).Text())
	assert.Equal(t, ".a{margin:0}\n", styles.Eq(1).Text())
	assert.Len(t, out.Blocks, 2)
}
