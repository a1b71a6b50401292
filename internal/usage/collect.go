package usage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yacobolo/assetclean/internal/pathutil"
	"github.com/yacobolo/assetclean/internal/stylesheet"
	"golang.org/x/net/html"
)

// Collect folds one markup document into b. docPath is the document's
// canonical path and root the project root used for root-absolute
// references. The document is only read.
func Collect(b *Builder, doc *goquery.Document, docPath, root string) {
	collectAttributeTokens(b, doc)
	collectTagNames(b, doc)
	collectAssetReferences(b, doc, docPath, root)
}

func collectAttributeTokens(b *Builder, doc *goquery.Document) {
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		for _, class := range strings.Fields(s.AttrOr("class", "")) {
			b.AddClass(class)
		}
	})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		b.AddID(s.AttrOr("id", ""))
	})
}

func collectTagNames(b *Builder, doc *goquery.Document) {
	for _, n := range doc.Find("*").Nodes {
		if n.Type == html.ElementNode {
			b.AddTag(strings.ToLower(n.Data))
		}
	}
}

func collectAssetReferences(b *Builder, doc *goquery.Document, docPath, root string) {
	resolve := func(ref string) (string, bool) {
		return pathutil.Resolve(docPath, ref, root)
	}

	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		rel := relTokens(s.AttrOr("rel", ""))
		target, ok := resolve(s.AttrOr("href", ""))
		if !ok {
			return
		}
		switch {
		case rel["stylesheet"]:
			b.AddStylesheet(target, docPath)
		case rel["icon"], rel["apple-touch-icon"], rel["mask-icon"]:
			b.AddImage(target)
		}
	})

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		if target, ok := resolve(s.AttrOr("src", "")); ok {
			b.AddScript(target)
		}
	})

	images := func(refs ...string) {
		for _, ref := range refs {
			if target, ok := resolve(ref); ok {
				b.AddImage(target)
			}
		}
	}

	doc.Find("img, source, input[type=image]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			images(src)
		}
		if srcset, ok := s.Attr("srcset"); ok {
			images(pathutil.SrcsetURLs(srcset)...)
		}
	})

	doc.Find("video[poster]").Each(func(_ int, s *goquery.Selection) {
		images(s.AttrOr("poster", ""))
	})

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		images(stylesheet.URLs(s.AttrOr("style", ""))...)
	})
}

// relTokens splits a rel attribute into its lower-cased keywords.
func relTokens(rel string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(rel) {
		tokens[strings.ToLower(t)] = true
	}
	return tokens
}
