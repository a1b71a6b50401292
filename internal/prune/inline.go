package prune

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/yacobolo/assetclean/internal/stylesheet"
)

// InlineOutcome describes what pruning did to the <style> blocks of one
// document.
type InlineOutcome struct {
	Outcome
	// Blocks holds the pruned sheet of every <style> element, in document
	// order, so callers can inspect what survived.
	Blocks []*stylesheet.Sheet
	// ParseErrors counts dropped declarations and stray tokens.
	ParseErrors int
}

// Document prunes every <style> element of doc against used. Only blocks
// that changed are rewritten; a document whose outcome is not Changed is
// left exactly as parsed.
func Document(doc *goquery.Document, used Reachability, parser *stylesheet.Parser) InlineOutcome {
	if parser == nil {
		parser = stylesheet.NewParser(nil)
	}

	var out InlineOutcome
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		sheet := parser.Parse(s.Text())
		out.ParseErrors += sheet.Malformed

		block := Prune(sheet, used)
		out.Removed = append(out.Removed, block.Removed...)
		out.Malformed += block.Malformed
		out.Blocks = append(out.Blocks, sheet)

		if block.Changed {
			out.Changed = true
			s.SetText(sheet.String())
		}
	})
	return out
}
