package report

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yacobolo/assetclean/internal/pathutil"
)

// Summary is what the terminal reporter needs to know about a run.
type Summary struct {
	Root               string
	ReportPath         string
	DryRun             bool
	DocumentsScanned   int
	DocumentsRewritten int
	StylesheetsPruned  int
	Report             *Report
	Warnings           []string
}

// Reporter prints human-readable run summaries.
type Reporter struct {
	w         io.Writer
	useColors bool
	listFiles bool
}

// NewReporter creates a reporter. When listFiles is set every quarantined
// file is printed after the counts table.
func NewReporter(w io.Writer, useColors, listFiles bool) *Reporter {
	return &Reporter{w: w, useColors: useColors, listFiles: listFiles}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// GitHub Actions supports colors
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// PrintSummary prints the counts table, removed files and warnings.
func (r *Reporter) PrintSummary(s Summary) {
	rep := s.Report
	if rep == nil {
		rep = New()
	}

	header := "Assets cleaner summary"
	if s.DryRun {
		header += " (dry run, nothing changed)"
	}
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, header, r.useColors))

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Item", "Count"})
	t.AppendRows([]table.Row{
		{"Documents scanned", s.DocumentsScanned},
		{"Documents rewritten", s.DocumentsRewritten},
		{"Stylesheets pruned", s.StylesheetsPruned},
		{"Selectors removed (stylesheets)", len(rep.RemovedSelectors)},
		{"Selectors removed (inline)", len(rep.RemovedInlineSelectors)},
		{"Stylesheets quarantined", len(rep.RemovedCSSFiles)},
		{"Scripts quarantined", len(rep.RemovedJSFiles)},
		{"Images quarantined", len(rep.RemovedImages)},
	})
	t.Render()

	if r.listFiles {
		r.printFiles(s.Root, "Stylesheets", rep.RemovedCSSFiles)
		r.printFiles(s.Root, "Scripts", rep.RemovedJSFiles)
		r.printFiles(s.Root, "Images", rep.RemovedImages)
	}

	r.PrintWarnings(s.Warnings)

	if s.ReportPath != "" && !s.DryRun {
		fmt.Fprintln(r.w, "")
		fmt.Fprintf(r.w, "%s %s\n",
			RenderStyle(StyleGreen, "Done.", r.useColors),
			RenderStyle(StyleGray, "Report written to "+pathutil.Rel(s.Root, s.ReportPath), r.useColors))
	}
}

func (r *Reporter) printFiles(root, label string, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleRed, fmt.Sprintf("%s moved to quarantine (%s):", label, pluralizeCount(len(files), "file", "files")), r.useColors))
	for _, f := range files {
		fmt.Fprintf(r.w, "  %s\n", pathutil.Rel(root, f))
	}
}

// PrintWarnings prints run warnings, if any.
func (r *Reporter) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, pluralizeCount(len(warnings), "warning", "warnings")+":", r.useColors))
	for _, w := range warnings {
		fmt.Fprintf(r.w, "  %s\n", w)
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
