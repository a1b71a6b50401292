package assetclean

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/yacobolo/assetclean/internal/report"
	"github.com/yacobolo/assetclean/internal/sweep"
)

// ErrNoProject is returned when the project root is missing or is not a
// directory. Nothing has been touched when it is returned.
var ErrNoProject = errors.New("no project root")

// Patterns selects files by kind. Patterns are doublestar globs relative to
// the project root.
type Patterns struct {
	HTML   []string
	CSS    []string
	JS     []string
	Images []string
}

// Safelist names tokens that count as used even when no document carries
// them, e.g. classes added by scripts at runtime.
type Safelist struct {
	Classes []string
	IDs     []string
	Tags    []string
}

// Config holds cleaner configuration
type Config struct {
	Root             string   // project root directory
	Patterns         Patterns // files to consider, by kind
	Exclude          []string // doublestar patterns never scanned
	RespectGitignore bool     // also skip paths ignored by <root>/.gitignore; off by default
	Keep             []string // doublestar patterns never quarantined
	Safelist         Safelist

	QuarantineDir    string       // relative to Root unless absolute (default: "removed")
	QuarantineLayout sweep.Layout // mirror (default) | flat
	ReportFile       string       // relative to QuarantineDir unless absolute

	DryRun bool        // decide everything, write nothing
	Logger *log.Logger // nil discards progress and diagnostics
}

// Default values
const (
	DefaultQuarantineDir = "removed"
	DefaultReportFile    = report.FileName
)

// DefaultPatterns returns the file patterns used when a kind has none.
func DefaultPatterns() Patterns {
	return Patterns{
		HTML:   []string{"**/*.html"},
		CSS:    []string{"**/*.css"},
		JS:     []string{"**/*.js"},
		Images: []string{"**/*.{png,jpg,jpeg,gif,svg,webp}"},
	}
}

// DefaultExclude returns the patterns excluded by default.
func DefaultExclude() []string {
	return []string{"**/node_modules/**"}
}

// DefaultConfig returns the configuration of a plain run on root.
func DefaultConfig(root string) Config {
	return Config{
		Root:             root,
		Patterns:         DefaultPatterns(),
		Exclude:          DefaultExclude(),
		QuarantineDir:    DefaultQuarantineDir,
		QuarantineLayout: sweep.LayoutMirror,
		ReportFile:       DefaultReportFile,
	}
}

// Result contains run statistics and the report
type Result struct {
	Root       string // absolute project root
	ReportPath string // where the report was (or would be) written
	DryRun     bool

	Stats              ScanStats
	DocumentsScanned   int
	DocumentsRewritten int
	StylesheetsPruned  int

	Report   *report.Report
	Moves    []sweep.Move
	Warnings []Issue
}

// OutputFormat represents the CLI output format
type OutputFormat string

const (
	// OutputSummary prints a counts table, quarantined files and warnings
	OutputSummary OutputFormat = "summary"
	// OutputJSON prints the report document to stdout (tooling integration)
	OutputJSON OutputFormat = "json"
	// OutputNone prints nothing; the report file is still written
	OutputNone OutputFormat = "none"
)
