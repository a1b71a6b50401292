package assetclean

import (
	"fmt"
	"io"

	"github.com/yacobolo/assetclean/internal/report"
)

// OutputOptions controls terminal rendering.
type OutputOptions struct {
	UseColors bool
	ListFiles bool // print every quarantined file after the counts table
}

// DetermineOutputFormat selects the output format from flags
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	// Explicit --quiet flag wins
	if quiet {
		return OutputNone
	}

	switch OutputFormat(formatFlag) {
	case OutputSummary, OutputJSON, OutputNone:
		return OutputFormat(formatFlag)
	default:
		// Invalid or empty format, use the default
		return OutputSummary
	}
}

// WriteOutput writes the run result in the specified format
func WriteOutput(w io.Writer, result *Result, format OutputFormat, opts OutputOptions) error {
	if result == nil {
		return fmt.Errorf("no result to write")
	}

	switch format {
	case OutputNone:
		return nil

	case OutputJSON:
		return WriteJSON(w, result)

	default:
		report.NewReporter(w, opts.UseColors, opts.ListFiles).PrintSummary(report.Summary{
			Root:               result.Root,
			ReportPath:         result.ReportPath,
			DryRun:             result.DryRun,
			DocumentsScanned:   result.DocumentsScanned,
			DocumentsRewritten: result.DocumentsRewritten,
			StylesheetsPruned:  result.StylesheetsPruned,
			Report:             result.Report,
			Warnings:           issueStrings(result.Warnings),
		})
		return nil
	}
}
