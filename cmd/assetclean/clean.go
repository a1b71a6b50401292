package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yacobolo/assetclean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [root]",
	Short: "Prune unused CSS and quarantine unreferenced assets",
	Long: `Collect class, id and tag usage from every HTML document, prune the
selectors nothing uses from <style> blocks and stylesheets, then move
unreferenced stylesheets, scripts and images into the quarantine directory.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runClean,
}

func init() {
	addCleanFlags(cleanCmd)
}

// addCleanFlags registers the clean flags; the root command carries them
// too since clean is its default action.
func addCleanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("dry-run", false, "Decide everything but write nothing")
	f.String("quarantine-dir", "", "Quarantine directory, relative to root (default: removed)")
	f.String("layout", "", "Quarantine layout: mirror|flat (default: mirror)")
	f.String("report-file", "", "Report file, relative to the quarantine directory")
	f.StringSlice("exclude", nil, "Glob patterns never scanned (repeatable)")
	f.StringSlice("keep", nil, "Glob patterns never quarantined (repeatable)")
	f.Bool("respect-gitignore", false, "Skip paths ignored by .gitignore (ignored pages then protect no rules)")
	f.StringSlice("safelist-class", nil, "Classes always treated as used (repeatable)")
	f.StringSlice("safelist-id", nil, "IDs always treated as used (repeatable)")
	f.StringSlice("safelist-tag", nil, "Tags always treated as used (repeatable)")
	f.String("output-format", "", "Output format: summary|json|none")
}

func runClean(cmd *cobra.Command, args []string) error {
	config, err := buildCleanConfig(args)
	if err != nil {
		return err
	}

	quiet := getBoolWithFallback("quiet", "quiet", false)
	config.Logger = newLogger(cmd.ErrOrStderr(), getBoolWithFallback("verbose", "verbose", false), quiet)

	result, err := assetclean.Clean(config)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	format := assetclean.DetermineOutputFormat(getStringWithFallback("output-format", "output-format", ""), quiet)
	return assetclean.WriteOutput(cmd.OutOrStdout(), result, format, assetclean.OutputOptions{
		UseColors: useColors(),
		ListFiles: true,
	})
}
