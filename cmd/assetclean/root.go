package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assetclean [root]",
	Short: "Prune unused CSS and quarantine unreferenced assets",
	Long: `Scan the HTML, CSS, JS and images of a static site, drop CSS selectors
no document uses, and move unreferenced stylesheets, scripts and images
into a quarantine directory together with a JSON report.`,
	Args: cobra.MaximumNArgs(1),
	// Default behavior: run clean when no subcommand is given.
	// loadConfig is called here because PreRunE of cleanCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runClean(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Config file path")

	addCleanFlags(rootCmd)

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
