package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .assetclean.yaml config file",
	Long:  `Create a .assetclean.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = defaultConfigPath
		}

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

const defaultConfig = `# assetclean configuration

root: .
dry-run: false
verbose: false
output-format: summary   # summary | json | none

respect-gitignore: false   # true skips ignored pages, whose rules then look unused
exclude:
  - "**/node_modules/**"
keep: []

patterns:
  html: ["**/*.html"]
  css: ["**/*.css"]
  js: ["**/*.js"]
  images: ["**/*.{png,jpg,jpeg,gif,svg,webp}"]

quarantine:
  dir: removed
  layout: mirror         # mirror | flat

report:
  file: assets-cleaner-report.json

# Tokens added at runtime by scripts
safelist:
  classes: []
  ids: []
  tags: []
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
