package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/yacobolo/assetclean"
	"github.com/yacobolo/assetclean/internal/report"
	"github.com/yacobolo/assetclean/internal/sweep"
)

const defaultConfigPath = ".assetclean.yaml"

var k = koanf.New(".")

// envKeys maps env-derived keys onto config keys that contain a hyphen.
var envKeys = map[string]string{
	"dry.run":           "dry-run",
	"respect.gitignore": "respect-gitignore",
	"output.format":     "output-format",
}

// listKeys are config keys holding lists; their env values are comma-separated.
var listKeys = map[string]bool{
	"exclude":          true,
	"keep":             true,
	"patterns.html":    true,
	"patterns.css":     true,
	"patterns.js":      true,
	"patterns.images":  true,
	"safelist.classes": true,
	"safelist.ids":     true,
	"safelist.tags":    true,
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set
	// or have no file/env value)
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (ASSETCLEAN_* prefix)
	if err := k.Load(env.ProviderWithValue("ASSETCLEAN_", ".", envValue), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envValue maps an environment variable onto a config key:
//
//	ASSETCLEAN_QUARANTINE_DIR -> quarantine.dir
//	ASSETCLEAN_DRY_RUN        -> dry-run
//	ASSETCLEAN_KEEP=a,b       -> keep: [a, b]
func envValue(name, value string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, "ASSETCLEAN_")), "_", ".")
	if mapped, ok := envKeys[key]; ok {
		key = mapped
	}
	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildCleanConfig constructs the library's Config struct from koanf state.
// A positional root argument wins over the root key.
func buildCleanConfig(args []string) (assetclean.Config, error) {
	root := getStringWithFallback("root", "root", ".")
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}

	config := assetclean.DefaultConfig(root)
	config.DryRun = getBoolWithFallback("dry-run", "dry-run", false)
	config.QuarantineDir = getStringWithFallback("quarantine-dir", "quarantine.dir", assetclean.DefaultQuarantineDir)
	config.ReportFile = getStringWithFallback("report-file", "report.file", assetclean.DefaultReportFile)

	switch layout := sweep.Layout(getStringWithFallback("layout", "quarantine.layout", string(sweep.LayoutMirror))); layout {
	case sweep.LayoutMirror, sweep.LayoutFlat:
		config.QuarantineLayout = layout
	default:
		return config, fmt.Errorf("invalid quarantine layout %q (want mirror or flat)", layout)
	}

	config.RespectGitignore = getBoolWithFallback("respect-gitignore", "respect-gitignore", false)

	config.Exclude = getStringsWithFallback("exclude", "exclude", assetclean.DefaultExclude())
	config.Keep = getStringsWithFallback("keep", "keep", nil)

	defaults := assetclean.DefaultPatterns()
	config.Patterns = assetclean.Patterns{
		HTML:   getStringsWithFallback("", "patterns.html", defaults.HTML),
		CSS:    getStringsWithFallback("", "patterns.css", defaults.CSS),
		JS:     getStringsWithFallback("", "patterns.js", defaults.JS),
		Images: getStringsWithFallback("", "patterns.images", defaults.Images),
	}

	config.Safelist = assetclean.Safelist{
		Classes: getStringsWithFallback("safelist-class", "safelist.classes", nil),
		IDs:     getStringsWithFallback("safelist-id", "safelist.ids", nil),
		Tags:    getStringsWithFallback("safelist-tag", "safelist.tags", nil),
	}

	return config, nil
}

// newLogger builds the progress logger: debug with --verbose, errors only
// with --quiet.
func newLogger(w io.Writer, verbose, quiet bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "assetclean"})
	switch {
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	case verbose:
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func useColors() bool {
	return report.ShouldUseColors(getBoolWithFallback("color", "color", false))
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
// An empty list counts as unset.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if flagKey != "" {
		if v := k.Strings(flagKey); len(v) > 0 {
			return v
		}
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}
