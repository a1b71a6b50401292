package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/assetclean"
	"github.com/yacobolo/assetclean/internal/sweep"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".assetclean.yaml")
	configContent := `
root: site
dry-run: true
verbose: true

quarantine:
  dir: trash
  layout: flat

safelist:
  classes: [is-open, js-active]

patterns:
  html: ["public/**/*.html"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "site", k.String("root"))
	assert.True(t, k.Bool("dry-run"))
	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, "trash", k.String("quarantine.dir"))
	assert.Equal(t, "flat", k.String("quarantine.layout"))
	assert.Equal(t, []string{"is-open", "js-active"}, k.Strings("safelist.classes"))
	assert.Equal(t, []string{"public/**/*.html"}, k.Strings("patterns.html"))
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config, should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.assetclean.yaml"))

	config, err := buildCleanConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ".", config.Root)
	assert.Equal(t, assetclean.DefaultQuarantineDir, config.QuarantineDir)
	assert.Equal(t, assetclean.DefaultReportFile, config.ReportFile)
	assert.Equal(t, sweep.LayoutMirror, config.QuarantineLayout)
	assert.False(t, config.RespectGitignore)
	assert.False(t, config.DryRun)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".assetclean.yaml")
	configContent := `
dry-run: false
quarantine:
  dir: from-file
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set env vars that should override config file
	t.Setenv("ASSETCLEAN_QUARANTINE_DIR", "from-env")
	t.Setenv("ASSETCLEAN_DRY_RUN", "true")
	t.Setenv("ASSETCLEAN_KEEP", "vendor/**, img/logo.png")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env", k.String("quarantine.dir"))
	assert.True(t, k.Bool("dry-run"))
	assert.Equal(t, []string{"vendor/**", "img/logo.png"}, k.Strings("keep"))
}

func TestEnvValue(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantKey string
		want    any
	}{
		{"nested key", "ASSETCLEAN_QUARANTINE_LAYOUT", "flat", "quarantine.layout", "flat"},
		{"hyphenated key", "ASSETCLEAN_OUTPUT_FORMAT", "json", "output-format", "json"},
		{"list key", "ASSETCLEAN_SAFELIST_TAGS", "dialog,,details", "safelist.tags", []string{"dialog", "details"}},
		{"plain key", "ASSETCLEAN_ROOT", "site", "root", "site"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, val := envValue(tt.env, tt.value)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.want, val)
		})
	}
}

func TestBuildCleanConfig_Defaults(t *testing.T) {
	resetKoanf()

	config, err := buildCleanConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, assetclean.DefaultPatterns(), config.Patterns)
	assert.Equal(t, []string{"**/node_modules/**"}, config.Exclude)
	assert.Empty(t, config.Keep)
	assert.Empty(t, config.Safelist.Classes)
}

func TestBuildCleanConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".assetclean.yaml")
	configContent := `
root: public
respect-gitignore: false
exclude: ["drafts/**"]
keep: ["img/og-*.png"]
quarantine:
  layout: flat
report:
  file: report.json
safelist:
  ids: [modal]
  tags: [dialog]
patterns:
  js: ["js/**/*.mjs"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	config, err := buildCleanConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "public", config.Root)
	assert.False(t, config.RespectGitignore)
	assert.Equal(t, []string{"drafts/**"}, config.Exclude)
	assert.Equal(t, []string{"img/og-*.png"}, config.Keep)
	assert.Equal(t, sweep.LayoutFlat, config.QuarantineLayout)
	assert.Equal(t, "report.json", config.ReportFile)
	assert.Equal(t, []string{"modal"}, config.Safelist.IDs)
	assert.Equal(t, []string{"dialog"}, config.Safelist.Tags)
	assert.Equal(t, []string{"js/**/*.mjs"}, config.Patterns.JS)
	assert.Equal(t, []string{"**/*.html"}, config.Patterns.HTML)
}

func TestBuildCleanConfig_PositionalRootWins(t *testing.T) {
	resetKoanf()
	require.NoError(t, k.Set("root", "from-config"))

	config, err := buildCleanConfig([]string{"from-arg"})
	require.NoError(t, err)
	assert.Equal(t, "from-arg", config.Root)
}

func TestBuildCleanConfig_RespectGitignoreOptIn(t *testing.T) {
	resetKoanf()
	require.NoError(t, k.Set("respect-gitignore", true))

	config, err := buildCleanConfig(nil)
	require.NoError(t, err)
	assert.True(t, config.RespectGitignore)
}

func TestBuildCleanConfig_InvalidLayout(t *testing.T) {
	resetKoanf()
	require.NoError(t, k.Set("quarantine.layout", "sideways"))

	_, err := buildCleanConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	// Verify file was created
	data, err := os.ReadFile(".assetclean.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "quarantine:")
	assert.Contains(t, string(data), "safelist:")
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	chdir(t, t.TempDir())

	// Create existing file
	require.NoError(t, os.WriteFile(".assetclean.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	chdir(t, t.TempDir())

	// Create existing file
	require.NoError(t, os.WriteFile(".assetclean.yaml", []byte("existing"), 0644))

	cmd := rootCmd
	cmd.SetArgs([]string{"init", "--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(".assetclean.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "layout: mirror")
}

func TestInitConfig_IsLoadable(t *testing.T) {
	resetKoanf()

	path := filepath.Join(t.TempDir(), ".assetclean.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfig), 0644))
	require.NoError(t, loadConfigFromPath(path))

	config, err := buildCleanConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, assetclean.DefaultPatterns(), config.Patterns)
	assert.Equal(t, "removed", config.QuarantineDir)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "assetclean")
}

func TestCleanCommand_JSONOutput(t *testing.T) {
	resetKoanf()

	project := t.TempDir()
	chdir(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(project, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "index.html"),
		[]byte(`<html><head><link rel="stylesheet" href="css/site.css"></head><body class="a"></body></html>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, "css", "site.css"), []byte(".a{color:red}.b{color:blue}"), 0o644))

	var out bytes.Buffer
	cmd := rootCmd
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	cmd.SetArgs([]string{"clean", project, "--output-format", "json"})
	require.NoError(t, cmd.Execute())

	var got struct {
		RemovedSelectors []string `json:"removedSelectors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []string{".b"}, got.RemovedSelectors)

	css, err := os.ReadFile(filepath.Join(project, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, ".a{color:red}\n", string(css))
	assert.FileExists(t, filepath.Join(project, "removed", "assets-cleaner-report.json"))
}

func TestCleanCommand_MissingRoot(t *testing.T) {
	resetKoanf()
	chdir(t, t.TempDir())

	cmd := rootCmd
	cmd.SetArgs([]string{"clean", filepath.Join(t.TempDir(), "missing"), "--output-format", "none"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, assetclean.ErrNoProject)
}

func TestGetStringWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, "default", getStringWithFallback("flag-key", "config.key", "default"))
}

func TestGetBoolWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.False(t, getBoolWithFallback("flag-key", "config.key", false))
	assert.True(t, getBoolWithFallback("flag-key", "config.key", true))
}

func TestGetStringsWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, []string{"d"}, getStringsWithFallback("flag-key", "config.key", []string{"d"}))

	require.NoError(t, k.Set("config.key", []string{"c"}))
	assert.Equal(t, []string{"c"}, getStringsWithFallback("flag-key", "config.key", []string{"d"}))
}
