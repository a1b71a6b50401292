// Package assetclean removes unused CSS and quarantines unreferenced assets
// in a static web project.
//
// A run scans every HTML document under the project root and collects the
// classes, ids and tag names it uses together with the stylesheets, scripts
// and images it references. It then drops every CSS selector that none of
// those tokens reach, both in <style> blocks and in external stylesheets,
// and moves asset files nobody references into a quarantine directory:
//
//	result, err := assetclean.Clean(assetclean.DefaultConfig("path/to/site"))
//
// Unused files end up under removed/css, removed/js and removed/images, and
// removed/assets-cleaner-report.json lists everything that changed.
//
// # CLI Tool
//
// assetclean also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/assetclean/cmd/assetclean@latest
package assetclean

// Public API:
// - Clean(config Config) (*Result, error)
// - Discover(config Config) (Discovered, ScanStats, error)
// - DetermineOutputFormat(requested string, quiet bool) OutputFormat
// - WriteOutput(w io.Writer, result *Result, format OutputFormat, opts OutputOptions) error
