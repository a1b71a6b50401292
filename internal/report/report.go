// Package report accumulates what a cleaning run changed and renders it.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/yacobolo/assetclean/internal/fsutil"
)

// FileName is the report's default name inside the quarantine directory.
const FileName = "assets-cleaner-report.json"

// Report is the JSON document written at the end of a run. Field order and
// names are part of the output format.
type Report struct {
	RemovedCSSFiles        []string            `json:"removedCSSFiles"`
	RemovedJSFiles         []string            `json:"removedJSFiles"`
	RemovedImages          []string            `json:"removedImages"`
	RemovedSelectors       []string            `json:"removedSelectors"`
	RemovedInlineSelectors []string            `json:"removedInlineSelectors"`
	CSSUsageMap            map[string][]string `json:"cssUsageMap"`
}

// New returns an empty report whose lists encode as [] rather than null.
func New() *Report {
	return &Report{
		RemovedCSSFiles:        []string{},
		RemovedJSFiles:         []string{},
		RemovedImages:          []string{},
		RemovedSelectors:       []string{},
		RemovedInlineSelectors: []string{},
		CSSUsageMap:            map[string][]string{},
	}
}

// AddRemovedCSSFile records a quarantined stylesheet.
func (r *Report) AddRemovedCSSFile(path string) {
	r.RemovedCSSFiles = append(r.RemovedCSSFiles, path)
}

// AddRemovedJSFile records a quarantined script.
func (r *Report) AddRemovedJSFile(path string) {
	r.RemovedJSFiles = append(r.RemovedJSFiles, path)
}

// AddRemovedImage records a quarantined image.
func (r *Report) AddRemovedImage(path string) {
	r.RemovedImages = append(r.RemovedImages, path)
}

// AddRemovedSelectors records selectors dropped from external stylesheets.
func (r *Report) AddRemovedSelectors(selectors ...string) {
	r.RemovedSelectors = append(r.RemovedSelectors, selectors...)
}

// AddRemovedInlineSelectors records selectors dropped from <style> blocks.
func (r *Report) AddRemovedInlineSelectors(selectors ...string) {
	r.RemovedInlineSelectors = append(r.RemovedInlineSelectors, selectors...)
}

// SetUsage replaces the documents recorded for stylesheet.
func (r *Report) SetUsage(stylesheet string, documents []string) {
	r.CSSUsageMap[stylesheet] = slices.Clone(documents)
}

// Encode writes the report as two-space indented JSON.
func (r *Report) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	// selectors like "ul>li" stay readable
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// Write stores the report at path, creating parent directories and
// replacing any previous report.
func Write(path string, r *Report) error {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return fsutil.WriteFile(path, buf.Bytes(), 0o644)
}
