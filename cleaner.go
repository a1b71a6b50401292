package assetclean

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/yacobolo/assetclean/internal/fsutil"
	"github.com/yacobolo/assetclean/internal/pathutil"
	"github.com/yacobolo/assetclean/internal/prune"
	"github.com/yacobolo/assetclean/internal/report"
	"github.com/yacobolo/assetclean/internal/stylesheet"
	"github.com/yacobolo/assetclean/internal/sweep"
	"github.com/yacobolo/assetclean/internal/usage"
	"golang.org/x/net/html"
)

// document is a parsed markup file kept between the collection and pruning
// phases.
type document struct {
	path string
	root *html.Node
	doc  *goquery.Document
}

// cssRefs are the files referenced from CSS, resolved to canonical paths.
type cssRefs struct {
	imports map[string][]string // stylesheet -> imported stylesheets
	images  map[string][]string // stylesheet -> url() targets
}

// run carries the state of one Clean call.
type run struct {
	config     Config
	log        *log.Logger
	parser     *stylesheet.Parser
	root       string
	quarantine string
	result     *Result

	inlineSheets map[string]bool // stylesheets @imported from <style> blocks
	inlineImages map[string]bool // url() targets in <style> blocks
	external     cssRefs
}

// Clean is the main entry point: it scans the project, prunes unused
// selectors, quarantines unreferenced assets and writes the report.
//
// Phases run strictly in order. Every document is collected before any
// pruning decision, so a class used in one page protects a rule defined in
// a stylesheet linked only from another page.
func Clean(config Config) (*Result, error) {
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// 0. Validate the environment before touching anything
	root, quarantine, err := resolveRoot(config)
	if err != nil {
		return nil, err
	}

	r := &run{
		config:       config,
		log:          logger,
		parser:       stylesheet.NewParser(logger),
		root:         root,
		quarantine:   quarantine,
		inlineSheets: make(map[string]bool),
		inlineImages: make(map[string]bool),
		external: cssRefs{
			imports: make(map[string][]string),
			images:  make(map[string][]string),
		},
		result: &Result{
			Root:       root,
			ReportPath: reportPath(quarantine, config.ReportFile),
			DryRun:     config.DryRun,
			Report:     report.New(),
		},
	}

	logger.Info("Scanning project...", "root", root)

	// 1. Discover files
	files, stats, err := discover(root, quarantine, config)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	r.result.Stats = stats
	logger.Debug("discovered files",
		"html", len(files.HTML), "css", len(files.CSS), "js", len(files.JS),
		"images", len(files.Images), "skipped", stats.FilesSkipped)

	// 2. Collect usage from every document
	logger.Info("Scanning HTML files...", "count", len(files.HTML))
	docs, used, err := r.collect(files.HTML)
	if err != nil {
		return nil, fmt.Errorf("collect failed: %w", err)
	}
	r.result.DocumentsScanned = len(docs)

	// 3. Prune <style> blocks
	if err := r.pruneInline(docs, used); err != nil {
		return nil, fmt.Errorf("inline prune failed: %w", err)
	}

	// 4. Prune external stylesheets
	logger.Info("Scanning external CSS for rule usage...", "count", len(files.CSS))
	if err := r.pruneExternal(files.CSS, used); err != nil {
		return nil, fmt.Errorf("stylesheet prune failed: %w", err)
	}

	// 5. Quarantine unreferenced assets
	logger.Info("Removing unused assets...")
	if err := r.sweep(files, used); err != nil {
		return nil, fmt.Errorf("sweep failed: %w", err)
	}

	// 6. Write the report
	for sheet, docs := range used.UsageMap() {
		r.result.Report.SetUsage(sheet, docs)
	}
	if !config.DryRun {
		if err := report.Write(r.result.ReportPath, r.result.Report); err != nil {
			return nil, fmt.Errorf("write report failed: %w", err)
		}
	}

	for _, w := range r.result.Warnings {
		logger.Warn(w.Text, "file", w.File)
	}
	logger.Info("Assets cleaner completed", "report", r.result.ReportPath, "dry-run", config.DryRun)

	return r.result, nil
}

func reportPath(quarantine, reportFile string) string {
	if reportFile == "" {
		reportFile = DefaultReportFile
	}
	if filepath.IsAbs(reportFile) {
		return reportFile
	}
	return filepath.Join(quarantine, reportFile)
}

func (r *run) warn(file, format string, args ...any) {
	r.result.Warnings = append(r.result.Warnings, Issue{File: r.rel(file), Text: fmt.Sprintf(format, args...)})
}

func (r *run) rel(path string) string {
	return pathutil.Rel(r.root, path)
}

// collect parses every document and folds it into one usage set.
func (r *run) collect(files []string) ([]document, *usage.Set, error) {
	b := usage.NewBuilder()
	docs := make([]document, 0, len(files))

	for _, file := range files {
		// #nosec G304 - path comes from discovery under the project root
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", file, err)
		}
		node, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", file, err)
		}

		d := document{path: file, root: node, doc: goquery.NewDocumentFromNode(node)}
		usage.Collect(b, d.doc, file, r.root)
		docs = append(docs, d)
		r.log.Debug("collected", "file", r.rel(file))
	}

	safe := r.config.Safelist
	for _, c := range safe.Classes {
		b.AddClass(c)
	}
	for _, id := range safe.IDs {
		b.AddID(id)
	}
	for _, tag := range safe.Tags {
		b.AddTag(strings.ToLower(tag))
	}

	return docs, b.Build(), nil
}

// pruneInline prunes the <style> blocks of every document and writes back
// the documents that changed.
func (r *run) pruneInline(docs []document, used *usage.Set) error {
	for _, d := range docs {
		out := prune.Document(d.doc, used, r.parser)
		r.result.Report.AddRemovedInlineSelectors(out.Removed...)

		for _, sheet := range out.Blocks {
			refs := sheet.References()
			for _, ref := range refs.Imports {
				if p, ok := pathutil.Resolve(d.path, ref, r.root); ok {
					r.inlineSheets[p] = true
				}
			}
			for _, ref := range refs.URLs {
				if p, ok := pathutil.Resolve(d.path, ref, r.root); ok {
					r.inlineImages[p] = true
				}
			}
		}

		if n := out.Malformed + out.ParseErrors; n > 0 {
			r.warn(d.path, IssueMalformedInlineCSS, n)
		}

		if !out.Changed {
			continue
		}
		r.result.DocumentsRewritten++
		r.log.Debug("pruned inline styles", "file", r.rel(d.path), "removed", len(out.Removed))

		if r.config.DryRun {
			continue
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, d.root); err != nil {
			return fmt.Errorf("render %s: %w", d.path, err)
		}
		if err := fsutil.WriteFile(d.path, buf.Bytes(), fsutil.Mode(d.path, 0o644)); err != nil {
			return err
		}
	}
	return nil
}

// pruneExternal prunes every stylesheet and rewrites it in canonical form.
func (r *run) pruneExternal(files []string, used *usage.Set) error {
	for _, file := range files {
		// #nosec G304 - path comes from discovery under the project root
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		sheet := r.parser.Parse(string(data), r.rel(file))
		out := prune.Prune(sheet, used)
		r.result.Report.AddRemovedSelectors(out.Removed...)
		r.result.StylesheetsPruned++

		if n := out.Malformed + sheet.Malformed; n > 0 {
			r.warn(file, IssueMalformedCSS, n)
		}

		refs := sheet.References()
		for _, ref := range refs.Imports {
			if p, ok := pathutil.Resolve(file, ref, r.root); ok {
				r.external.imports[file] = append(r.external.imports[file], p)
			}
		}
		for _, ref := range refs.URLs {
			if p, ok := pathutil.Resolve(file, ref, r.root); ok {
				r.external.images[file] = append(r.external.images[file], p)
			}
		}

		r.log.Debug("pruned stylesheet", "file", r.rel(file), "removed", len(out.Removed))
		if r.config.DryRun {
			continue
		}
		if err := fsutil.WriteFile(file, []byte(sheet.String()), fsutil.Mode(file, 0o644)); err != nil {
			return err
		}
	}
	return nil
}

// reachableSheets returns the stylesheets linked from markup or @imported,
// directly or transitively, by a linked stylesheet or a <style> block.
func (r *run) reachableSheets(used *usage.Set) map[string]bool {
	reached := make(map[string]bool)
	var queue []string
	visit := func(p string) {
		if !reached[p] {
			reached[p] = true
			queue = append(queue, p)
		}
	}

	for _, p := range used.Stylesheets() {
		visit(p)
	}
	for p := range r.inlineSheets {
		visit(p)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, imported := range r.external.imports[p] {
			visit(imported)
		}
	}
	return reached
}

// sweep plans and applies the quarantine moves for every asset kind.
func (r *run) sweep(files Discovered, used *usage.Set) error {
	sheets := r.reachableSheets(used)

	images := make(map[string]bool)
	for p := range r.inlineImages {
		images[p] = true
	}
	for sheet := range sheets {
		for _, p := range r.external.images[sheet] {
			images[p] = true
		}
	}

	opts := sweep.Options{
		Root:          r.root,
		QuarantineDir: r.quarantine,
		Layout:        r.config.QuarantineLayout,
		Keep:          r.config.Keep,
	}

	kinds := []struct {
		kind       sweep.Kind
		files      []string
		referenced func(string) bool
		record     func(string)
	}{
		{sweep.KindCSS, files.CSS, func(p string) bool { return sheets[p] }, r.result.Report.AddRemovedCSSFile},
		{sweep.KindJS, files.JS, used.HasScript, r.result.Report.AddRemovedJSFile},
		{sweep.KindImage, files.Images, func(p string) bool { return used.HasImage(p) || images[p] }, r.result.Report.AddRemovedImage},
	}

	for _, k := range kinds {
		moves, err := sweep.Plan(k.kind, k.files, k.referenced, opts)
		if err != nil {
			return err
		}

		for _, m := range moves {
			switch {
			case m.Collides:
				r.warn(m.Source, IssueQuarantineCollision, r.rel(m.Target))
			case m.Exists():
				r.warn(m.Source, IssueQuarantineReplace, r.rel(m.Target))
			}
			k.record(m.Source)
			r.log.Debug("quarantine", "kind", m.Kind, "file", r.rel(m.Source))
		}
		r.result.Moves = append(r.result.Moves, moves...)

		if r.config.DryRun {
			continue
		}
		if err := sweep.Apply(moves); err != nil {
			return err
		}
	}
	return nil
}
