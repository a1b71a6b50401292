package assetclean

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/yacobolo/assetclean/internal/pathutil"
)

// ScanStats tracks file discovery statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files kept for processing (after filtering)
	FilesSkipped    int // Files skipped by exclude patterns, .gitignore or quarantine
}

// Discovered lists the project's files by kind, as absolute paths in
// natural order.
type Discovered struct {
	HTML   []string
	CSS    []string
	JS     []string
	Images []string
}

// scanner expands patterns below one root
type scanner struct {
	root       string // absolute
	quarantine string // slash path relative to root, "" when outside root
	exclude    []string
	gitignore  bool

	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
}

func newScanner(root, quarantineDir string, config Config) (*scanner, error) {
	for _, p := range config.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	s := &scanner{
		root:      root,
		exclude:   config.Exclude,
		gitignore: config.RespectGitignore,
	}
	if rel, err := filepath.Rel(root, quarantineDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		s.quarantine = filepath.ToSlash(rel)
	}
	return s, nil
}

// loadGitIgnore loads <root>/.gitignore once
// Gracefully degrades if .gitignore doesn't exist
func (s *scanner) loadGitIgnore() *ignore.GitIgnore {
	s.gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(s.root, ".gitignore"))
		if err != nil {
			// no .gitignore is fine
			return
		}
		s.gitIgnoreCache = gi
	})
	return s.gitIgnoreCache
}

// shouldSkipFile determines if a file should be excluded from scanning.
// rel is slash-separated and relative to the root.
//
// Three-layer filtering:
// 1. Quarantine: never rescan files moved by an earlier run
// 2. Exclude patterns (default: **/node_modules/**)
// 3. Gitignore, when enabled
func (s *scanner) shouldSkipFile(rel string) bool {
	if s.quarantine != "" && (rel == s.quarantine || strings.HasPrefix(rel, s.quarantine+"/")) {
		return true
	}

	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}

	if s.gitignore {
		gi := s.loadGitIgnore()
		if gi != nil && gi.MatchesPath(rel) {
			return true
		}
	}

	return false
}

// expandGlobPatternsWithStats expands globs relative to the root and tracks
// statistics. Results are absolute, deduplicated and naturally sorted.
func (s *scanner) expandGlobPatternsWithStats(patterns []string, stats *ScanStats) ([]string, error) {
	fsys := os.DirFS(s.root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(path.Clean(filepath.ToSlash(pattern)), "./")
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			if s.shouldSkipFile(match) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, filepath.Join(s.root, filepath.FromSlash(match)))
			stats.FilesScanned++
		}
	}

	slices.SortFunc(files, pathutil.NaturalCompare)
	return files, nil
}

// Discover finds the project's files without reading them.
func Discover(config Config) (Discovered, ScanStats, error) {
	root, quarantine, err := resolveRoot(config)
	if err != nil {
		return Discovered{}, ScanStats{}, err
	}
	return discover(root, quarantine, config)
}

func discover(root, quarantine string, config Config) (Discovered, ScanStats, error) {
	var (
		found Discovered
		stats ScanStats
	)

	s, err := newScanner(root, quarantine, config)
	if err != nil {
		return found, stats, err
	}

	patterns := withDefaults(config.Patterns)
	kinds := []struct {
		patterns []string
		dst      *[]string
	}{
		{patterns.HTML, &found.HTML},
		{patterns.CSS, &found.CSS},
		{patterns.JS, &found.JS},
		{patterns.Images, &found.Images},
	}
	for _, kind := range kinds {
		files, err := s.expandGlobPatternsWithStats(kind.patterns, &stats)
		if err != nil {
			return found, stats, err
		}
		*kind.dst = files
	}

	return found, stats, nil
}

// withDefaults fills kinds that have no patterns.
func withDefaults(p Patterns) Patterns {
	d := DefaultPatterns()
	if len(p.HTML) == 0 {
		p.HTML = d.HTML
	}
	if len(p.CSS) == 0 {
		p.CSS = d.CSS
	}
	if len(p.JS) == 0 {
		p.JS = d.JS
	}
	if len(p.Images) == 0 {
		p.Images = d.Images
	}
	return p
}

// resolveRoot validates the project root and returns it together with the
// quarantine directory, both absolute.
func resolveRoot(config Config) (string, string, error) {
	rootArg := config.Root
	if rootArg == "" {
		rootArg = "."
	}

	root, err := filepath.Abs(rootArg)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrNoProject, rootArg, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrNoProject, root, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is not a directory", ErrNoProject, root)
	}

	quarantine := config.QuarantineDir
	if quarantine == "" {
		quarantine = DefaultQuarantineDir
	}
	if !filepath.IsAbs(quarantine) {
		quarantine = filepath.Join(root, quarantine)
	}

	return root, filepath.Clean(quarantine), nil
}
