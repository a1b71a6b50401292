// Package sweep moves unreferenced asset files into a quarantine directory.
package sweep

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yacobolo/assetclean/internal/pathutil"
	"go.uber.org/multierr"
)

// Kind is an asset category; it names the quarantine subdirectory.
type Kind string

// Asset kinds.
const (
	KindCSS   Kind = "css"
	KindJS    Kind = "js"
	KindImage Kind = "images"
)

// Layout decides where a quarantined file lands inside its kind directory.
type Layout string

const (
	// LayoutMirror keeps the path relative to the project root:
	// css/old/site.css -> removed/css/css/old/site.css
	LayoutMirror Layout = "mirror"
	// LayoutFlat keeps only the basename; same-named files overwrite each
	// other.
	LayoutFlat Layout = "flat"
)

// ErrBadPattern is returned for an invalid keep pattern.
var ErrBadPattern = errors.New("invalid keep pattern")

// Options configures planning.
type Options struct {
	Root          string   // project root, absolute
	QuarantineDir string   // absolute, e.g. <root>/removed
	Layout        Layout   // defaults to LayoutMirror
	Keep          []string // doublestar patterns relative to Root that are never moved
}

// Move relocates one file.
type Move struct {
	Kind   Kind
	Source string
	Target string
	// Collides is set when an earlier move in the same plan already
	// targets the same path (flat layout only).
	Collides bool
}

// Plan returns the moves for every file of kind that referenced rejects.
// It does not touch the filesystem.
func Plan(kind Kind, files []string, referenced func(string) bool, opts Options) ([]Move, error) {
	for _, p := range opts.Keep {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}

	kindDir := filepath.Join(opts.QuarantineDir, string(kind))
	targets := make(map[string]bool)

	var moves []Move
	for _, file := range files {
		if referenced(file) || keep(opts, file) {
			continue
		}

		var target string
		switch opts.Layout {
		case LayoutFlat:
			target = filepath.Join(kindDir, filepath.Base(file))
		default:
			target = filepath.Join(kindDir, filepath.FromSlash(pathutil.Rel(opts.Root, file)))
		}

		moves = append(moves, Move{
			Kind:     kind,
			Source:   file,
			Target:   target,
			Collides: targets[target],
		})
		targets[target] = true
	}
	return moves, nil
}

func keep(opts Options, file string) bool {
	rel := pathutil.Rel(opts.Root, file)
	for _, p := range opts.Keep {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Apply performs the moves in order, creating directories as needed and
// replacing existing targets. It stops at the first failure.
func Apply(moves []Move) error {
	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.Target), 0o755); err != nil {
			return fmt.Errorf("create quarantine dir for %s: %w", m.Source, err)
		}
		if err := moveFile(m.Source, m.Target); err != nil {
			return fmt.Errorf("move %s: %w", m.Source, err)
		}
	}
	return nil
}

// Exists reports whether a move would replace a file already in quarantine.
func (m Move) Exists() bool {
	_, err := os.Stat(m.Target)
	return err == nil
}

func moveFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	// Rename fails across devices; fall back to copy and remove.
	if err := copyFile(src, dst); err != nil {
		return multierr.Append(renameErr, err)
	}
	return os.Remove(src)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
