package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPlan(t *testing.T) {
	root := filepath.FromSlash("/proj")
	files := []string{
		filepath.FromSlash("/proj/img/used.png"),
		filepath.FromSlash("/proj/img/logo.png"),
		filepath.FromSlash("/proj/old/logo.png"),
		filepath.FromSlash("/proj/vendor/keep.png"),
	}
	referenced := func(p string) bool { return p == filepath.FromSlash("/proj/img/used.png") }

	t.Run("mirror layout", func(t *testing.T) {
		moves, err := Plan(KindImage, files, referenced, Options{
			Root:          root,
			QuarantineDir: filepath.Join(root, "removed"),
			Keep:          []string{"vendor/**"},
		})
		require.NoError(t, err)
		require.Len(t, moves, 2)

		assert.Equal(t, filepath.FromSlash("/proj/img/logo.png"), moves[0].Source)
		assert.Equal(t, filepath.FromSlash("/proj/removed/images/img/logo.png"), moves[0].Target)
		assert.Equal(t, filepath.FromSlash("/proj/removed/images/old/logo.png"), moves[1].Target)
		assert.False(t, moves[1].Collides)
	})

	t.Run("flat layout collides on basename", func(t *testing.T) {
		moves, err := Plan(KindImage, files, referenced, Options{
			Root:          root,
			QuarantineDir: filepath.Join(root, "removed"),
			Layout:        LayoutFlat,
			Keep:          []string{"vendor/**"},
		})
		require.NoError(t, err)
		require.Len(t, moves, 2)

		assert.Equal(t, filepath.FromSlash("/proj/removed/images/logo.png"), moves[0].Target)
		assert.Equal(t, moves[0].Target, moves[1].Target)
		assert.False(t, moves[0].Collides)
		assert.True(t, moves[1].Collides)
	})

	t.Run("everything referenced", func(t *testing.T) {
		moves, err := Plan(KindCSS, files, func(string) bool { return true }, Options{Root: root})
		require.NoError(t, err)
		assert.Empty(t, moves)
	})

	t.Run("bad keep pattern", func(t *testing.T) {
		_, err := Plan(KindJS, files, referenced, Options{Root: root, Keep: []string{"[unclosed"}})
		require.ErrorIs(t, err, ErrBadPattern)
	})
}

func TestApply(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "js", "unused.js")
	writeFile(t, src, "console.log(1)")

	target := filepath.Join(root, "removed", "js", "js", "unused.js")
	writeFile(t, target, "stale")

	m := Move{Kind: KindJS, Source: src, Target: target}
	assert.True(t, m.Exists())
	require.NoError(t, Apply([]Move{m}))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(content))
}

func TestApply_MissingSourceFails(t *testing.T) {
	root := t.TempDir()
	err := Apply([]Move{{
		Kind:   KindCSS,
		Source: filepath.Join(root, "missing.css"),
		Target: filepath.Join(root, "removed", "css", "missing.css"),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.css")
}
