package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		gt.NoError(t, err)
		_, err = f.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	ctx := context.Background()

	t.Run("Nested zipball root is resolved", func(t *testing.T) {
		data := zipOf(t, map[string]string{
			"owner-repo-abc123/README.md":       "# readme",
			"owner-repo-abc123/src/__init__.py": "",
		})

		checkout, err := extractZip(ctx, data)
		gt.NoError(t, err)
		defer func() {
			_ = os.RemoveAll(checkout.TempDir)
		}()

		gt.Value(t, checkout.RootDir).Equal(filepath.Join(checkout.TempDir, "owner-repo-abc123"))
		gt.Number(t, len(checkout.Files)).Equal(2)

		content, err := os.ReadFile(filepath.Join(checkout.RootDir, "README.md"))
		gt.NoError(t, err)
		gt.String(t, string(content)).Contains("# readme")
	})

	t.Run("Flat archive keeps the temp dir as root", func(t *testing.T) {
		data := zipOf(t, map[string]string{
			"README.md": "# readme",
			"main.py":   "print('hi')",
		})

		checkout, err := extractZip(ctx, data)
		gt.NoError(t, err)
		defer func() {
			_ = os.RemoveAll(checkout.TempDir)
		}()

		gt.Value(t, checkout.RootDir).Equal(checkout.TempDir)
	})

	t.Run("Path traversal entries are rejected", func(t *testing.T) {
		data := zipOf(t, map[string]string{
			"../evil.txt": "escape attempt",
		})

		_, err := extractZip(ctx, data)
		gt.Error(t, err)
	})

	t.Run("Invalid zip data is rejected", func(t *testing.T) {
		_, err := extractZip(ctx, []byte("not a zip archive"))
		gt.Error(t, err)
	})
}

func TestSourceRoot(t *testing.T) {
	t.Run("Single top-level directory", func(t *testing.T) {
		root := sourceRoot("/tmp/x", []string{"repo-abc/", "repo-abc/a.txt", "repo-abc/sub/b.txt"})
		gt.Value(t, root).Equal(filepath.Join("/tmp/x", "repo-abc"))
	})

	t.Run("Multiple top-level entries", func(t *testing.T) {
		root := sourceRoot("/tmp/x", []string{"a/f.txt", "b/g.txt"})
		gt.Value(t, root).Equal("/tmp/x")
	})

	t.Run("No files", func(t *testing.T) {
		gt.Value(t, sourceRoot("/tmp/x", nil)).Equal("/tmp/x")
	})
}
