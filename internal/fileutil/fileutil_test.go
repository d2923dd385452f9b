package fileutil

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "nested", "repository", "dst.mp3")

	content := []byte("recorded audio")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("got %d bytes, expected %d", n, len(content))
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}

	srcSum, err := Digest(src)
	if err != nil {
		t.Fatal(err)
	}
	dstSum, err := Digest(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(srcSum, dstSum) || len(srcSum) != 32 {
		t.Error("expected equal 32 byte digests")
	}
}

func TestCopyFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		_, err := CopyFile(filepath.Join(dir, "none"), filepath.Join(dir, "out"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("directory source", func(t *testing.T) {
		t.Parallel()
		if _, err := CopyFile(dir, filepath.Join(t.TempDir(), "out")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCopyTree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "html")

	for rel, content := range map[string]string{
		"index.html":        "<html></html>",
		"js/app.js":         "console.log(1)",
		"css/deep/site.css": "body{}",
	} {
		path := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	n, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree() error = %v", err)
	}
	if n != 3 {
		t.Errorf("got %d files, expected 3", n)
	}
	got, err := os.ReadFile(filepath.Join(dst, "css", "deep", "site.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "body{}" {
		t.Errorf("got %q", got)
	}

	if !Exists(filepath.Join(dst, "js", "app.js")) {
		t.Error("expected js/app.js to exist")
	}
	if Exists(filepath.Join(dst, "missing")) {
		t.Error("expected missing file not to exist")
	}

	if _, err := CopyTree(filepath.Join(src, "index.html"), dst); err == nil {
		t.Error("expected an error for a file source")
	}
}
