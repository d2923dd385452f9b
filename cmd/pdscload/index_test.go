package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/testsupport"
)

func decodeIndex(t *testing.T, data []byte) *model.Index {
	t.Helper()

	var idx model.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("failed to decode index: %v\n%s", err, data)
	}
	return &idx
}

// TestRunIndexCmd tests indexing the fixture archive.
func TestRunIndexCmd(t *testing.T) {
	t.Parallel()

	data := testsupport.WriteArchive(t, t.TempDir())

	t.Run("json to stdout", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := executeRoot(t, "index", "-d", data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		idx := decodeIndex(t, []byte(stdout))
		if len(idx.Items) != 5 || len(idx.Collections) != 3 {
			t.Errorf("got %d items, %d collections", len(idx.Items), len(idx.Collections))
		}
	})

	t.Run("pretty json to file", func(t *testing.T) {
		t.Parallel()
		output := filepath.Join(t.TempDir(), "out", "index.json")
		stdout, _, err := executeRoot(t, "index", "-d", data, "-p", "-o", output)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}
		content, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(content), "\n  ") {
			t.Error("expected indented output")
		}
		if idx := decodeIndex(t, content); len(idx.Items) != 5 {
			t.Errorf("got %d items", len(idx.Items))
		}
	})

	t.Run("markdown catalogue", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := executeRoot(t, "index", "-d", data, "--format", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"# Catalogue", "## By Genre", "## By Speaker", "`DT1-214`"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("exclude and catalog url", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := executeRoot(t, "index", "-d", data, "-x", "NT*", "--catalog-url", "https://example.org/c")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		idx := decodeIndex(t, []byte(stdout))
		if len(idx.Items) != 3 {
			t.Errorf("got %d items, expected 3", len(idx.Items))
		}
		for _, c := range idx.Collections {
			if !strings.HasPrefix(c.CollectionLink, "https://example.org/c/") {
				t.Errorf("got collection link %q", c.CollectionLink)
			}
		}
	})

	t.Run("config file skips collections", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "loader.yaml")
		testsupport.WriteFile(t, configPath, []byte("defaults:\n  dataPath: "+data+"\ncollections:\n  NT5:\n    skip: true\n"))

		stdout, _, err := executeRoot(t, "index", "-c", configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		idx := decodeIndex(t, []byte(stdout))
		if len(idx.Items) != 4 {
			t.Errorf("got %d items, expected 4", len(idx.Items))
		}
		for _, item := range idx.Items {
			if item.CollectionID == "NT5" {
				t.Errorf("expected NT5 to be skipped, got %s", item.Key())
			}
		}
	})

	t.Run("text listing", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := executeRoot(t, "index", "-d", data, "-f", "text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Items:       5") || !strings.Contains(stdout, "DT1-214") {
			t.Errorf("got:\n%s", stdout)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		if _, _, err := executeRoot(t, "index", "-d", data, "-f", "xml"); err == nil {
			t.Error("expected an error for an unknown format")
		}
	})

	t.Run("missing data path", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeRoot(t, "index", "-d", filepath.Join(t.TempDir(), "none"))
		if err == nil {
			t.Error("expected an error for a missing data path")
		}
	})
}

// TestEnvPrecedence tests that the environment supplies paths and flags
// override it. It cannot run in parallel because it sets the environment.
func TestEnvPrecedence(t *testing.T) {
	data := testsupport.WriteArchive(t, t.TempDir())

	t.Run("env supplies the data path", func(t *testing.T) {
		t.Setenv(envDataPath, data)

		stdout, _, err := executeRoot(t, "index")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx := decodeIndex(t, []byte(stdout)); len(idx.Items) != 5 {
			t.Errorf("got %d items", len(idx.Items))
		}
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv(envDataPath, filepath.Join(t.TempDir(), "none"))

		stdout, _, err := executeRoot(t, "index", "-d", data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idx := decodeIndex(t, []byte(stdout)); len(idx.Items) != 5 {
			t.Errorf("got %d items", len(idx.Items))
		}
	})
}
