package site

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pdscload/internal/index"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/testsupport"
)

func fixtureIndex(t *testing.T) *model.Index {
	t.Helper()

	root := testsupport.WriteArchive(t, t.TempDir())
	idx, _, err := index.NewBuilder().BuildFromRoot(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildFromRoot() error = %v", err)
	}
	return idx
}

// TestGenerate tests a full site generation of the fixture archive.
func TestGenerate(t *testing.T) {
	t.Parallel()

	idx := fixtureIndex(t)
	root := filepath.Join(t.TempDir(), "html")
	rec := model.NewRecorder()

	result, err := NewGenerator(root, WithObserver(rec)).Generate(context.Background(), idx)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	t.Run("items and missing files", func(t *testing.T) {
		t.Parallel()
		if len(result.Items) != 5 {
			t.Errorf("got %d items, expected 5", len(result.Items))
		}
		if len(result.Missing) != 1 || !strings.HasSuffix(result.Missing[0], "DT1-521-B.pdf") {
			t.Errorf("got missing %v", result.Missing)
		}
		errs := rec.Errors()
		if len(errs) != 1 || !strings.HasPrefix(errs[0], "DT1/521 missing file: ") {
			t.Errorf("got errors %v", errs)
		}
	})

	t.Run("content copied into place", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{
			"DT1/214/images/content/DT1-214-A.png",
			"DT1/214/images/content/DT1-214-A-thumb-PDSC_ADMIN.png",
			"DT1/214/media/content/DT1-214-A.mp3",
			"DT1/214/files/content/DT1-214-A.eaf",
			"NT5/TokelauOf/media/content/NT5-TokelauOf-A.webm",
			"DT1/214/files/index.html",
			"index.html",
		} {
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err != nil {
				t.Errorf("expected %s: %v", p, err)
			}
		}
	})

	t.Run("item information", func(t *testing.T) {
		t.Parallel()
		data, err := os.ReadFile(filepath.Join(root, "DT1", "214", InformationDir, "item.json"))
		if err != nil {
			t.Fatalf("read item.json: %v", err)
		}
		var item model.Item
		if err := json.Unmarshal(data, &item); err != nil {
			t.Fatalf("decode item.json: %v", err)
		}
		if item.Images[0].Path != "images/content/DT1-214-A.png" {
			t.Errorf("got image path %q", item.Images[0].Path)
		}
		if item.Images[0].Thumbnail != "images/content/DT1-214-A-thumb-PDSC_ADMIN.png" {
			t.Errorf("got thumbnail %q", item.Images[0].Thumbnail)
		}
		if len(item.People) != 1 || item.People[0].Name != "Mary Speaker" {
			t.Errorf("expected only speakers, got %v", item.People)
		}
	})

	t.Run("index page", func(t *testing.T) {
		t.Parallel()
		data, err := os.ReadFile(filepath.Join(root, "index.html"))
		if err != nil {
			t.Fatalf("read index.html: %v", err)
		}
		page := string(data)
		for _, want := range []string{
			"<!DOCTYPE html>",
			"By Identifier",
			`href="DT1/214/files/index.html"`,
			"By Genre",
			"slit drum",
			"Mary Speaker (speaker)",
		} {
			if !strings.Contains(page, want) {
				t.Errorf("expected index page to contain %q", want)
			}
		}
		if strings.Contains(page, "(depositor)") {
			t.Error("expected depositors to be left out")
		}
	})

	t.Run("links resolve", func(t *testing.T) {
		t.Parallel()
		if len(result.BrokenLinks) != 0 {
			t.Errorf("got broken links %v", result.BrokenLinks)
		}
	})

	t.Run("messages", func(t *testing.T) {
		t.Parallel()
		infos := rec.Infos()
		if len(infos) != 15 {
			t.Errorf("got %d infos, expected 3 per item", len(infos))
		}
		if infos[0] != "Setting up data path for DT1/214" {
			t.Errorf("got %q", infos[0])
		}
		events := rec.ProgressEvents()
		if events[len(events)-1] != [2]int{5, 5} {
			t.Errorf("got last progress %v", events[len(events)-1])
		}
	})
}

// TestGenerateCancelled tests that a cancelled generation writes no index page.
func TestGenerateCancelled(t *testing.T) {
	t.Parallel()

	idx := fixtureIndex(t)
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGenerator(root).Generate(ctx, idx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, expected context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); !os.IsNotExist(err) {
		t.Error("expected no index page")
	}
}

// TestCheckLinks tests broken link detection on generated pages.
func TestCheckLinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a", "present.mp3"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(root, "a", "page.html"), []byte(`<html><body>
<a href="present.mp3">ok</a>
<a href="missing.pdf">gone</a>
<img src="../nothing.png">
<a href="https://catalog.paradisec.org.au/collections/DT1">catalog</a>
<a href="#top">top</a>
<a href="/repository/DT1/214/x.mp3">absolute</a>
</body></html>`))

	broken, err := CheckLinks(root)
	if err != nil {
		t.Fatalf("CheckLinks() error = %v", err)
	}
	if len(broken) != 2 {
		t.Fatalf("got %v, expected 2 broken links", broken)
	}
	if broken[0] != (Link{Page: "a/page.html", Target: "missing.pdf"}) {
		t.Errorf("got %v", broken[0])
	}
	if broken[1].String() != "Broken link in a/page.html: ../nothing.png" {
		t.Errorf("got %q", broken[1].String())
	}
}

// TestPageLinks tests link extraction from a page.
func TestPageLinks(t *testing.T) {
	t.Parallel()

	page := `<html><head><link rel="stylesheet" href="s.css"></head><body>
<audio controls><source src="a.mp3" type="audio/mpeg"></audio>
<a>no href</a><img src="i.png"></body></html>`

	links, err := PageLinks(strings.NewReader(page))
	if err != nil {
		t.Fatalf("PageLinks() error = %v", err)
	}
	expected := []string{"s.css", "a.mp3", "i.png"}
	if strings.Join(links, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, expected %v", links, expected)
	}
}
