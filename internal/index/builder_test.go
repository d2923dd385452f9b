package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/testsupport"
)

func buildFixture(t *testing.T, opts ...Option) (*model.Index, *model.Recorder) {
	t.Helper()

	root := testsupport.WriteArchive(t, t.TempDir(), testsupport.WithBrokenFolders())
	rec := model.NewRecorder()
	opts = append([]Option{WithObserver(rec)}, opts...)

	idx, _, err := NewBuilder(opts...).BuildFromRoot(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildFromRoot() error = %v", err)
	}
	return idx, rec
}

// TestBuildFixtureArchive tests the end-to-end index of the fixture archive.
func TestBuildFixtureArchive(t *testing.T) {
	t.Parallel()

	idx, rec := buildFixture(t)

	t.Run("counts", func(t *testing.T) {
		t.Parallel()
		if len(idx.Items) != 5 {
			t.Errorf("got %d items, expected 5", len(idx.Items))
		}
		if len(idx.Collections) != 3 {
			t.Errorf("got %d collections, expected 3", len(idx.Collections))
		}
		if len(idx.Locations) != 5 {
			t.Errorf("got %d locations, expected 5", len(idx.Locations))
		}
	})

	t.Run("collections in first-seen order", func(t *testing.T) {
		t.Parallel()
		var ids []string
		for _, c := range idx.Collections {
			ids = append(ids, c.CollectionID)
		}
		if !reflect.DeepEqual(ids, []string{"DT1", "NT1", "NT5"}) {
			t.Errorf("got %v", ids)
		}
	})

	t.Run("NT1-98007 languages", func(t *testing.T) {
		t.Parallel()
		item := idx.Item("NT1", "98007")
		if item == nil {
			t.Fatal("expected item NT1-98007")
		}
		expected := []string{"Bislama - bis", "Efate, South - erk", "Nafsan"}
		if !reflect.DeepEqual(item.Languages, expected) {
			t.Errorf("got %v", item.Languages)
		}
	})

	t.Run("DT1-940 is music", func(t *testing.T) {
		t.Parallel()
		item := idx.Item("DT1", "940")
		if item == nil {
			t.Fatal("expected item DT1-940")
		}
		if !reflect.DeepEqual(item.Categories, []string{"music"}) {
			t.Errorf("got %v", item.Categories)
		}
	})

	t.Run("DT1 collection merge", func(t *testing.T) {
		t.Parallel()
		c := idx.Collection("DT1")
		if !reflect.DeepEqual(c.Items, []string{"214", "521", "940"}) {
			t.Errorf("got items %v", c.Items)
		}
		expectedPeople := []model.Person{
			{Role: "collector", Name: "Anna Collector"},
			{Role: "speaker", Name: "Mary Speaker"},
			{Role: "speaker", Name: "John Teller"},
			{Role: "performer", Name: "Kalo Drummer"},
		}
		if !reflect.DeepEqual(c.People, expectedPeople) {
			t.Errorf("got people %+v", c.People)
		}
		var values []string
		for _, cl := range c.Classifications {
			values = append(values, cl.Value)
		}
		if !reflect.DeepEqual(values, []string{"narrative", "Erakor", "music", "slit drum"}) {
			t.Errorf("got classification values %v", values)
		}
		if !reflect.DeepEqual(c.Categories, []string{"music"}) {
			t.Errorf("got categories %v", c.Categories)
		}
		if !reflect.DeepEqual(c.Languages, []string{"Nafsan"}) {
			t.Errorf("got languages %v", c.Languages)
		}
		if c.Title != "Dictionary texts" || c.CollectionLink != "http://catalog.paradisec.org.au/collections/DT1" {
			t.Errorf("got %q %q", c.Title, c.CollectionLink)
		}
	})

	t.Run("broken folders reported", func(t *testing.T) {
		t.Parallel()
		errs := rec.Errors()
		if len(errs) != 3 {
			t.Fatalf("got %d errors, expected 3: %v", len(errs), errs)
		}
		if !strings.Contains(errs[0], "more than one catalog file") {
			t.Errorf("expected structural error first, got %q", errs[0])
		}
		if !strings.HasPrefix(errs[1], "No files listed in ") || !strings.HasSuffix(errs[1], "XX9-2-CAT-PDSC_ADMIN.xml") {
			t.Errorf("got %q", errs[1])
		}
		if !strings.HasPrefix(errs[2], "Skipping ") {
			t.Errorf("got %q", errs[2])
		}
	})

	t.Run("info messages", func(t *testing.T) {
		t.Parallel()
		infos := rec.Infos()
		if len(infos) != 10 {
			t.Errorf("got %d info messages, expected 10", len(infos))
		}
		if infos[0] != "Generated the index for item: DT1/214" {
			t.Errorf("got %q", infos[0])
		}
		if infos[1] != "Generated the index for collection: DT1" {
			t.Errorf("got %q", infos[1])
		}
	})
}

// TestBuildIsIdempotent tests that rebuilding an unchanged tree gives identical output.
func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()

	root := testsupport.WriteArchive(t, t.TempDir(), testsupport.WithBrokenFolders())
	b := NewBuilder()

	first, _, err := b.BuildFromRoot(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildFromRoot() error = %v", err)
	}
	second, _, err := b.BuildFromRoot(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildFromRoot() error = %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	c, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(a, c) {
		t.Error("expected identical index output")
	}
}

// TestBuildSkipCollections tests excluding collections from the index.
func TestBuildSkipCollections(t *testing.T) {
	t.Parallel()

	idx, rec := buildFixture(t, WithSkipCollections("NT5"))

	if len(idx.Items) != 4 || len(idx.Collections) != 2 {
		t.Errorf("got %d items and %d collections", len(idx.Items), len(idx.Collections))
	}
	if idx.Collection("NT5") != nil {
		t.Error("expected NT5 to be skipped")
	}
	found := false
	for _, msg := range rec.Infos() {
		if strings.Contains(msg, "collection NT5 is excluded") {
			found = true
		}
	}
	if !found {
		t.Error("expected a skip message")
	}
}

// TestBuildNoItems tests the terminal empty-archive condition.
func TestBuildNoItems(t *testing.T) {
	t.Parallel()

	_, _, err := NewBuilder().BuildFromRoot(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
}

// fakeExtractor returns canned records keyed by catalog file name.
type fakeExtractor struct {
	items       map[string]*model.Item
	collections map[string]*model.Collection
}

func (f *fakeExtractor) Extract(_, file string) (*model.Item, *model.Collection, error) {
	item, ok := f.items[file]
	if !ok {
		return nil, nil, errors.New("unknown catalog")
	}
	return item, f.collections[file], nil
}

// TestBuildMergesDisjointPeople tests collection aggregation across items.
func TestBuildMergesDisjointPeople(t *testing.T) {
	t.Parallel()

	collector := model.Person{Role: "collector", Name: "Nick Thieberger"}
	fake := &fakeExtractor{
		items: map[string]*model.Item{
			"a": {CollectionID: "NT1", ItemID: "1"},
			"b": {CollectionID: "NT1", ItemID: "2"},
			"c": {CollectionID: "NT1", ItemID: "1"},
		},
		collections: map[string]*model.Collection{
			"a": {
				CollectionID:    "NT1",
				Title:           "First",
				Items:           []string{"1"},
				People:          []model.Person{collector, {Role: "speaker", Name: "A"}},
				Classifications: []model.Classification{{Name: "genre", Value: "song"}},
				Languages:       []string{"Nafsan"},
				Categories:      []string{"music"},
			},
			"b": {
				CollectionID:    "NT1",
				Title:           "Second",
				Items:           []string{"2"},
				People:          []model.Person{collector, {Role: "speaker", Name: "B"}},
				Classifications: []model.Classification{{Name: "style", Value: "song"}, {Name: "genre", Value: "story"}},
				Languages:       []string{"Bislama"},
				Categories:      []string{"music"},
			},
			"c": {CollectionID: "NT1", Items: []string{"1"}},
		},
	}

	rec := model.NewRecorder()
	b := NewBuilder(WithExtractor(fake), WithObserver(rec))
	idx, err := b.Build(context.Background(), []model.ScanEntry{
		{Folder: "/data/a", File: "a"},
		{Folder: "/data/b", File: "b"},
		{Folder: "/data/c", File: "c"},
		{Folder: "/data/d", File: "d"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(idx.Collections) != 1 {
		t.Fatalf("got %d collections, expected 1", len(idx.Collections))
	}
	c := idx.Collections[0]
	if c.Title != "First" {
		t.Errorf("expected first fragment title, got %q", c.Title)
	}
	expectedPeople := []model.Person{collector, {Role: "speaker", Name: "A"}, {Role: "speaker", Name: "B"}}
	if !reflect.DeepEqual(c.People, expectedPeople) {
		t.Errorf("got people %+v", c.People)
	}
	if len(c.Classifications) != 2 || c.Classifications[1].Value != "story" {
		t.Errorf("got classifications %+v", c.Classifications)
	}
	if !reflect.DeepEqual(c.Languages, []string{"Bislama", "Nafsan"}) {
		t.Errorf("got languages %v", c.Languages)
	}
	if !reflect.DeepEqual(c.Categories, []string{"music"}) {
		t.Errorf("got categories %v", c.Categories)
	}
	if !reflect.DeepEqual(c.Items, []string{"1", "2"}) {
		t.Errorf("got items %v", c.Items)
	}
	if len(rec.Errors()) != 2 {
		t.Errorf("expected duplicate and unknown entries to be reported, got %v", rec.Errors())
	}
}

// TestBuildCancelled tests that a cancelled context stops the build.
func TestBuildCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder().Build(ctx, []model.ScanEntry{{Folder: "/x", File: "y"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
