package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CatalogSuffix is the suffix of every catalog file name.
const CatalogSuffix = "-CAT-PDSC_ADMIN.xml"

// Item is one fixture item folder.
type Item struct {
	// Dir is the folder relative to the archive root, slash separated.
	Dir string

	Catalog Catalog

	// Missing names listed files that are not written to disk.
	Missing []string
}

// CatalogFile returns the catalog file name of the item.
func (i Item) CatalogFile() string {
	return i.Catalog.Identifier + CatalogSuffix
}

const (
	nick       = "Nick Thieberger"
	catalogURL = "http://catalog.paradisec.org.au/collections"
)

// Items returns the five fixture items in walk order.
func Items() []Item {
	return []Item{
		{
			Dir: "DT1/214",
			Catalog: Catalog{
				Identifier:       "DT1-214",
				ArchiveLink:      catalogURL + "/DT1/items/214",
				Title:            "Erakor stories",
				Description:      "Stories told in Erakor village",
				Citation:         "Tenene, Waia (speaker), 1998. DT1-214",
				OriginationDate:  "1998-04-02",
				Region:           "Efate",
				Private:          "false",
				CollectionID:     "DT1",
				CollectionTitle:  "Dictionary texts",
				CollectionDesc:   "Texts recorded for the dictionary",
				Collector:        "Anna Collector",
				Agents:           []Agent{{Role: "speaker", Name: "Mary Speaker"}, {Role: "recorder", Name: "Anna Collector"}},
				Languages:        []string{"Nafsan"},
				Categories:       []string{"narrative"},
				AdminComment:     "[genre: narrative:::dialect: Erakor]",
				AccessConditions: "Open (subject to agreeing to PDSC access form)",
				Files: []File{
					{Name: "DT1-214-A.png", MimeType: "image/png"},
					{Name: "DT1-214-A-thumb-PDSC_ADMIN.png", MimeType: "image/png"},
					{Name: "DT1-214-A.mp3", MimeType: "audio/mpeg"},
					{Name: "DT1-214-A.eaf", MimeType: "text/x-eaf+xml"},
					{Name: "DT1-214-notes.txt", MimeType: "text/plain"},
				},
			},
		},
		{
			Dir: "DT1/521",
			Catalog: Catalog{
				Identifier:      "DT1-521",
				ArchiveLink:     catalogURL + "/DT1/items/521",
				Title:           "Wordlist session",
				OriginationDate: "1998-05-11",
				Private:         "true",
				CollectionID:    "DT1",
				CollectionTitle: "Dictionary texts",
				CollectionDesc:  "Texts recorded for the dictionary",
				Collector:       "Anna Collector",
				Agents:          []Agent{{Role: "speaker", Name: "John Teller"}},
				Languages:       []string{"Nafsan"},
				Categories:      []string{"lexicon"},
				AdminComment:    "[genre: narrative]",
				Files: []File{
					{Name: "DT1-521-A.mp3", MimeType: "audio/mpeg"},
					{Name: "DT1-521-B.pdf", MimeType: "application/pdf"},
				},
			},
			Missing: []string{"DT1-521-B.pdf"},
		},
		{
			Dir: "DT1/940",
			Catalog: Catalog{
				Identifier:      "DT1-940",
				ArchiveLink:     catalogURL + "/DT1/items/940",
				Title:           "Slit drum performance",
				OriginationDate: "1999-01-20",
				Private:         "false",
				CollectionID:    "DT1",
				CollectionTitle: "Dictionary texts",
				CollectionDesc:  "Texts recorded for the dictionary",
				Collector:       "Anna Collector",
				Agents:          []Agent{{Role: "performer", Name: "Kalo Drummer"}},
				Categories:      []string{"instrumental music"},
				AdminComment:    "[genre: music:::instrument: slit drum]",
				Files: []File{
					{Name: "DT1-940-A.ogg", MimeType: "audio/ogg"},
					{Name: "DT1-940-B.jpg", MimeType: "image/jpeg"},
				},
			},
		},
		{
			Dir: "NT1/98007",
			Catalog: Catalog{
				Identifier:       "NT1-98007",
				ArchiveLink:      catalogURL + "/NT1/items/98007",
				Title:            "Namaf stories",
				OriginationDate:  "1998-07-14",
				Region:           "Efate",
				Private:          "false",
				CollectionID:     "NT1",
				CollectionTitle:  "South Efate (Vanuatu)",
				CollectionDesc:   "Recordings in South Efate",
				Collector:        nick,
				Languages:        []string{"Nafsan"},
				SubjectLanguages: []string{"Efate, South - erk"},
				ContentLanguages: []string{"Bislama - bis", "Efate, South - erk"},
				Categories:       []string{"narrative"},
				Agents: []Agent{
					{Role: "speaker", Name: "Waia Tenene"},
					{Role: "speaker", Name: "  Kalsarap Namaf "},
					{Role: "depositor", Name: nick},
					{Role: "recorder", Name: nick},
					{Role: "speaker", Name: "Iokopeth"},
					{Role: "speaker", Name: "John Maklen"},
				},
				Files: []File{
					{Name: "NT1-98007-A.mp3", MimeType: "audio/mpeg"},
					{Name: "NT1-98007-B.mp3", MimeType: "audio/mpeg"},
					{Name: "NT1-98007-A.eaf", MimeType: "text/x-eaf+xml"},
					{Name: "NT1-98007-A.trs", MimeType: "text/x-trs"},
					{Name: "NT1-98007-001.JPG", MimeType: "image/jpeg"},
					{Name: "NT1-98007-001-thumb-PDSC_ADMIN.JPG", MimeType: "image/jpeg"},
				},
			},
		},
		{
			Dir: "NT5/TokelauOf",
			Catalog: Catalog{
				Identifier:      "NT5-TokelauOf",
				ArchiveLink:     catalogURL + "/NT5/items/TokelauOf",
				Title:           "Tokelau song",
				Private:         "false",
				CollectionID:    "NT5",
				CollectionTitle: "South Efate, Vanuatu",
				Agents: []Agent{
					{Role: "depositor", Name: nick},
					{Role: "recorder", Name: nick},
					{Role: "speaker", Name: "Tokelau Takau"},
				},
				Categories: []string{"song", "narrative"},
				Files: []File{
					{Name: "NT5-TokelauOf-A.mp4", MimeType: "video/mp4"},
					{Name: "NT5-TokelauOf-A.webm", MimeType: "video/webm"},
					{Name: "NT5-TokelauOf-A.eaf", MimeType: "text/x-eaf+xml"},
				},
			},
		},
	}
}

// Option configures WriteArchive.
type Option func(*archiveOptions)

type archiveOptions struct {
	broken bool
}

// WithBrokenFolders adds folders that must not produce items: one with two
// catalog files, one whose catalog lists no files, one with malformed XML,
// and one whose only catalog file is a dotfile.
func WithBrokenFolders() Option {
	return func(o *archiveOptions) {
		o.broken = true
	}
}

// WriteArchive writes the fixture archive under root and returns root.
func WriteArchive(t testing.TB, root string, opts ...Option) string {
	t.Helper()

	var o archiveOptions
	for _, opt := range opts {
		opt(&o)
	}

	for _, item := range Items() {
		WriteItem(t, root, item)
	}

	if o.broken {
		empty := Catalog{Identifier: "XX9-2", Title: "Empty", CollectionID: "XX9"}
		twice := Catalog{Identifier: "XX9-1", CollectionID: "XX9", Files: []File{{Name: "XX9-1-A.mp3"}}}

		WriteFile(t, filepath.Join(root, "XX9", "double", "XX9-1"+CatalogSuffix), []byte(twice.XML()))
		WriteFile(t, filepath.Join(root, "XX9", "double", "XX9-1b"+CatalogSuffix), []byte(twice.XML()))
		WriteFile(t, filepath.Join(root, "XX9", "double", "XX9-1-A.mp3"), []byte("audio"))
		WriteFile(t, filepath.Join(root, "XX9", "empty", "XX9-2"+CatalogSuffix), []byte(empty.XML()))
		WriteFile(t, filepath.Join(root, "XX9", "malformed", "XX9-3"+CatalogSuffix), []byte("<item><identifier>XX9-3"))
		WriteFile(t, filepath.Join(root, "XX9", "hidden", ".XX9-4"+CatalogSuffix), []byte(twice.XML()))
	}

	return root
}

// WriteItem writes one item folder: its catalog and every listed file not
// marked missing.
func WriteItem(t testing.TB, root string, item Item) string {
	t.Helper()

	dir := filepath.Join(root, filepath.FromSlash(item.Dir))
	WriteFile(t, filepath.Join(dir, item.CatalogFile()), []byte(item.Catalog.XML()))

	for _, f := range item.Catalog.Files {
		if contains(item.Missing, f.Name) {
			continue
		}
		WriteFile(t, filepath.Join(dir, f.Name), Content(t, f.Name))
	}
	return dir
}

// Content returns plausible bytes for a file name: a decodable image for
// image extensions and a short marker otherwise.
func Content(t testing.TB, name string) []byte {
	t.Helper()

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".png"):
		var buf bytes.Buffer
		if err := png.Encode(&buf, testImage()); err != nil {
			t.Fatalf("encode png: %v", err)
		}
		return buf.Bytes()
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
			t.Fatalf("encode jpeg: %v", err)
		}
		return buf.Bytes()
	default:
		return []byte("content of " + name)
	}
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	return img
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
