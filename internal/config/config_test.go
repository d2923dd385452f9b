package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/pdscload/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default TargetKind is device", func(t *testing.T) {
		t.Parallel()
		if cfg.TargetKind != model.TargetDevice {
			t.Errorf("expected TargetKind to be device, got %q", cfg.TargetKind)
		}
	})

	t.Run("default CatalogURL points at the catalog", func(t *testing.T) {
		t.Parallel()
		if cfg.CatalogURL != "http://catalog.paradisec.org.au/collections" {
			t.Errorf("got %q", cfg.CatalogURL)
		}
	})

	t.Run("default SpeakerRoles", func(t *testing.T) {
		t.Parallel()
		expected := []string{"participant", "performer", "signer", "singer", "speaker"}
		if !reflect.DeepEqual(cfg.SpeakerRoles, expected) {
			t.Errorf("got %v", cfg.SpeakerRoles)
		}
	})

	t.Run("thumbnails enabled at 300px", func(t *testing.T) {
		t.Parallel()
		if !cfg.GenerateThumbnails || cfg.ThumbnailSize != 300 {
			t.Errorf("got %v/%d", cfg.GenerateThumbnails, cfg.ThumbnailSize)
		}
	})

	t.Run("default CopyConcurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.CopyConcurrency != 4 {
			t.Errorf("expected CopyConcurrency to be 4, got %d", cfg.CopyConcurrency)
		}
	})

	t.Run("history saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB || cfg.DBDir != XDGDataDir() {
			t.Errorf("got %v/%q", cfg.SaveToDB, cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.DataPath = "/archive"
		cfg.TargetPath = "/mnt/usb"
		cfg.ContentBasePath = "/opt/pdscload"
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid config returns nil", func(*Config) {}, nil},
		{"missing data path", func(c *Config) { c.DataPath = "" }, ErrNoDataPath},
		{"missing target path", func(c *Config) { c.TargetPath = "" }, ErrNoTargetPath},
		{"unknown target kind", func(c *Config) { c.TargetKind = "disk-image" }, ErrInvalidTargetKind},
		{"device without content base", func(c *Config) { c.ContentBasePath = "" }, ErrNoContentBase},
		{"site without content base", func(c *Config) {
			c.TargetKind = model.TargetSite
			c.ContentBasePath = ""
		}, nil},
		{"target equals data", func(c *Config) { c.TargetPath = "/archive" }, ErrTargetInsideData},
		{"target inside data", func(c *Config) { c.TargetPath = "/archive/out" }, ErrTargetInsideData},
		{"target next to data", func(c *Config) { c.TargetPath = "/archive-copy" }, nil},
		{"zero concurrency", func(c *Config) { c.CopyConcurrency = 0 }, ErrInvalidConcurrency},
		{"zero thumbnail size", func(c *Config) { c.ThumbnailSize = 0 }, ErrInvalidThumbnailSize},
		{"zero thumbnail size without thumbnails", func(c *Config) {
			c.ThumbnailSize = 0
			c.GenerateThumbnails = false
		}, nil},
		{"bad exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"DT1/[a-"} }, ErrInvalidExcludePattern},
		{"good exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"**/_*", "XX9/**"} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("ValidateSource needs only the data path", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{DataPath: "/archive"}
		if err := cfg.ValidateSource(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

// TestApplyFile tests that config file defaults override built-in defaults.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		off := false
		cfg := NewConfig()
		cfg.ApplyFile(&File{
			Defaults: Defaults{
				DataPath:        "/archive",
				TargetKind:      "site",
				CatalogURL:      "https://catalog.example.org/collections/",
				Exclude:         []string{"**/_*"},
				Thumbnails:      &off,
				CopyConcurrency: 2,
			},
			Collections: map[string]CollectionConfig{"XX9": {Skip: true}},
		})

		if cfg.DataPath != "/archive" || cfg.TargetKind != model.TargetSite {
			t.Errorf("got %q/%q", cfg.DataPath, cfg.TargetKind)
		}
		if cfg.CatalogURL != "https://catalog.example.org/collections" {
			t.Errorf("expected trailing slash trimmed, got %q", cfg.CatalogURL)
		}
		if cfg.GenerateThumbnails {
			t.Error("expected thumbnails disabled")
		}
		if cfg.CopyConcurrency != 2 || cfg.ThumbnailSize != DefaultThumbnailSize {
			t.Errorf("got %d/%d", cfg.CopyConcurrency, cfg.ThumbnailSize)
		}
		if !reflect.DeepEqual(cfg.SkippedCollections(), []string{"XX9"}) {
			t.Errorf("got %v", cfg.SkippedCollections())
		}
	})

	t.Run("nil file changes nothing", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if !reflect.DeepEqual(cfg, NewConfig()) {
			t.Error("expected defaults to be kept")
		}
		if cfg.SkippedCollections() != nil {
			t.Error("expected no skipped collections")
		}
	})
}

// TestSkippedCollections tests the collection skip list.
func TestSkippedCollections(t *testing.T) {
	t.Parallel()

	cf := &File{Collections: map[string]CollectionConfig{
		"NT5": {Skip: true},
		"DT1": {Note: "kept"},
		"AA1": {Skip: true, Note: "withdrawn"},
	}}
	if got := cf.SkippedCollections(); !reflect.DeepEqual(got, []string{"AA1", "NT5"}) {
		t.Errorf("got %v", got)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.pdscload")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  dataPath: /srv/archive
  targetKind: site
  speakerRoles: [speaker, singer]
  exclude:
    - "**/_*"
  thumbnails: false
  thumbnailSize: 200
collections:
  NT5:
    skip: true
    note: "pending rights review"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.DataPath != "/srv/archive" || cfg.Defaults.TargetKind != "site" {
			t.Errorf("got defaults %+v", cfg.Defaults)
		}
		if cfg.Defaults.Thumbnails == nil || *cfg.Defaults.Thumbnails {
			t.Error("expected thumbnails: false")
		}
		if cfg.Defaults.ThumbnailSize != 200 || len(cfg.Defaults.SpeakerRoles) != 2 {
			t.Errorf("got defaults %+v", cfg.Defaults)
		}
		nt5, ok := cfg.Collections["NT5"]
		if !ok || !nt5.Skip || nt5.Note != "pending rights review" {
			t.Errorf("got NT5 %+v", nt5)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("defaults:\n  thumbnail: false\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for a misspelt key")
		}
	})

	t.Run("accepts an empty file", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, nil, 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.DataPath != "" || len(cfg.Collections) != 0 {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("initializes nil Collections map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("defaults:\n  copyConcurrency: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Collections == nil {
			t.Error("expected Collections map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("ignores a directory", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile(t.TempDir()); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("search order", func(t *testing.T) {
		t.Parallel()

		paths := SearchPaths()
		if len(paths) == 0 {
			t.Fatal("expected search paths")
		}
		last := paths[len(paths)-1]
		if filepath.Base(last) != "config.yaml" || filepath.Base(filepath.Dir(last)) != AppName {
			t.Errorf("expected the XDG config last, got %q", last)
		}
		for _, p := range paths[:len(paths)-1] {
			if filepath.Base(p) != DefaultConfigFile {
				t.Errorf("got %q", p)
			}
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end in %s, got %q", name, AppName, dir)
		}
	}
}
