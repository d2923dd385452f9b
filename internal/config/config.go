package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/nao1215/pdscload/internal/catalog"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/site"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pdscload"

	// DefaultTargetKind installs onto the embedded player layout.
	DefaultTargetKind = model.TargetDevice

	// DefaultThumbnailSize is the bounding box of generated previews, in pixels.
	DefaultThumbnailSize = 300

	// DefaultCopyConcurrency is the number of files of one content group
	// copied at once. Removable media rarely gains from more.
	DefaultCopyConcurrency = 4
)

// Config holds all configuration options for pdscload.
// It is populated from defaults, the config file, environment variables and
// CLI flags, in that order, and passed down explicitly.
type Config struct {
	// ContentBasePath is the directory holding application content shipped
	// with pdscload, such as the viewer copied onto devices.
	ContentBasePath string

	// DataPath is the root of the archive tree to load.
	DataPath string

	// TargetPath is the mount point or directory receiving the load.
	TargetPath string

	// TargetKind selects the device or site layout.
	TargetKind model.TargetKind

	// CatalogURL is the base of collection links.
	CatalogURL string

	// SpeakerRoles are the agent roles listed in speaker views.
	SpeakerRoles []string

	// ExcludePatterns are doublestar globs, relative to DataPath, of folders
	// the walk does not enter.
	ExcludePatterns []string

	// GenerateThumbnails creates previews for images that have none.
	GenerateThumbnails bool

	// ThumbnailSize is the bounding box of generated previews.
	ThumbnailSize int

	// CopyConcurrency is the number of files copied at once within one item.
	CopyConcurrency int

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool

	// DBDir is the directory of the run history database.
	DBDir string

	// SaveToDB records runs in the history database.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file. If empty, .pdscload
	// is searched in the current directory and then the home directory.
	ConfigFilePath string

	// File is the loaded configuration file, if any.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		TargetKind:         DefaultTargetKind,
		CatalogURL:         catalog.DefaultCatalogURL,
		SpeakerRoles:       slices.Clone(site.DefaultSpeakerRoles),
		GenerateThumbnails: true,
		ThumbnailSize:      DefaultThumbnailSize,
		CopyConcurrency:    DefaultCopyConcurrency,
		DBDir:              XDGDataDir(),
		SaveToDB:           true,
	}
}

// XDGDataDir returns the XDG data directory for pdscload.
// On Linux: ~/.local/share/pdscload
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pdscload.
// On Linux: ~/.config/pdscload
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SkippedCollections returns the collections the config file leaves out of
// loads, or nil without a config file.
func (c *Config) SkippedCollections() []string {
	if c.File == nil {
		return nil
	}
	return c.File.SkippedCollections()
}

// ApplyFile copies every value set in the file's defaults onto c and keeps
// the file for per-collection lookups.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	c.File = cf

	d := cf.Defaults
	if d.DataPath != "" {
		c.DataPath = d.DataPath
	}
	if d.TargetPath != "" {
		c.TargetPath = d.TargetPath
	}
	if d.TargetKind != "" {
		c.TargetKind = model.TargetKind(d.TargetKind)
	}
	if d.ContentBase != "" {
		c.ContentBasePath = d.ContentBase
	}
	if d.CatalogURL != "" {
		c.CatalogURL = strings.TrimSuffix(d.CatalogURL, "/")
	}
	if len(d.SpeakerRoles) > 0 {
		c.SpeakerRoles = d.SpeakerRoles
	}
	if len(d.Exclude) > 0 {
		c.ExcludePatterns = d.Exclude
	}
	if d.Thumbnails != nil {
		c.GenerateThumbnails = *d.Thumbnails
	}
	if d.ThumbnailSize != 0 {
		c.ThumbnailSize = d.ThumbnailSize
	}
	if d.CopyConcurrency != 0 {
		c.CopyConcurrency = d.CopyConcurrency
	}
}

// ValidateSource checks the settings needed to read and index the archive.
func (c *Config) ValidateSource() error {
	if c.DataPath == "" {
		return ErrNoDataPath
	}
	for _, p := range c.ExcludePatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidExcludePattern, p)
		}
	}
	return nil
}

// Validate checks if the configuration is valid for a load.
// It returns the first problem found.
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}

	if c.TargetPath == "" {
		return ErrNoTargetPath
	}

	if !c.TargetKind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTargetKind, c.TargetKind)
	}

	if c.TargetKind == model.TargetDevice && c.ContentBasePath == "" {
		return ErrNoContentBase
	}

	if inside(c.DataPath, c.TargetPath) {
		return ErrTargetInsideData
	}

	if c.CopyConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.GenerateThumbnails && c.ThumbnailSize <= 0 {
		return ErrInvalidThumbnailSize
	}

	return nil
}

// inside reports whether target is root or below it. Loading into the
// archive would make the next walk index the copies.
func inside(root, target string) bool {
	r, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	t, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(r, t)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
