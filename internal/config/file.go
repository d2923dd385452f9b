package config

import "sort"

// Defaults holds the values a config file supplies in place of flags.
// Unset fields leave the built-in defaults alone.
type Defaults struct {
	DataPath        string   `yaml:"dataPath,omitempty"`
	TargetPath      string   `yaml:"targetPath,omitempty"`
	TargetKind      string   `yaml:"targetKind,omitempty"`
	ContentBase     string   `yaml:"contentBase,omitempty"`
	CatalogURL      string   `yaml:"catalogUrl,omitempty"`
	SpeakerRoles    []string `yaml:"speakerRoles,omitempty"`
	Exclude         []string `yaml:"exclude,omitempty"`
	Thumbnails      *bool    `yaml:"thumbnails,omitempty"`
	ThumbnailSize   int      `yaml:"thumbnailSize,omitempty"`
	CopyConcurrency int      `yaml:"copyConcurrency,omitempty"`
}

// CollectionConfig holds settings for one collection.
type CollectionConfig struct {
	// Skip leaves the collection out of loads.
	Skip bool `yaml:"skip,omitempty"`

	// Note is free text shown nowhere; it documents why a setting exists.
	Note string `yaml:"note,omitempty"`
}

// File represents the structure of the .pdscload configuration file.
type File struct {
	// Defaults apply to every load unless overridden on the command line.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Collections maps collection identifiers to their settings.
	Collections map[string]CollectionConfig `yaml:"collections,omitempty"`
}

// SkippedCollections returns the sorted identifiers of collections marked skip.
func (cf *File) SkippedCollections() []string {
	var ids []string
	for id, c := range cf.Collections {
		if c.Skip {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
