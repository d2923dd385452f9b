package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pdscload/internal/catalog"
	"github.com/nao1215/pdscload/internal/fileutil"
	"github.com/nao1215/pdscload/internal/model"
)

// Directories created for every item, relative to the item directory.
const (
	FilesDir       = "files"
	InformationDir = "information"
	ImagesDir      = "images"
	MediaDir       = "media"
	DocumentsDir   = "documents"

	contentDir = "content"
	itemFile   = "item.json"
	indexPage  = "index.html"
)

// placement is where a content group is copied inside an item directory.
var placement = []struct {
	class model.MediaClass
	dir   string
}{
	{model.ClassImage, ImagesDir},
	{model.ClassAudio, MediaDir},
	{model.ClassVideo, MediaDir},
	{model.ClassTranscription, FilesDir},
	{model.ClassDocument, DocumentsDir},
}

// Result summarizes a site generation.
type Result struct {
	// Items are the records written to information/item.json, with paths
	// relative to the item directory.
	Items []*model.Item

	// Groups are the views rendered on the index page.
	Groups Groups

	// Files is the number of content files copied.
	Files int

	// Missing lists listed files that were absent on disk.
	Missing []string

	// BrokenLinks lists relative links of generated pages that do not resolve.
	BrokenLinks []Link
}

// Generator writes the static website for an index.
type Generator struct {
	root     string
	roles    []string
	observer model.Observer
	logger   *slog.Logger
	title    cases.Caser
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRoles sets the agent roles shown on pages and in the speaker view.
func WithRoles(roles []string) GeneratorOption {
	return func(g *Generator) {
		if len(roles) > 0 {
			g.roles = roles
		}
	}
}

// WithObserver sets the observer receiving progress events.
func WithObserver(o model.Observer) GeneratorOption {
	return func(g *Generator) {
		g.observer = o
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator writing into root, usually {target}/html.
func NewGenerator(root string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		root:  root,
		roles: DefaultSpeakerRoles,
		title: cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.observer == nil {
		g.observer = model.NopObserver{}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Root returns the directory the site is written to.
func (g *Generator) Root() string {
	return g.root
}

// Generate writes one directory per item, then the index page. Cancellation
// is checked between items; a cancelled run writes no index page.
func (g *Generator) Generate(ctx context.Context, idx *model.Index) (*Result, error) {
	result := &Result{Items: make([]*model.Item, 0, len(idx.Items))}
	total := len(idx.Items)

	g.observer.Progress(0, total)
	for n, item := range idx.Items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		g.observer.Progress(n, total)

		record, err := g.generateItem(item, result)
		if err != nil {
			g.observer.Error(fmt.Sprintf("Skipping %s/%s: %v", item.CollectionID, item.ItemID, err))
			continue
		}
		result.Items = append(result.Items, record)
	}
	g.observer.Progress(total, total)

	result.Groups = GroupItems(result.Items, g.roles)
	if err := writePage(filepath.Join(g.root, indexPage), g.indexDocument(result.Groups)); err != nil {
		return result, fmt.Errorf("write index page: %w", err)
	}

	broken, err := CheckLinks(g.root)
	if err != nil {
		return result, fmt.Errorf("check links: %w", err)
	}
	for _, l := range broken {
		g.observer.Error(l.String())
	}
	result.BrokenLinks = broken

	g.logger.Info("site generated",
		"root", g.root,
		"items", len(result.Items),
		"files", result.Files,
		"missing", len(result.Missing),
	)
	return result, nil
}

// generateItem copies an item's content and writes its pages.
func (g *Generator) generateItem(item *model.Item, result *Result) (*model.Item, error) {
	key := item.CollectionID + "/" + item.ItemID
	dir := filepath.Join(g.root, item.CollectionID, item.ItemID)

	g.observer.Info("Setting up data path for " + key)
	for _, d := range []string{FilesDir, InformationDir, ImagesDir, MediaDir, DocumentsDir} {
		if err := os.MkdirAll(filepath.Join(dir, d, contentDir), 0o755); err != nil {
			return nil, err
		}
	}

	record := item.Clone()
	record.People = FilterPeople(record.People, g.roles)

	for _, p := range placement {
		group := record.Group(p.class)
		kept := make([]model.MediaFile, 0, len(*group))
		for _, f := range *group {
			copied, ok := g.copyFile(key, f, filepath.Join(dir, p.dir, contentDir), p.dir, result)
			if ok {
				kept = append(kept, copied)
			}
		}
		*group = kept
	}
	record.CountElements()

	g.observer.Info("Creating file browser for " + key)
	if err := writePage(filepath.Join(dir, FilesDir, indexPage), g.itemDocument(record)); err != nil {
		return nil, err
	}

	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, InformationDir, itemFile), data.Bytes(), 0o644); err != nil { //nolint:gosec // site files are world readable
		return nil, err
	}

	g.observer.Info("Done generating " + key)
	return record, nil
}

// copyFile copies one content file, and the preview of an image, into
// destDir. The returned reference has paths relative to the item directory.
func (g *Generator) copyFile(key string, f model.MediaFile, destDir, group string, result *Result) (model.MediaFile, bool) {
	if !fileutil.Exists(f.Path) {
		msg := fmt.Sprintf("%s missing file: %s", key, f.Path)
		result.Missing = append(result.Missing, f.Path)
		g.observer.Error(msg)
		return f, false
	}
	if _, err := fileutil.CopyFile(f.Path, filepath.Join(destDir, f.Name)); err != nil {
		g.observer.Error(fmt.Sprintf("%s: copy %s: %v", key, f.Name, err))
		return f, false
	}
	result.Files++

	out := f
	out.Path = path.Join(group, contentDir, f.Name)
	if f.Thumbnail == "" {
		return out, true
	}

	thumb := catalog.ThumbnailName(f.Name)
	if !fileutil.Exists(f.Thumbnail) {
		g.logger.Debug("no thumbnail", "item", key, "image", f.Name)
		out.Thumbnail = ""
		return out, true
	}
	if _, err := fileutil.CopyFile(f.Thumbnail, filepath.Join(destDir, thumb)); err != nil {
		g.observer.Error(fmt.Sprintf("%s: copy %s: %v", key, thumb, err))
		out.Thumbnail = ""
		return out, true
	}
	result.Files++
	out.Thumbnail = path.Join(group, contentDir, thumb)
	return out, true
}

// itemDocument is the file browser of an item. It lives in files/, so
// content paths are reached through the parent directory.
func (g *Generator) itemDocument(item *model.Item) *html.Node {
	body := []*html.Node{
		el(atom.Nav, nil, anchor("../../../"+indexPage, "All collections")),
		heading(atom.H1, item.Title),
		el(atom.P, nil, text(item.Key())),
	}
	if item.Description != "" {
		body = append(body, el(atom.P, nil, text(item.Description)))
	}
	if len(item.People) > 0 {
		people := make([]*html.Node, 0, len(item.People))
		for _, p := range item.People {
			people = append(people, text(p.Name+" ("+g.title.String(p.Role)+")"))
		}
		body = append(body, heading(atom.H2, "People"), list(people))
	}

	if len(item.Images) > 0 {
		figures := make([]*html.Node, 0, len(item.Images))
		for _, f := range item.Images {
			src := f.Path
			if f.Thumbnail != "" {
				src = f.Thumbnail
			}
			figures = append(figures, el(atom.A, attrs("href", "../"+f.Path),
				el(atom.Img, attrs("src", "../"+src, "alt", f.Name))))
		}
		body = append(body, heading(atom.H2, "Images"), list(figures))
	}

	media := append(mediaNodes(item.Audio, atom.Audio), mediaNodes(item.Video, atom.Video)...)
	if len(media) > 0 {
		body = append(body, heading(atom.H2, "Media"), list(media))
	}

	for _, section := range []struct {
		title string
		files []model.MediaFile
	}{
		{"Documents", item.Documents},
		{"Transcriptions", item.Transcriptions},
	} {
		if len(section.files) == 0 {
			continue
		}
		links := make([]*html.Node, 0, len(section.files))
		for _, f := range section.files {
			links = append(links, anchor("../"+f.Path, f.Name))
		}
		body = append(body, heading(atom.H2, section.title), list(links))
	}

	body = append(body, el(atom.P, nil, anchor("../"+InformationDir+"/"+itemFile, "Item information")))
	return document(item.Title, body...)
}

// mediaNodes renders playable elements for audio or video files.
func mediaNodes(files []model.MediaFile, tag atom.Atom) []*html.Node {
	out := make([]*html.Node, 0, len(files))
	for _, f := range files {
		source := el(atom.Source, attrs("src", "../"+f.Path, "type", f.Type))
		out = append(out, el(tag, attrs("controls", ""), source, anchor("../"+f.Path, f.Name)))
	}
	return out
}

// indexDocument is the site's landing page.
func (g *Generator) indexDocument(groups Groups) *html.Node {
	body := []*html.Node{heading(atom.H1, "Collections")}
	for _, view := range []struct {
		title  string
		groups []Group
	}{
		{"By Identifier", groups.ByIdentifier},
		{"By Genre", groups.ByGenre},
		{"By Speaker", groups.BySpeaker},
	} {
		if len(view.groups) == 0 {
			continue
		}
		section := el(atom.Section, nil, heading(atom.H2, view.title))
		for _, group := range view.groups {
			items := make([]*html.Node, 0, len(group.Items))
			for _, item := range group.Items {
				href := path.Join(item.CollectionID, item.ItemID, FilesDir, indexPage)
				items = append(items, anchor(href, item.Key()+" "+item.Title))
			}
			section.AppendChild(heading(atom.H3, group.Key))
			section.AppendChild(list(items))
		}
		body = append(body, section)
	}
	return document("Collections", body...)
}
