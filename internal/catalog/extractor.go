package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/nao1215/pdscload/internal/model"
)

// DefaultCatalogURL is the base of collection links in the online catalog.
const DefaultCatalogURL = "http://catalog.paradisec.org.au/collections"

// Extractor turns catalog files into items and collection fragments.
type Extractor struct {
	catalogURL string
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCatalogURL sets the base URL used to build collection links.
func WithCatalogURL(url string) Option {
	return func(e *Extractor) {
		e.catalogURL = strings.TrimRight(url, "/")
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		catalogURL: DefaultCatalogURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads folder/file and returns the item and its collection fragment.
// Failures are returned as *ExtractionError.
func (e *Extractor) Extract(folder, file string) (*model.Item, *model.Collection, error) {
	path := filepath.Join(folder, file)

	f, err := os.Open(path) //nolint:gosec // catalog paths come from the tree walk
	if err != nil {
		return nil, nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, nil, &ExtractionError{Path: path, Err: err}
	}

	item, collection, err := e.FromDocument(folder, doc)
	if err != nil {
		return nil, nil, &ExtractionError{Path: path, Err: err}
	}

	e.logger.Debug("extracted catalog record",
		"item", item.Key(),
		"files", len(doc.Files),
		"elements", item.Elements,
	)
	return item, collection, nil
}

// FromDocument builds the item and collection fragment of a decoded catalog.
// Media paths point into folder.
func (e *Extractor) FromDocument(folder string, doc *Document) (*model.Item, *model.Collection, error) {
	collectionID, itemID, ok := strings.Cut(doc.Identifier, "-")
	if !ok || collectionID == "" || itemID == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoItemID, doc.Identifier)
	}
	if len(doc.Files) == 0 {
		return nil, nil, ErrNoFiles
	}

	item := &model.Item{
		CollectionID:    collectionID,
		ItemID:          itemID,
		Citation:        doc.Citation,
		Identifier:      []string{doc.Identifier, doc.ArchiveLink},
		Date:            doc.OriginationDate,
		Description:     doc.Description,
		Title:           doc.Title,
		Region:          doc.Region,
		OpenAccess:      doc.Private == "false",
		Rights:          doc.AdminInfo.DataAccessConditions,
		CollectionLink:  e.collectionLink(collectionID),
		Images:          make([]model.MediaFile, 0),
		Audio:           make([]model.MediaFile, 0),
		Video:           make([]model.MediaFile, 0),
		Documents:       make([]model.MediaFile, 0),
		Transcriptions:  make([]model.MediaFile, 0),
		People:          people(doc.Agents),
		Classifications: ParseClassifications(doc.AdminInfo.AdminComment),
		Languages:       languages(doc),
		Categories:      Categories(doc.DataCategories),
	}

	for _, f := range doc.Files {
		class := Classify(f.Name)
		if class == model.ClassImage && IsThumbnail(f.Name) {
			continue
		}
		group := item.Group(class)
		if group == nil {
			continue
		}
		ref := model.MediaFile{
			Name: f.Name,
			Path: filepath.Join(folder, f.Name),
			Type: f.MimeType,
		}
		if class == model.ClassImage {
			ref.Thumbnail = ThumbnailPath(ref.Path)
		}
		*group = append(*group, ref)
	}
	item.CountElements()

	return item, e.fragment(doc, item), nil
}

// fragment builds the single-item collection record contributed by item.
func (e *Extractor) fragment(doc *Document, item *model.Item) *model.Collection {
	id := doc.Collection.Identifier
	if id == "" {
		id = item.CollectionID
	}

	members := make([]model.Person, 0, len(item.People)+1)
	if doc.Collection.Collector != "" {
		members = append(members, model.Person{Role: "collector", Name: doc.Collection.Collector})
	}
	members = append(members, item.People...)

	return &model.Collection{
		CollectionID:    id,
		Title:           doc.Collection.Title,
		Description:     doc.Collection.Description,
		CollectionLink:  e.collectionLink(id),
		Items:           []string{item.ItemID},
		People:          UniquePeople(members),
		Classifications: slices.Clone(item.Classifications),
		Categories:      slices.Clone(item.Categories),
		Languages:       SortedSet(append(slices.Clone(item.Languages), doc.Collection.Languages...)),
	}
}

func (e *Extractor) collectionLink(collectionID string) string {
	return e.catalogURL + "/" + collectionID
}

// people maps agents to people sorted by name. Agents sharing a name keep
// their catalog order.
func people(agents []Agent) []model.Person {
	out := make([]model.Person, 0, len(agents))
	for _, a := range agents {
		out = append(out, model.Person{Role: a.Role, Name: a.Name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// languages merges item, subject and content languages into a sorted set.
func languages(doc *Document) []string {
	all := make([]string, 0, len(doc.Languages)+len(doc.SubjectLanguages)+len(doc.ContentLanguages))
	all = append(all, doc.Languages...)
	all = append(all, doc.SubjectLanguages...)
	all = append(all, doc.ContentLanguages...)
	return SortedSet(all)
}

// SortedSet returns the distinct values sorted lexicographically.
func SortedSet(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		out = make([]string, 0)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// UniquePeople keeps the first person of every name.
func UniquePeople(people []model.Person) []model.Person {
	seen := make(map[string]bool, len(people))
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}

// UniqueClassifications keeps the first classification of every value.
func UniqueClassifications(classifications []model.Classification) []model.Classification {
	seen := make(map[string]bool, len(classifications))
	out := make([]model.Classification, 0, len(classifications))
	for _, c := range classifications {
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		out = append(out, c)
	}
	return out
}
