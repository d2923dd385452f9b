package model

// MediaClass is the content group a file belongs to, chosen from its extension.
type MediaClass string

const (
	// ClassImage covers still images (jpg, jpeg, png).
	ClassImage MediaClass = "image"
	// ClassAudio covers audio recordings (mp3, ogg, oga).
	ClassAudio MediaClass = "audio"
	// ClassVideo covers video recordings (mp4, ogg, ogv, mov, webm).
	ClassVideo MediaClass = "video"
	// ClassDocument covers documents (pdf).
	ClassDocument MediaClass = "document"
	// ClassTranscription covers time-aligned transcriptions (eaf, trs, ixt, flextext).
	ClassTranscription MediaClass = "transcription"
	// ClassNone is used for files that do not belong to any content group.
	ClassNone MediaClass = ""
)

// Person is someone credited on an item or collection.
type Person struct {
	// Role is the agent role from the catalog (e.g. "speaker", "recorder").
	Role string `json:"role"`

	// Name is the display name as written in the catalog.
	Name string `json:"name"`
}

// Classification is a name/value pair parsed from an item's admin comment.
type Classification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MediaFile references one content file of an item.
// Path starts out as the absolute source path on disk and is rewritten to a
// repository-relative URL when the item is installed.
type MediaFile struct {
	// Name is the file name as listed in the catalog.
	Name string `json:"name"`

	// Path locates the file, either on disk or inside the installed repository.
	Path string `json:"path"`

	// Type is the MIME type given by the catalog, when known.
	Type string `json:"type,omitempty"`

	// Thumbnail locates the derived preview of an image, when one exists.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Item is one archival item, normalized from a catalog record.
type Item struct {
	CollectionID    string           `json:"collectionId"`
	ItemID          string           `json:"itemId"`
	Citation        string           `json:"citation"`
	Identifier      []string         `json:"identifier"`
	Date            string           `json:"date"`
	Description     string           `json:"description"`
	Title           string           `json:"title"`
	Region          string           `json:"region"`
	OpenAccess      bool             `json:"openAccess"`
	Rights          string           `json:"rights"`
	CollectionLink  string           `json:"collectionLink"`
	Images          []MediaFile      `json:"images"`
	Audio           []MediaFile      `json:"audio"`
	Video           []MediaFile      `json:"video"`
	Documents       []MediaFile      `json:"documents"`
	Transcriptions  []MediaFile      `json:"transcriptions"`
	People          []Person         `json:"people"`
	Classifications []Classification `json:"classifications"`
	Languages       []string         `json:"languages"`
	Categories      []string         `json:"categories"`
	Elements        int              `json:"elements"`
}

// Key returns the "collectionId-itemId" key used to address an item.
func (i *Item) Key() string {
	return ItemKey(i.CollectionID, i.ItemID)
}

// ItemKey joins a collection and item identifier the way catalog identifiers are written.
func ItemKey(collectionID, itemID string) string {
	return collectionID + "-" + itemID
}

// CountElements recomputes Elements from the current content lists.
// Transcriptions are not counted.
func (i *Item) CountElements() {
	i.Elements = len(i.Documents) + len(i.Images) + len(i.Audio) + len(i.Video)
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	c.Identifier = cloneSlice(i.Identifier)
	c.Images = cloneSlice(i.Images)
	c.Audio = cloneSlice(i.Audio)
	c.Video = cloneSlice(i.Video)
	c.Documents = cloneSlice(i.Documents)
	c.Transcriptions = cloneSlice(i.Transcriptions)
	c.People = cloneSlice(i.People)
	c.Classifications = cloneSlice(i.Classifications)
	c.Languages = cloneSlice(i.Languages)
	c.Categories = cloneSlice(i.Categories)
	return &c
}

// Group returns a pointer to the content list for class, or nil for ClassNone.
func (i *Item) Group(class MediaClass) *[]MediaFile {
	switch class {
	case ClassImage:
		return &i.Images
	case ClassAudio:
		return &i.Audio
	case ClassVideo:
		return &i.Video
	case ClassDocument:
		return &i.Documents
	case ClassTranscription:
		return &i.Transcriptions
	default:
		return nil
	}
}

// InstallOrder is the fixed order in which content groups are installed.
var InstallOrder = []MediaClass{ClassImage, ClassAudio, ClassVideo, ClassTranscription, ClassDocument}

// Collection aggregates the items that share a collection identifier.
type Collection struct {
	CollectionID    string           `json:"collectionId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	CollectionLink  string           `json:"collectionLink"`
	Items           []string         `json:"items"`
	People          []Person         `json:"people"`
	Classifications []Classification `json:"classifications"`
	Categories      []string         `json:"categories"`
	Languages       []string         `json:"languages"`
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
