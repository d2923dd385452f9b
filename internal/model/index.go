package model

// ScanEntry is one item folder found by the tree walker.
type ScanEntry struct {
	// Folder is the directory holding the item.
	Folder string `json:"folder"`

	// File is the catalog file name inside Folder.
	File string `json:"file"`
}

// Index is the normalized view of an archive.
// It serializes to the {"collections": [...], "items": [...]} document
// written as index.json.
type Index struct {
	Collections []*Collection `json:"collections"`
	Items       []*Item       `json:"items"`

	// Locations maps "collectionId-itemId" to the folder holding the item's files.
	Locations map[string]string `json:"-"`
}

// NewIndex returns an empty index with all lists initialized.
func NewIndex() *Index {
	return &Index{
		Collections: make([]*Collection, 0),
		Items:       make([]*Item, 0),
		Locations:   make(map[string]string),
	}
}

// Collection returns the collection with the given identifier, or nil.
func (x *Index) Collection(collectionID string) *Collection {
	for _, c := range x.Collections {
		if c.CollectionID == collectionID {
			return c
		}
	}
	return nil
}

// Item returns the item with the given identifiers, or nil.
func (x *Index) Item(collectionID, itemID string) *Item {
	for _, i := range x.Items {
		if i.CollectionID == collectionID && i.ItemID == itemID {
			return i
		}
	}
	return nil
}

// Location returns the source folder recorded for an item.
func (x *Index) Location(item *Item) (string, bool) {
	folder, ok := x.Locations[item.Key()]
	return folder, ok
}

// ItemKeys returns the keys of every item in index order.
func (x *Index) ItemKeys() []string {
	keys := make([]string, len(x.Items))
	for n, i := range x.Items {
		keys[n] = i.Key()
	}
	return keys
}
