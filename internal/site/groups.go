package site

import (
	"slices"
	"sort"

	"github.com/nao1215/pdscload/internal/model"
)

// DefaultSpeakerRoles are the agent roles listed on browsing pages.
var DefaultSpeakerRoles = []string{"participant", "performer", "signer", "singer", "speaker"}

// Group is one heading of a browsing view and the items listed under it.
type Group struct {
	Key   string        `json:"key"`
	Items []*model.Item `json:"items"`
}

// Groups holds the three browsing views of a site. Keys are sorted.
type Groups struct {
	ByIdentifier []Group `json:"byIdentifier"`
	ByGenre      []Group `json:"byGenre"`
	BySpeaker    []Group `json:"bySpeaker"`
}

// GroupItems builds the browsing views of items. Only people whose role is
// in roles appear in the speaker view.
func GroupItems(items []*model.Item, roles []string) Groups {
	byID := newGrouper()
	byGenre := newGrouper()
	bySpeaker := newGrouper()

	for _, item := range items {
		byID.add(item.CollectionID, item)
		for _, c := range item.Classifications {
			if c.Value != "" {
				byGenre.add(c.Value, item)
			}
		}
		for _, p := range FilterPeople(item.People, roles) {
			bySpeaker.add(SpeakerKey(p), item)
		}
	}

	return Groups{
		ByIdentifier: byID.groups(),
		ByGenre:      byGenre.groups(),
		BySpeaker:    bySpeaker.groups(),
	}
}

// SpeakerKey is the heading of a person in the speaker view.
func SpeakerKey(p model.Person) string {
	return p.Name + " (" + p.Role + ")"
}

// FilterPeople keeps the people whose role is in roles.
func FilterPeople(people []model.Person, roles []string) []model.Person {
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		if slices.Contains(roles, p.Role) {
			out = append(out, p)
		}
	}
	return out
}

// grouper collects items per key, each item at most once per key.
type grouper struct {
	items map[string][]*model.Item
	seen  map[string]map[string]bool
}

func newGrouper() *grouper {
	return &grouper{
		items: make(map[string][]*model.Item),
		seen:  make(map[string]map[string]bool),
	}
}

func (g *grouper) add(key string, item *model.Item) {
	if g.seen[key] == nil {
		g.seen[key] = make(map[string]bool)
	}
	if g.seen[key][item.Key()] {
		return
	}
	g.seen[key][item.Key()] = true
	g.items[key] = append(g.items[key], item)
}

func (g *grouper) groups() []Group {
	keys := make([]string, 0, len(g.items))
	for k := range g.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, Group{Key: k, Items: g.items[k]})
	}
	return out
}
