package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Document is the typed form of a catalog XML file.
type Document struct {
	XMLName          xml.Name   `xml:"item"`
	Identifier       string     `xml:"identifier"`
	ArchiveLink      string     `xml:"archiveLink"`
	Title            string     `xml:"title"`
	Description      string     `xml:"description"`
	Citation         string     `xml:"citation"`
	OriginationDate  string     `xml:"originationDate"`
	Region           string     `xml:"region"`
	Private          string     `xml:"private"`
	Collection       Collection `xml:"collection"`
	Agents           []Agent    `xml:"agents>agent"`
	Languages        []string   `xml:"language"`
	SubjectLanguages []string   `xml:"subjectLanguages>language"`
	ContentLanguages []string   `xml:"contentLanguages>language"`
	DataCategories   []string   `xml:"dataCategories>category"`
	AdminInfo        AdminInfo  `xml:"adminInfo"`
	Files            []File     `xml:"files>file"`
}

// Collection is the <collection> block embedded in every item.
type Collection struct {
	Identifier  string   `xml:"identifier"`
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
	Collector   string   `xml:"collector"`
	Languages   []string `xml:"languages>language"`
}

// Agent is a person credited on the item. The role is an attribute and the
// name is the element text.
type Agent struct {
	Role string `xml:"role,attr"`
	Name string `xml:",chardata"`
}

// AdminInfo holds the archive's administrative fields.
type AdminInfo struct {
	AdminComment         string `xml:"adminComment"`
	DataAccessConditions string `xml:"dataAccessConditions"`
}

// File is one entry of the item's file manifest.
type File struct {
	Name     string `xml:"name"`
	MimeType string `xml:"mimeType"`
}

// Parse decodes a catalog document. Documents declaring a non-UTF-8
// encoding are transcoded.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	doc.normalize()
	return &doc, nil
}

// normalize trims every text value and drops empty list entries.
func (d *Document) normalize() {
	for _, s := range []*string{
		&d.Identifier, &d.ArchiveLink, &d.Title, &d.Description, &d.Citation,
		&d.OriginationDate, &d.Region, &d.Private,
		&d.Collection.Identifier, &d.Collection.Title, &d.Collection.Description, &d.Collection.Collector,
		&d.AdminInfo.AdminComment, &d.AdminInfo.DataAccessConditions,
	} {
		*s = strings.TrimSpace(*s)
	}

	d.Languages = compact(d.Languages)
	d.SubjectLanguages = compact(d.SubjectLanguages)
	d.ContentLanguages = compact(d.ContentLanguages)
	d.DataCategories = compact(d.DataCategories)
	d.Collection.Languages = compact(d.Collection.Languages)

	agents := d.Agents[:0]
	for _, a := range d.Agents {
		a.Role = strings.TrimSpace(a.Role)
		a.Name = strings.TrimSpace(a.Name)
		if a.Name != "" {
			agents = append(agents, a)
		}
	}
	d.Agents = agents

	files := d.Files[:0]
	for _, f := range d.Files {
		f.Name = strings.TrimSpace(f.Name)
		f.MimeType = strings.TrimSpace(f.MimeType)
		if f.Name != "" {
			files = append(files, f)
		}
	}
	d.Files = files
}

// compact trims values and removes empty ones.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
