package testsupport

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Agent is one <agent role="..."> entry.
type Agent struct {
	Role string
	Name string
}

// File is one <file> entry of the catalog manifest.
type File struct {
	Name     string
	MimeType string
}

// Catalog describes a catalog XML document.
type Catalog struct {
	Identifier       string
	ArchiveLink      string
	Title            string
	Description      string
	Citation         string
	OriginationDate  string
	Region           string
	Private          string
	CollectionID     string
	CollectionTitle  string
	CollectionDesc   string
	Collector        string
	Agents           []Agent
	Languages        []string
	SubjectLanguages []string
	ContentLanguages []string
	Categories       []string
	AdminComment     string
	AccessConditions string
	Files            []File
}

// XML renders the catalog the way the archive exports it.
func (c Catalog) XML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<item>\n")
	elem(&b, "  ", "identifier", c.Identifier)
	elem(&b, "  ", "archiveLink", c.ArchiveLink)
	elem(&b, "  ", "title", c.Title)
	elem(&b, "  ", "description", c.Description)
	elem(&b, "  ", "citation", c.Citation)
	elem(&b, "  ", "originationDate", c.OriginationDate)
	elem(&b, "  ", "region", c.Region)
	elem(&b, "  ", "private", c.Private)

	b.WriteString("  <collection>\n")
	elem(&b, "    ", "identifier", c.CollectionID)
	elem(&b, "    ", "title", c.CollectionTitle)
	elem(&b, "    ", "description", c.CollectionDesc)
	if c.Collector != "" {
		elem(&b, "    ", "collector", c.Collector)
	}
	b.WriteString("  </collection>\n")

	b.WriteString("  <agents>\n")
	for _, a := range c.Agents {
		b.WriteString(`    <agent role="` + escape(a.Role) + `">` + escape(a.Name) + "</agent>\n")
	}
	b.WriteString("  </agents>\n")

	for _, l := range c.Languages {
		elem(&b, "  ", "language", l)
	}
	list(&b, "subjectLanguages", "language", c.SubjectLanguages)
	list(&b, "contentLanguages", "language", c.ContentLanguages)
	list(&b, "dataCategories", "category", c.Categories)

	b.WriteString("  <adminInfo>\n")
	elem(&b, "    ", "adminComment", c.AdminComment)
	elem(&b, "    ", "dataAccessConditions", c.AccessConditions)
	b.WriteString("  </adminInfo>\n")

	b.WriteString("  <files>\n")
	for _, f := range c.Files {
		b.WriteString("    <file>\n")
		elem(&b, "      ", "name", f.Name)
		elem(&b, "      ", "mimeType", f.MimeType)
		b.WriteString("    </file>\n")
	}
	b.WriteString("  </files>\n</item>\n")
	return b.String()
}

func elem(b *strings.Builder, indent, name, value string) {
	b.WriteString(indent + "<" + name + ">" + escape(value) + "</" + name + ">\n")
}

func list(b *strings.Builder, outer, inner string, values []string) {
	b.WriteString("  <" + outer + ">\n")
	for _, v := range values {
		elem(b, "    ", inner, v)
	}
	b.WriteString("  </" + outer + ">\n")
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
