package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/site"
)

// MarkdownWriter outputs catalogues and run reports in GitHub flavored
// Markdown using the nao1215/markdown builder.
type MarkdownWriter struct {
	baseWriter

	// roles limits the speaker view to these agent roles.
	roles []string

	title cases.Caser
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithSpeakerRoles sets the roles listed in the speaker view.
func WithSpeakerRoles(roles []string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.roles = roles
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		roles:      site.DefaultSpeakerRoles,
		title:      cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the index as a catalogue: a summary, every collection with
// its items, then the genre and speaker views.
func (w *MarkdownWriter) Write(idx *model.Index) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeCatalogueHeader(md, idx)
	w.writeCollections(md, idx)

	groups := site.GroupItems(idx.Items, w.roles)
	w.writeView(md, "By Genre", groups.ByGenre)
	w.writeView(md, "By Speaker", groups.BySpeaker)

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeCatalogueHeader writes the title and the summary table.
func (w *MarkdownWriter) writeCatalogueHeader(md *markdown.Markdown, idx *model.Index) {
	elements, open := 0, 0
	for _, item := range idx.Items {
		elements += item.Elements
		if item.OpenAccess {
			open++
		}
	}

	md.H1("Catalogue")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Collections", strconv.Itoa(len(idx.Collections))},
			{"Items", strconv.Itoa(len(idx.Items))},
			{"Elements", strconv.Itoa(elements)},
			{"Open Access Items", strconv.Itoa(open)},
		},
	})
	md.PlainText("")
}

// writeCollections writes one section per collection.
func (w *MarkdownWriter) writeCollections(md *markdown.Markdown, idx *model.Index) {
	md.H2("Collections")
	md.PlainText("")

	for _, c := range idx.Collections {
		md.H3(c.CollectionID + ": " + c.Title)
		md.PlainText("")
		if c.Description != "" {
			md.PlainText(c.Description)
			md.PlainText("")
		}
		if c.CollectionLink != "" {
			md.PlainTextf("Catalog: %s", c.CollectionLink)
			md.PlainText("")
		}
		if len(c.Languages) > 0 {
			md.PlainTextf("Languages: %s", strings.Join(c.Languages, ", "))
			md.PlainText("")
		}

		rows := make([][]string, 0, len(c.Items))
		for _, itemID := range c.Items {
			item := idx.Item(c.CollectionID, itemID)
			if item == nil {
				continue
			}
			rows = append(rows, []string{
				"`" + item.Key() + "`",
				cell(item.Title),
				cell(item.Date),
				strconv.Itoa(item.Elements),
				access(item),
			})
		}
		if len(rows) > 0 {
			md.Table(markdown.TableSet{
				Header: []string{"Item", "Title", "Date", "Elements", "Access"},
				Rows:   rows,
			})
			md.PlainText("")
		}

		if len(c.People) > 0 {
			people := make([]string, 0, len(c.People))
			for _, p := range c.People {
				people = append(people, p.Name+" ("+w.title.String(p.Role)+")")
			}
			md.Details("People", strings.Join(people, "<br>"))
			md.PlainText("")
		}
	}
}

// writeView writes a grouped browsing view as headed bullet lists.
func (w *MarkdownWriter) writeView(md *markdown.Markdown, heading string, groups []site.Group) {
	md.H2(heading)
	md.PlainText("")

	if len(groups) == 0 {
		md.Note("No entries.")
		md.PlainText("")
		return
	}

	for _, g := range groups {
		md.H3(g.Key)
		md.PlainText("")
		entries := make([]string, 0, len(g.Items))
		for _, item := range g.Items {
			entries = append(entries, "`"+item.Key()+"` "+item.Title)
		}
		md.BulletList(entries...)
		md.PlainText("")
	}
}

// WriteRun outputs a load run report.
func (w *MarkdownWriter) WriteRun(run *model.LoadRun) (int, error) {
	s := NewRunSummary(run)
	md := markdown.NewMarkdown(w.output)

	md.H1("Load Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + s.ID + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration().String()},
			{"Data", "`" + s.DataPath + "`"},
			{"Target", "`" + s.TargetPath + "` (" + s.TargetKind + ")"},
			{"Status", w.title.String(s.Status)},
			{"Items", strconv.Itoa(s.Items)},
			{"Collections", strconv.Itoa(s.Collections)},
			{"Installed", strconv.Itoa(s.Installed)},
			{"Errors", strconv.Itoa(s.ErrorCount)},
		},
	})
	md.PlainText("")

	switch {
	case s.Status == string(model.RunFailed):
		md.Cautionf("The load failed: %s", s.Error)
	case s.Status == string(model.RunCancelled):
		md.Importantf("The load was cancelled. index.json was not written; rerun the load.")
	case s.ErrorCount > 0:
		md.Warningf("%d problem(s) were reported. Affected files or folders were skipped.", s.ErrorCount)
	default:
		md.Tip("All items loaded without problems.")
	}
	md.PlainText("")

	md.H2("Steps")
	md.PlainText("")
	if len(s.PerformedSteps) > 0 {
		md.BulletList(s.PerformedSteps...)
	} else {
		md.PlainText("No steps ran.")
	}
	md.PlainText("")

	if len(s.Errors) > 0 {
		md.H2("Problems")
		md.PlainText("")
		md.BulletList(s.Errors...)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [pdscload](https://github.com/nao1215/pdscload)*")
}

func access(item *model.Item) string {
	if item.OpenAccess {
		return "Open"
	}
	return "Restricted"
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
