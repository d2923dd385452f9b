package site

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is a relative link of a generated page whose target is missing.
type Link struct {
	// Page is the page holding the link, relative to the site root.
	Page string

	// Target is the link as written in the page.
	Target string
}

func (l Link) String() string {
	return "Broken link in " + l.Page + ": " + l.Target
}

// PageLinks returns the href and src values of every link, stylesheet,
// image and media source on an HTML page, in document order.
func PageLinks(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, href)
				}
			case "img", "script", "source", "audio", "video":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// CheckLinks parses every page under root and returns the relative links
// that do not point at an existing file. Absolute URLs and fragments are
// not checked.
func CheckLinks(root string) ([]Link, error) {
	broken := make([]Link, 0)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}

		f, err := os.Open(p) //nolint:gosec // pages are under the site root
		if err != nil {
			return err
		}
		links, err := PageLinks(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		page, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		for _, href := range links {
			target, ok := localTarget(href)
			if !ok {
				continue
			}
			if _, err := os.Stat(filepath.Join(filepath.Dir(p), filepath.FromSlash(target))); err != nil {
				broken = append(broken, Link{Page: filepath.ToSlash(page), Target: href})
			}
		}
		return nil
	})
	return broken, err
}

// localTarget returns the path of a relative link, or false for links that
// leave the site.
func localTarget(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	return u.Path, true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
