package catalog

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nao1215/pdscload/internal/model"
)

// ThumbnailToken is inserted before the extension of an image to name its preview.
const ThumbnailToken = "-thumb-PDSC_ADMIN"

// extensions lists the recognised extensions per class in precedence order.
// An extension listed under two classes (ogg) belongs to the first.
var extensions = []struct {
	class model.MediaClass
	exts  []string
}{
	{model.ClassImage, []string{"jpg", "jpeg", "png"}},
	{model.ClassAudio, []string{"mp3", "ogg", "oga"}},
	{model.ClassVideo, []string{"mp4", "ogg", "ogv", "mov", "webm"}},
	{model.ClassDocument, []string{"pdf"}},
	{model.ClassTranscription, []string{"eaf", "trs", "ixt", "flextext"}},
}

// Extension returns the lower-cased text between the first and second "."
// of a file name, or "" when the name has no ".".
func Extension(name string) string {
	_, rest, ok := strings.Cut(name, ".")
	if !ok {
		return ""
	}
	ext, _, _ := strings.Cut(rest, ".")
	return strings.ToLower(ext)
}

// Classify returns the content class of a file name.
func Classify(name string) model.MediaClass {
	ext := Extension(name)
	if ext == "" {
		return model.ClassNone
	}
	for _, group := range extensions {
		for _, e := range group.exts {
			if e == ext {
				return group.class
			}
		}
	}
	return model.ClassNone
}

// IsThumbnail reports whether an image name denotes a preview.
func IsThumbnail(name string) bool {
	return strings.Contains(name, "thumb")
}

// ThumbnailName derives the preview file name of an image:
// IMG001.jpg becomes IMG001-thumb-PDSC_ADMIN.jpg.
func ThumbnailName(name string) string {
	base, rest, _ := strings.Cut(filepath.Base(name), ".")
	ext, _, _ := strings.Cut(rest, ".")
	return base + ThumbnailToken + "." + ext
}

// ThumbnailPath returns the preview path next to an image path.
func ThumbnailPath(imagePath string) string {
	return filepath.Join(filepath.Dir(imagePath), ThumbnailName(imagePath))
}

var bracketed = regexp.MustCompile(`\[.*\]`)

// ParseClassifications parses an admin comment of the form
// "[name: value:::name: value]". Anything else yields an empty list.
func ParseClassifications(comment string) []model.Classification {
	out := make([]model.Classification, 0)
	if !bracketed.MatchString(comment) {
		return out
	}

	body := strings.Replace(comment, "[", "", 1)
	body = strings.Replace(body, "]", "", 1)

	for _, fragment := range strings.Split(body, ":::") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		name, value, _ := strings.Cut(fragment, ":")
		out = append(out, model.Classification{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return out
}

// Categories applies the category rule: song or instrumental music means
// ["music"], anything else means no category.
func Categories(raw []string) []string {
	for _, c := range raw {
		if c == "instrumental music" || c == "song" {
			return []string{"music"}
		}
	}
	return []string{}
}
