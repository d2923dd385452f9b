package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// generateThumbnail writes a preview of the image at src to dst, scaled to
// fit within size x size pixels.
func generateThumbnail(src, dst string, size int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	thumb := imaging.Fit(img, size, size, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}
