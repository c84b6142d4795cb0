package announce

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

const (
	MaxPhotos       = 4
	DefaultMaxWidth = 1200
)

// Photo is either a pending upload (Data set) or an image the backend
// already stores (URL set).
type Photo struct {
	Name string
	Data []byte
	URL  string
}

func (p Photo) Pending() bool { return p.URL == "" && len(p.Data) > 0 }

// ResizePhoto decodes data and, when it is wider than maxWidth, scales it
// down keeping the aspect ratio and re-encodes it as JPEG. Images that already
// fit are returned untouched.
func ResizePhoto(name string, data []byte, maxWidth uint) (Photo, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Photo{}, ErrInvalidImage
	}
	if maxWidth == 0 || uint(img.Bounds().Dx()) <= maxWidth {
		return Photo{Name: name, Data: data}, nil
	}

	scaled := resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
		return Photo{}, err
	}
	return Photo{Name: jpegName(name), Data: buf.Bytes()}, nil
}

func jpegName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "photo"
	}
	return base + ".jpg"
}
