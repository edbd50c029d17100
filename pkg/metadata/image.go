package metadata

import (
	"image"
	"io"
	"os"
	"time"

	// Registered so image.DecodeConfig can sniff the common formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
)

// ImageMeta is the decoded image metadata for one entry.
type ImageMeta struct {
	Width       int
	Height      int
	DateTime    time.Time // embedded capture time, valid when HasDateTime
	HasDateTime bool
}

// EnsureMin reports whether both dimensions are at least min.
func (m *ImageMeta) EnsureMin(min int) bool {
	return m.Width >= min && m.Height >= min
}

// EnsureMax reports whether both dimensions are at most max.
func (m *ImageMeta) EnsureMax(max int) bool {
	return m.Width <= max && m.Height <= max
}

// decodeImage reads image metadata from the file at path. EXIF is tried
// first (capture time and pixel dimensions); dimensions fall back to a
// format-sniffed header probe for images without EXIF size tags. A file
// that is not an image in either sense fails with ErrMetadataDecode.
func decodeImage(path string) (*ImageMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMetadataDecode, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var meta ImageMeta
	haveDims := false

	x, exifErr := exif.Decode(f)
	if exifErr == nil {
		if w, h, ok := exifDimensions(x); ok {
			meta.Width, meta.Height = w, h
			haveDims = true
		}
		if tm, err := x.DateTime(); err == nil {
			meta.DateTime = tm
			meta.HasDateTime = true
		}
	}

	if !haveDims {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, errors.ErrMetadataDecode, "seek %s", path)
		}
		cfg, _, cfgErr := image.DecodeConfig(f)
		switch {
		case cfgErr == nil:
			meta.Width, meta.Height = cfg.Width, cfg.Height
		case exifErr != nil:
			return nil, errors.Wrapf(cfgErr, errors.ErrMetadataDecode,
				"%s does not decode as an image", path)
		}
		// EXIF present but no usable size tags: keep zero dimensions.
	}

	return &meta, nil
}

// exifDimensions pulls pixel dimensions out of the EXIF block, preferring
// the Exif sub-IFD size tags over the baseline TIFF ones.
func exifDimensions(x *exif.Exif) (int, int, bool) {
	pairs := [][2]exif.FieldName{
		{exif.PixelXDimension, exif.PixelYDimension},
		{exif.ImageWidth, exif.ImageLength},
	}
	for _, p := range pairs {
		wTag, errW := x.Get(p[0])
		hTag, errH := x.Get(p[1])
		if errW != nil || errH != nil {
			continue
		}
		w, errW := wTag.Int(0)
		h, errH := hTag.Int(0)
		if errW != nil || errH != nil {
			continue
		}
		return w, h, true
	}
	return 0, 0, false
}
