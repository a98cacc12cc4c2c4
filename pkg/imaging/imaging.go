// Package imaging resizes and re-encodes product photos for the storefront.
//
//	out, err := imaging.Optimize(src, imaging.Options{Width: 640, Quality: 80, Format: "webp"})
//	w.Header().Set("Content-Type", out.ContentType)
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	DefaultWidth   = 800
	DefaultQuality = 75
	MinWidth       = 16
	MaxWidth       = 3840
)

var ErrDecode = errors.New("imaging: unsupported or corrupt image")

// Options drive one optimization.
type Options struct {
	Width   int
	Quality int
	Format  string
}

// Result is an encoded image.
type Result struct {
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

// Format resolves a requested output format. jpg is jpeg, avif is served as
// webp, and anything unknown falls back to webp.
func Format(f string) string {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "jpeg", "jpg":
		return "jpeg"
	case "png":
		return "png"
	default:
		return "webp"
	}
}

// Normalize resolves the format. Width and Quality are taken as given, so
// an explicit 0 fails Validate; callers fill DefaultWidth and DefaultQuality
// only when a parameter is absent.
func (o Options) Normalize() Options {
	o.Format = Format(o.Format)
	return o
}

// Validate reports out-of-range parameters.
func (o Options) Validate() error {
	if o.Width < MinWidth || o.Width > MaxWidth {
		return fmt.Errorf("width must be between %d and %d", MinWidth, MaxWidth)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New("quality must be between 1 and 100")
	}
	return nil
}

// Optimize decodes src, shrinks it to fit o.Width keeping the aspect ratio
// (smaller images are left as is), and encodes it in o.Format.
func Optimize(src []byte, o Options) (*Result, error) {
	o = o.Normalize()
	if err := o.Validate(); err != nil {
		return nil, err
	}

	img, err := decode(src)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > o.Width {
		img = imaging.Resize(img, o.Width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	res := &Result{Format: o.Format, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	switch o.Format {
	case "jpeg":
		res.ContentType = "image/jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(o.Quality))
	case "png":
		res.ContentType = "image/png"
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		res.ContentType = "image/webp"
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(o.Quality)})
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", o.Format, err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

func decode(src []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	// The stdlib registry has no webp decoder.
	if img, werr := webp.Decode(bytes.NewReader(src)); werr == nil {
		return img, nil
	}
	return nil, ErrDecode
}
