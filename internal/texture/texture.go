// Package texture decodes the bitmap files shapes reference.
//
// PNG, BMP and TGA are supported. The format is picked from the file
// extension; files without a known extension are sniffed.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Decoding errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported texture format") // unknown extension or TGA variant
	ErrTruncated         = errors.New("texture data truncated")     // header or pixels cut short
	ErrEmptyImage        = errors.New("texture has no pixels")      // zero width or height
)

// Format identifies a texture file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
	FormatTGA Format = "tga"
)

// FormatOf returns the format implied by a file name's extension, or "".
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return FormatPNG
	case ".bmp":
		return FormatBMP
	case ".tga":
		return FormatTGA
	}
	return ""
}

// Decode decodes texture data. name is only used to pick the format.
func Decode(name string, data []byte) (*image.NRGBA, error) {
	format := FormatOf(name)
	if format == "" {
		format = sniff(data)
	}

	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatBMP:
		img, err = bmp.Decode(bytes.NewReader(data))
	case FormatTGA:
		return DecodeTGA(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", format, name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, name)
	}
	return ToNRGBA(img), nil
}

// Load reads and decodes a texture file.
func Load(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// sniff guesses a format from magic bytes. TGA has none, so it is the fallback
// for anything that looks like a plausible TGA header.
func sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP
	case len(data) >= tgaHeaderSize && (data[2] == TGATypeUncompressed || data[2] == TGATypeRLE):
		return FormatTGA
	}
	return ""
}

// ToNRGBA converts any image to *image.NRGBA with bounds starting at (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// IsColorKey reports whether c is within tolerance of key on every RGB channel.
func IsColorKey(c, key color.NRGBA, tolerance uint8) bool {
	return near(c.R, key.R, tolerance) && near(c.G, key.G, tolerance) && near(c.B, key.B, tolerance)
}

func near(a, b, tolerance uint8) bool {
	if a > b {
		return a-b <= tolerance
	}
	return b-a <= tolerance
}

// ApplyColorKey makes every pixel matching key transparent black, in place.
// Formats without alpha (24-bit BMP) use a key color for cut-outs.
func ApplyColorKey(img *image.NRGBA, key color.NRGBA, tolerance uint8) int {
	keyed := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			c := color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
			if IsColorKey(c, key, tolerance) {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
				keyed++
			}
		}
	}
	return keyed
}
