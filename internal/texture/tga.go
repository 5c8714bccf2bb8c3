package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// tgaHeader is the subset of the 18-byte TGA header the decoder needs.
type tgaHeader struct {
	idLength    int
	imageType   byte
	width       int
	height      int
	bytesPerPix int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("%w: TGA header needs %d bytes, got %d", ErrTruncated, tgaHeaderSize, len(data))
	}

	h := tgaHeader{
		idLength:    int(data[0]),
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		bytesPerPix: int(data[16]) / 8,
		// Bit 5 of the descriptor: rows stored top-to-bottom
		topToBottom: data[17]&0x20 != 0,
	}

	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedFormat)
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("%w: TGA type %d", ErrUnsupportedFormat, h.imageType)
	}
	if bpp := int(data[16]); bpp != 24 && bpp != 32 {
		return h, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedFormat, bpp)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("%w: TGA is %dx%d", ErrEmptyImage, h.width, h.height)
	}
	return h, nil
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA data.
// TGA alpha is straight, so the result is an NRGBA image.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: TGA image ID", ErrTruncated)
	}
	pixels := data[offset:]

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	w := tgaWriter{img: img, h: h}

	if h.imageType == TGATypeUncompressed {
		if need := h.width * h.height * h.bytesPerPix; len(pixels) < need {
			return nil, fmt.Errorf("%w: TGA pixels need %d bytes, got %d", ErrTruncated, need, len(pixels))
		}
		for i := 0; i < h.width*h.height; i++ {
			w.put(tgaPixel(pixels[i*h.bytesPerPix:], h.bytesPerPix))
		}
		return img, nil
	}

	if err := decodeTGARLE(&w, pixels); err != nil {
		return nil, err
	}
	return img, nil
}

// tgaWriter places pixels in file order, flipping bottom-up images.
type tgaWriter struct {
	img *image.NRGBA
	h   tgaHeader
	n   int
}

func (w *tgaWriter) done() bool {
	return w.n >= w.h.width*w.h.height
}

func (w *tgaWriter) put(c color.NRGBA) {
	x := w.n % w.h.width
	y := w.n / w.h.width
	if !w.h.topToBottom {
		y = w.h.height - 1 - y
	}
	w.img.SetNRGBA(x, y, c)
	w.n++
}

// tgaPixel reads one BGR(A) pixel.
func tgaPixel(p []byte, bytesPerPix int) color.NRGBA {
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPix == 4 {
		c.A = p[3]
	}
	return c
}

// decodeTGARLE decodes RLE packets until the image is full.
func decodeTGARLE(w *tgaWriter, data []byte) error {
	bpp := w.h.bytesPerPix
	i := 0

	for !w.done() {
		if i >= len(data) {
			return fmt.Errorf("%w: TGA RLE stream ended at pixel %d", ErrTruncated, w.n)
		}
		packet := data[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated
			if i+bpp > len(data) {
				return fmt.Errorf("%w: TGA RLE run", ErrTruncated)
			}
			c := tgaPixel(data[i:], bpp)
			i += bpp
			for ; count > 0 && !w.done(); count-- {
				w.put(c)
			}
			continue
		}

		// Raw packet: count literal pixels
		for ; count > 0 && !w.done(); count-- {
			if i+bpp > len(data) {
				return fmt.Errorf("%w: TGA RLE raw packet", ErrTruncated)
			}
			w.put(tgaPixel(data[i:], bpp))
			i += bpp
		}
	}

	return nil
}
