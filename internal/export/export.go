// Package export writes rendered frames to disk as PNG sequences or animated GIFs.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Export errors.
var (
	ErrNoFrames     = errors.New("no frames to export")
	ErrInvalidScale = errors.New("scale factor must be at least 1")
)

// gifPalette is full transparency at index 0 followed by the web-safe colors.
var gifPalette = append(color.Palette{color.Transparent}, palette.WebSafe...)

// Scale upscales every frame by an integer factor using nearest-neighbor sampling.
// A factor of 1 returns frames unchanged.
func Scale(frames []*image.RGBA, factor int) ([]*image.RGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, factor)
	}
	if factor == 1 {
		return frames, nil
	}

	out := make([]*image.RGBA, len(frames))
	for i, f := range frames {
		b := f.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), f, b, draw.Src, nil)
		out[i] = dst
	}
	return out, nil
}

// FrameName returns the file name WritePNGs uses for frame i.
func FrameName(prefix string, i int) string {
	return fmt.Sprintf("%s-%04d.png", prefix, i)
}

// WritePNGs writes one PNG per frame into dir, creating it if needed,
// and returns the written paths in frame order.
func WritePNGs(dir, prefix string, frames []*image.RGBA) ([]string, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		path := filepath.Join(dir, FrameName(prefix, i))
		if err := writePNG(path, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG %s: %w", path, err)
	}
	return file.Close()
}

// GIFDelay converts a frame duration in milliseconds to GIF hundredths of a second.
// GIF viewers treat 0 as "as fast as possible", so the result is at least 1.
func GIFDelay(durationMS int) int {
	return max(1, int(math.Round(float64(durationMS)/10)))
}

// WriteGIF encodes frames as a looping animated GIF. Fully transparent pixels stay
// transparent; everything else is mapped to the web-safe palette.
func WriteGIF(w io.Writer, durationMS int, frames []*image.RGBA) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	delay := GIFDelay(durationMS)
	anim := gif.GIF{
		Image:    make([]*image.Paletted, 0, len(frames)),
		Delay:    make([]int, 0, len(frames)),
		Disposal: make([]byte, 0, len(frames)),
	}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), gifPalette)
		draw.Draw(p, p.Rect, f, f.Bounds().Min, draw.Src)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	if err := gif.EncodeAll(w, &anim); err != nil {
		return fmt.Errorf("encoding GIF: %w", err)
	}
	return nil
}

// WriteGIFFile writes an animated GIF to path, creating parent directories.
func WriteGIFFile(path string, durationMS int, frames []*image.RGBA) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := WriteGIF(file, durationMS, frames); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
