package export

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	opaqueRed  = color.RGBA{R: 255, A: 255}
	opaqueBlue = color.RGBA{B: 255, A: 255}
)

func frame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, c)
	return img
}

func TestScale(t *testing.T) {
	src := []*image.RGBA{frame(opaqueRed)}

	same, err := Scale(src, 1)
	require.NoError(t, err)
	assert.Same(t, src[0], same[0])

	big, err := Scale(src, 3)
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, image.Rect(0, 0, 6, 6), big[0].Bounds())
	assert.Equal(t, opaqueRed, big[0].RGBAAt(0, 0))
	assert.Equal(t, opaqueRed, big[0].RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{}, big[0].RGBAAt(3, 0))

	_, err = Scale(src, 0)
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestWritePNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	frames := []*image.RGBA{frame(opaqueRed), frame(opaqueBlue)}

	paths, err := WritePNGs(dir, "movie", frames)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "movie-0000.png"),
		filepath.Join(dir, "movie-0001.png"),
	}, paths)

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff, 0xffff}, []uint32{r, g, b, a})
	_, _, _, a = img.At(1, 1).RGBA()
	assert.Zero(t, a)
}

func TestWritePNGsNoFrames(t *testing.T) {
	_, err := WritePNGs(t.TempDir(), "x", nil)
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestGIFDelay(t *testing.T) {
	assert.Equal(t, 3, GIFDelay(33))
	assert.Equal(t, 4, GIFDelay(42))
	assert.Equal(t, 1, GIFDelay(0))
	assert.Equal(t, 100, GIFDelay(1000))
}

func TestWriteGIF(t *testing.T) {
	frames := []*image.RGBA{frame(opaqueRed), frame(opaqueBlue), image.NewRGBA(image.Rect(0, 0, 2, 2))}

	var buf bytes.Buffer
	require.NoError(t, WriteGIF(&buf, 42, frames))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 3)
	assert.Equal(t, []int{4, 4, 4}, anim.Delay)
	assert.Equal(t, 0, anim.LoopCount)

	assert.Equal(t, opaqueRed, toRGBA(anim.Image[0].At(0, 0)))
	assert.Equal(t, opaqueBlue, toRGBA(anim.Image[1].At(0, 0)))
	for _, p := range []image.Point{{1, 0}, {0, 1}, {1, 1}} {
		assert.Equal(t, color.RGBA{}, toRGBA(anim.Image[0].At(p.X, p.Y)), "pixel %v", p)
	}
	assert.Equal(t, color.RGBA{}, toRGBA(anim.Image[2].At(0, 0)))
}

func TestWriteGIFNoFrames(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteGIF(&buf, 33, nil), ErrNoFrames)
	assert.Zero(t, buf.Len())
}

func TestWriteGIFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "movie.gif")
	require.NoError(t, WriteGIFFile(path, 33, []*image.RGBA{frame(opaqueRed)}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := gif.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func toRGBA(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}
