package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/afpkit/pkg/afp"
	"github.com/Faultbox/afpkit/pkg/geo"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	opaqueRed   = color.RGBA{R: 255, A: 255}
	opaqueBlue  = color.RGBA{B: 255, A: 255}
	transparent = color.RGBA{}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func ref(id int) *int {
	return &id
}

// placeAt builds a place tag translated to (x, y).
func placeAt(objectID, depth, source int, x, y float64) *afp.PlaceObjectTag {
	m := geo.Translate(x, y)
	return &afp.PlaceObjectTag{
		ObjectID:    objectID,
		Depth:       depth,
		SourceTagID: ref(source),
		Transform:   &m,
	}
}

func texturedShape(name, region string) *afp.Shape {
	return &afp.Shape{
		Name:       name,
		DrawParams: []afp.DrawParams{{Flags: afp.DrawInstantiable | afp.DrawTextured, Region: region}},
	}
}

// timeline lays out one frame per group of tags.
func timeline(groups ...[]afp.Tag) ([]afp.Frame, []afp.Tag) {
	var frames []afp.Frame
	var tags []afp.Tag
	for _, g := range groups {
		frames = append(frames, afp.Frame{StartTagOffset: len(tags), NumTags: len(g)})
		tags = append(tags, g...)
	}
	return frames, tags
}

func sprite(id int, groups ...[]afp.Tag) *afp.DefineSpriteTag {
	frames, tags := timeline(groups...)
	return &afp.DefineSpriteTag{ID: id, Frames: frames, Tags: tags}
}

func newContainer(name string, groups ...[]afp.Tag) *afp.Container {
	frames, tags := timeline(groups...)
	return &afp.Container{
		ExportedName: name,
		FPS:          30,
		Location:     afp.Rect{Width: 8, Height: 8},
		Frames:       frames,
		Tags:         tags,
		ExportedTags: map[string]int{},
	}
}

// newTestRenderer registers shapes "A" (2x2 red) and "B" (2x2 blue).
func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(append([]Option{WithLogger(zap.New(core))}, opts...)...)
	require.NoError(t, r.AddShape("A", texturedShape("A", "tex_red")))
	require.NoError(t, r.AddShape("B", texturedShape("B", "tex_blue")))
	r.AddTexture("tex_red", solid(2, 2, red))
	r.AddTexture("tex_blue", solid(2, 2, blue))
	return r, logs
}

func isBlank(img *image.RGBA) bool {
	for _, b := range img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}
