package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/afpkit/internal/render"
	"github.com/Faultbox/afpkit/pkg/afp"
)

var (
	red     = color.NRGBA{R: 255, A: 255}
	magenta = color.NRGBA{R: 255, B: 255, A: 255}
)

const movieYAML = `
name: movie
fps: 30
location: {width: 4, height: 4}
exports:
  blink: 5
frames:
  - {start: 0, count: 3}
tags:
  - {kind: shape, id: 1, reference: square}
  - kind: sprite
    id: 5
    frames:
      - {start: 0, count: 1}
    tags:
      - {kind: place, object_id: 1, depth: 0, source: 1}
  - {kind: place, object_id: 2, depth: 0, source: 1, transform: {tx: 2, ty: 2}}
`

const manifestYAML = `
textures:
  - name: tex_square
    file: textures/square.png
  - name: tex_keyed
    file: textures/keyed.png
    color_key: {r: 1, g: 0, b: 1, a: 1}
    tolerance: 4
  - name: tex_alias
    file: textures/square.png
shapes:
  - name: square
    draw_params:
      - {flags: 3, region: tex_square}
containers:
  - file: movie.yaml
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	img.SetNRGBA(1, 1, red)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	writeFile(t, path, buf.Bytes())
}

// assetDir lays out a complete asset directory and returns its path.
func assetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "textures", "square.png"), red)
	writePNG(t, filepath.Join(dir, "textures", "keyed.png"), magenta)
	writeFile(t, filepath.Join(dir, "movie.yaml"), []byte(movieYAML))
	writeFile(t, filepath.Join(dir, ManifestName), []byte(manifestYAML))
	return dir
}

func TestLoadDirectory(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)

	require.NoError(t, m.Load(dir))

	assert.Equal(t, dir, m.Root())
	containers := m.Containers()
	require.Len(t, containers, 1)
	assert.Equal(t, "movie", containers[0].ExportedName)
	assert.True(t, containers[0].Parsed())

	// tex_alias shares a file with tex_square and is decoded once.
	hits, misses := m.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestLoadManifestFile(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)

	require.NoError(t, m.Load(filepath.Join(dir, ManifestName)))
	assert.Equal(t, dir, m.Root())
}

func TestLoadLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewManager(zap.New(core))

	require.NoError(t, m.Load(assetDir(t)))

	entries := logs.FilterMessage("assets loaded").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["cached_files"])
	assert.Equal(t, int64(1), fields["containers"])
}

func TestColorKeyApplied(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)
	require.NoError(t, m.Load(dir))

	img, ok := m.textures["tex_keyed"].(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(1, 1))

	plain, ok := m.textures["tex_square"].(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, red, plain.NRGBAAt(0, 0))
}

func TestRegisterAndRender(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)
	require.NoError(t, m.Load(dir))

	r := render.New()
	require.NoError(t, m.Register(r))

	assert.Equal(t, []string{"movie", "movie.blink"}, r.ListPaths())

	duration, frames, err := r.RenderPath("movie")
	require.NoError(t, err)
	assert.Equal(t, 33, duration)
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(255), frames[0].RGBAAt(2, 2).R)
	assert.Equal(t, uint8(0), frames[0].RGBAAt(0, 0).A)

	_, frames, err = r.RenderPath("movie.blink")
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(255), frames[0].RGBAAt(0, 0).R)
}

func TestRegisterBeforeLoad(t *testing.T) {
	m := NewManager(nil)
	assert.ErrorIs(t, m.Register(render.New()), ErrNotLoaded)
}

func TestRegisterTwiceReplaces(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)
	require.NoError(t, m.Load(dir))

	r := render.New()
	require.NoError(t, m.Register(r))
	require.NoError(t, m.Register(r))

	assert.Equal(t, []string{"movie", "movie.blink"}, r.ListPaths())
}

func TestLoadReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), []byte("name: bad\nfps: 0\n"))
	writeFile(t, filepath.Join(dir, ManifestName), []byte(`
textures:
  - {name: missing, file: nope.png}
shapes:
  - {name: empty}
containers:
  - file: bad.yaml
`))

	m := NewManager(nil)
	err := m.Load(dir)
	require.Error(t, err)

	assert.Len(t, multierr.Errors(errors.Unwrap(err)), 3)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, afp.ErrEmptyShape)
	assert.ErrorIs(t, err, afp.ErrInvalidFrameRate)
	assert.Empty(t, m.Root(), "failed load must not replace assets")
}

func TestLoadMissing(t *testing.T) {
	m := NewManager(nil)
	assert.ErrorIs(t, m.Load(filepath.Join(t.TempDir(), "absent")), os.ErrNotExist)
	assert.ErrorIs(t, m.Load(t.TempDir()), os.ErrNotExist)
}

func TestManifestValidate(t *testing.T) {
	m := Manifest{
		Textures: []TextureEntry{
			{Name: "a", File: "a.png"},
			{Name: "a", File: "b.png"},
			{Name: "", File: "c.png"},
			{Name: "d"},
		},
		Shapes: []afp.Shape{{Name: "s"}, {Name: "s"}, {}},
		Containers: []ContainerEntry{
			{File: "dir/movie.yaml"},
			{Name: "movie.yaml", File: "other.yaml"},
			{Name: "x"},
		},
	}

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidManifest)
	// dup texture, unnamed texture, missing file, dup shape, unnamed shape,
	// dup container, container without file
	assert.Len(t, multierr.Errors(err), 7)
}

func TestReadManifestRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, []byte("textures:\n  - {name: a, file: a.png, colour_key: red}\n"))

	_, err := ReadManifest(path)
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	c := NewCache()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", img)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Same(t, img, got)
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	hits, misses = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestClose(t *testing.T) {
	dir := assetDir(t)
	m := NewManager(nil)
	require.NoError(t, m.Load(dir))

	m.Close()

	assert.Empty(t, m.Root())
	assert.Empty(t, m.Containers())
	assert.ErrorIs(t, m.Register(render.New()), ErrNotLoaded)
}
