// Package assets loads textures, shapes and containers listed in a manifest
// and registers them with a renderer.
package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/afpkit/internal/render"
	"github.com/Faultbox/afpkit/internal/texture"
	"github.com/Faultbox/afpkit/pkg/afp"
)

// ManifestName is the file Load looks for when given a directory.
const ManifestName = "manifest.yaml"

// ErrNotLoaded is returned by Register before a successful Load.
var ErrNotLoaded = errors.New("no manifest loaded")

// Manager handles asset loading from a manifest directory.
type Manager struct {
	log   *zap.Logger
	cache *Cache

	mu         sync.RWMutex
	root       string
	textures   map[string]image.Image
	shapes     map[string]*afp.Shape
	containers []namedContainer
}

type namedContainer struct {
	name      string
	container *afp.Container
}

// NewManager creates a new asset manager. A nil logger discards output.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:   log,
		cache: NewCache(),
	}
}

// Load reads a manifest (or the manifest.yaml inside a directory) and
// decodes everything it lists. Every problem found is reported, not just the first.
// A successful Load replaces previously loaded assets; the texture cache is kept.
func (m *Manager) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening assets %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ManifestName)
	}

	manifest, err := ReadManifest(path)
	if err != nil {
		return err
	}
	root := filepath.Dir(path)

	textures := make(map[string]image.Image, len(manifest.Textures))
	for _, t := range manifest.Textures {
		img, terr := m.loadTexture(filepath.Join(root, t.File), t)
		if terr != nil {
			err = multierr.Append(err, fmt.Errorf("texture %s: %w", t.Name, terr))
			continue
		}
		textures[t.Name] = img
	}

	shapes := make(map[string]*afp.Shape, len(manifest.Shapes))
	for i := range manifest.Shapes {
		s := &manifest.Shapes[i]
		if serr := s.Parse(); serr != nil {
			err = multierr.Append(err, serr)
			continue
		}
		shapes[s.Name] = s
	}

	containers := make([]namedContainer, 0, len(manifest.Containers))
	for _, c := range manifest.Containers {
		parsed, cerr := afp.ParseContainerFile(filepath.Join(root, c.File))
		if cerr != nil {
			err = multierr.Append(err, cerr)
			continue
		}
		containers = append(containers, namedContainer{name: c.registrationName(), container: parsed})
	}

	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	m.mu.Lock()
	m.root = root
	m.textures = textures
	m.shapes = shapes
	m.containers = containers
	m.mu.Unlock()

	hits, misses := m.cache.Stats()
	m.log.Info("assets loaded",
		zap.String("manifest", path),
		zap.Int("textures", len(textures)),
		zap.Int("shapes", len(shapes)),
		zap.Int("containers", len(containers)),
		zap.Int("cached_files", m.cache.Len()),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))
	return nil
}

// loadTexture decodes a texture file once per path and color key.
func (m *Manager) loadTexture(path string, t TextureEntry) (image.Image, error) {
	key := path
	if t.ColorKey != nil {
		key = fmt.Sprintf("%s#%s/%d", path, t.ColorKey, t.Tolerance)
	}
	if img, ok := m.cache.Get(key); ok {
		return img, nil
	}

	img, err := texture.Load(path)
	if err != nil {
		return nil, err
	}
	if t.ColorKey != nil {
		n := texture.ApplyColorKey(img, t.ColorKey.NRGBA(), t.Tolerance)
		m.log.Debug("applied color key", zap.String("file", path), zap.Int("pixels", n))
	}
	m.cache.Set(key, img)
	return img, nil
}

// Register adds every loaded texture, shape and container to r.
func (m *Manager) Register(r *render.Renderer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.root == "" {
		return ErrNotLoaded
	}

	for name, img := range m.textures {
		r.AddTexture(name, img)
	}

	var err error
	for name, s := range m.shapes {
		err = multierr.Append(err, r.AddShape(name, s))
	}
	for _, c := range m.containers {
		err = multierr.Append(err, r.AddSourceContainer(c.name, c.container))
	}
	return err
}

// Containers returns the loaded containers in manifest order.
func (m *Manager) Containers() []*afp.Container {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*afp.Container, len(m.containers))
	for i, c := range m.containers {
		out[i] = c.container
	}
	return out
}

// Root returns the directory the manifest was loaded from.
func (m *Manager) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// CacheStats returns texture cache statistics.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops loaded assets and clears the cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.root = ""
	m.textures = nil
	m.shapes = nil
	m.containers = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for decoded textures.
type Cache struct {
	data map[string]image.Image
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]image.Image),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]image.Image)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
