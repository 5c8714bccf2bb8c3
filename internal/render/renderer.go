package render

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/afpkit/pkg/afp"
)

// Render errors.
var (
	ErrMalformedPath      = errors.New(`expected a path in the form of "moviename" or "moviename.exportedtag"`)
	ErrContainerNotFound  = errors.New("container not registered")
	ErrExportNotFound     = errors.New("export not found in container")
	ErrShapeNotFound      = errors.New("shape reference not found")
	ErrDuplicateShapeSlot = errors.New("shape slot already taken")
	ErrTextureNotFound    = errors.New("texture reference not found")
	ErrObjectNotFound     = errors.New("placed object not found")
	ErrDepthNotFound      = errors.New("no placed object on depth")
	ErrNoClipChildren     = errors.New("no placed objects for sprite")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrRenderCycle        = errors.New("sprite renders itself")
	ErrNestingTooDeep     = errors.New("sprite nesting too deep")
	ErrFrameLimit         = errors.New("frame limit exceeded")
)

// DefaultMaxNesting bounds how deep sprites may be nested inside each other.
const DefaultMaxNesting = 64

// Renderer holds registered shapes, textures and containers. Registration is safe
// for concurrent use, and each render call keeps its own shape slots and display list,
// so one Renderer can serve concurrent renders.
type Renderer struct {
	log        *zap.Logger
	maxFrames  int
	maxNesting int

	mu         sync.RWMutex
	shapes     map[string]*afp.Shape
	textures   map[string]image.Image
	containers map[string]*afp.Container
	order      []string // container registration order
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for warnings and verbose tracing.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMaxFrames aborts renders that would produce more than n frames. 0 disables the cap.
func WithMaxFrames(n int) Option {
	return func(r *Renderer) {
		r.maxFrames = n
	}
}

// WithMaxNesting sets how deep sprite instances may be nested.
func WithMaxNesting(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxNesting = n
		}
	}
}

// New creates an empty renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		log:        zap.NewNop(),
		maxNesting: DefaultMaxNesting,
		shapes:     make(map[string]*afp.Shape),
		textures:   make(map[string]image.Image),
		containers: make(map[string]*afp.Container),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddShape registers a named shape, parsing it first if needed.
// Parse runs under r.mu since it records its result on the shape.
func (r *Renderer) AddShape(name string, shape *afp.Shape) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := shape.Parse(); err != nil {
		return err
	}
	r.shapes[name] = shape
	return nil
}

// AddTexture registers a decoded texture region.
func (r *Renderer) AddTexture(name string, img image.Image) {
	r.mu.Lock()
	r.textures[name] = img
	r.mu.Unlock()
}

// AddSourceContainer registers a named container, parsing it first if needed.
// Exports naming something other than a sprite are kept; they render blank frames.
func (r *Renderer) AddSourceContainer(name string, c *afp.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := c.Parse(); err != nil {
		return err
	}
	sprites := c.SpriteExports()
	for _, export := range c.ExportNames() {
		if !sprites[export] {
			r.log.Warn("export does not name a sprite",
				zap.String("container", c.ExportedName),
				zap.String("export", export),
				zap.Int("tag_id", c.ExportedTags[export]))
		}
	}

	if _, ok := r.containers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.containers[name] = c
	return nil
}

// Container returns a registered container by exported name.
func (r *Renderer) Container(exportedName string) (*afp.Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := r.lookup(exportedName)
	return c, c != nil
}

// lookup finds a container by exported name. Callers hold r.mu.
func (r *Renderer) lookup(exportedName string) *afp.Container {
	for _, name := range r.order {
		if c := r.containers[name]; c.ExportedName == exportedName {
			return c
		}
	}
	return nil
}

// ListPaths returns every renderable path: each container's exported name followed
// by "name.export" for each export, in registration order.
func (r *Renderer) ListPaths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var paths []string
	for _, name := range r.order {
		c := r.containers[name]
		paths = append(paths, c.ExportedName)
		for _, export := range c.ExportNames() {
			paths = append(paths, c.ExportedName+"."+export)
		}
	}
	return paths
}

// RenderOption configures a single render call.
type RenderOption func(*renderState)

// Verbose traces every processed tag and placed object at debug level.
func Verbose(on bool) RenderOption {
	return func(s *renderState) {
		s.verbose = on
	}
}

// RenderPath renders "container" or "container.export" and returns the frame
// duration in milliseconds with one image per frame.
func (r *Renderer) RenderPath(path string, opts ...RenderOption) (int, []*image.RGBA, error) {
	components := strings.Split(path, ".")
	if len(components) > 2 {
		return 0, nil, fmt.Errorf("%w: %s", ErrMalformedPath, path)
	}

	r.mu.RLock()
	c := r.lookup(components[0])
	state := r.newState()
	r.mu.RUnlock()

	if c == nil {
		return 0, nil, fmt.Errorf("%w: %s", ErrContainerNotFound, path)
	}
	for _, opt := range opts {
		opt(state)
	}

	if len(components) == 2 {
		return state.render(c, components[1], true)
	}
	return state.render(c, "", false)
}

// newState snapshots the registrations for one render call. Callers hold r.mu.
func (r *Renderer) newState() *renderState {
	s := &renderState{
		log:        r.log,
		maxFrames:  r.maxFrames,
		maxNesting: r.maxNesting,
		shapes:     make(map[string]*afp.Shape, len(r.shapes)),
		textures:   make(map[string]image.Image, len(r.textures)),
	}
	for name, shape := range r.shapes {
		s.shapes[name] = shape
	}
	for name, tex := range r.textures {
		s.textures[name] = tex
	}
	return s
}
