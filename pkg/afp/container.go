package afp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"

	"github.com/Faultbox/afpkit/pkg/geo"
)

// Container validation errors.
var (
	ErrInvalidFrameRate = errors.New("invalid frame rate")
	ErrFrameOutOfRange  = errors.New("frame range outside tag list")
	ErrInvalidSize      = errors.New("invalid canvas size")
)

// Rect is the declared canvas size of a container.
type Rect struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Container is a decoded animation: a root timeline plus the canvas it renders to.
type Container struct {
	ExportedName string
	FPS          float64
	Location     Rect
	Color        *geo.Color // nil = transparent black
	Frames       []Frame
	Tags         []Tag
	ExportedTags map[string]int // export name -> tag id

	parsed bool
}

// Parsed reports whether Parse has completed successfully.
func (c *Container) Parsed() bool {
	return c.parsed
}

// Parse validates the container once. Every problem found is reported.
func (c *Container) Parse() error {
	if c.parsed {
		return nil
	}

	var err error
	if c.FPS <= 0 || math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrInvalidFrameRate, c.FPS))
	}
	if c.Location.Width < 0 || c.Location.Height < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Location.Width, c.Location.Height))
	}

	err = multierr.Append(err, validateTimeline("root", c.Frames, c.Tags))

	if err != nil {
		return fmt.Errorf("container %s: %w", c.ExportedName, err)
	}
	c.parsed = true
	return nil
}

// validateTimeline checks frame ranges of a timeline and every sprite nested in it.
func validateTimeline(name string, frames []Frame, tags []Tag) error {
	var err error
	for i, f := range frames {
		// Compared by subtraction so huge offsets cannot overflow.
		if f.StartTagOffset < 0 || f.NumTags < 0 || f.StartTagOffset > len(tags) ||
			f.NumTags > len(tags)-f.StartTagOffset {
			err = multierr.Append(err, fmt.Errorf("%w: %s frame %d [%d+%d] of %d tags",
				ErrFrameOutOfRange, name, i, f.StartTagOffset, f.NumTags, len(tags)))
		}
	}
	for _, tag := range tags {
		sprite, ok := tag.(*DefineSpriteTag)
		if !ok {
			continue
		}
		err = multierr.Append(err, validateTimeline(fmt.Sprintf("sprite %d", sprite.ID), sprite.Frames, sprite.Tags))
	}
	return err
}

// SpriteExports reports, per export name, whether the exported id is defined by a
// DefineSprite tag. Exports of anything else are legal but render blank frames.
func (c *Container) SpriteExports() map[string]bool {
	sprites := make(map[int]bool)
	var walk func(tags []Tag)
	walk = func(tags []Tag) {
		for _, tag := range tags {
			if sprite, ok := tag.(*DefineSpriteTag); ok {
				sprites[sprite.ID] = true
				walk(sprite.Tags)
			}
		}
	}
	walk(c.Tags)

	out := make(map[string]bool, len(c.ExportedTags))
	for name, id := range c.ExportedTags {
		out[name] = sprites[id]
	}
	return out
}

// FrameDuration returns the length of one frame in whole milliseconds.
func (c *Container) FrameDuration() int {
	if c.FPS <= 0 {
		return 0
	}
	return int(math.Round(1000.0 / c.FPS))
}

// Background returns the declared background color, defaulting to transparent black.
func (c *Container) Background() geo.Color {
	if c.Color == nil {
		return geo.Transparent
	}
	return *c.Color
}

// ExportNames returns the exported tag names in sorted order.
func (c *Container) ExportNames() []string {
	names := make([]string, 0, len(c.ExportedTags))
	for name := range c.ExportedTags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CountTags returns the number of tags of each kind in the container, including
// tags nested in sprites.
func (c *Container) CountTags() map[TagKind]int {
	counts := make(map[TagKind]int)
	var walk func(tags []Tag)
	walk = func(tags []Tag) {
		for _, tag := range tags {
			counts[tag.Kind()]++
			if sprite, ok := tag.(*DefineSpriteTag); ok {
				walk(sprite.Tags)
			}
		}
	}
	walk(c.Tags)
	return counts
}
