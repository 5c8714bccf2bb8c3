// Package render replays AFP containers into rasterized frames.
package render

import (
	"errors"
	"fmt"

	"github.com/Faultbox/afpkit/pkg/afp"
)

// ErrClipFinished is returned when the current frame of a finished clip is requested.
var ErrClipFinished = errors.New("clip has no current frame")

// ClipID identifies the timeline that owns placed objects. Sprite timelines use
// their DefineSprite tag id.
type ClipID int

// RootClip is the id of a container's main timeline.
const RootClip ClipID = -1

// String returns "root" or the sprite id.
func (id ClipID) String() string {
	if id == RootClip {
		return "root"
	}
	return fmt.Sprintf("%d", int(id))
}

// Clip is one running timeline: the root of a container or an embedded sprite.
type Clip struct {
	id      ClipID
	frames  []afp.Frame
	tags    []afp.Tag
	frameno int
}

// NewClip creates a clip positioned on its first frame.
func NewClip(id ClipID, frames []afp.Frame, tags []afp.Tag) *Clip {
	return &Clip{
		id:     id,
		frames: frames,
		tags:   tags,
	}
}

// ID returns the owning tag id, or RootClip.
func (c *Clip) ID() ClipID {
	return c.id
}

// Frame returns the frame the clip is currently on.
func (c *Clip) Frame() (afp.Frame, error) {
	if c.Finished() {
		return afp.Frame{}, fmt.Errorf("%w: %s", ErrClipFinished, c)
	}
	return c.frames[c.frameno], nil
}

// CurrentTags returns the tags of the current frame, or nil when finished.
func (c *Clip) CurrentTags() []afp.Tag {
	frame, err := c.Frame()
	if err != nil {
		return nil
	}
	return frame.Slice(c.tags)
}

// Advance moves to the next frame. It does nothing once the clip is finished.
func (c *Clip) Advance() {
	if !c.Finished() {
		c.frameno++
	}
}

// Finished reports whether every frame has been played.
func (c *Clip) Finished() bool {
	return c.frameno >= len(c.frames)
}

// Running reports whether frames remain.
func (c *Clip) Running() bool {
	return c.frameno < len(c.frames)
}

// FrameIndex returns the index of the current frame.
func (c *Clip) FrameIndex() int {
	return c.frameno
}

// FrameCount returns the number of frames in the timeline.
func (c *Clip) FrameCount() int {
	return len(c.frames)
}

func (c *Clip) String() string {
	return fmt.Sprintf("Clip(id=%s, frames=%d, frameno=%d)", c.id, len(c.frames), c.frameno)
}

// anyRunning reports whether at least one clip still has frames.
func anyRunning(clips []*Clip) bool {
	for _, c := range clips {
		if c.Running() {
			return true
		}
	}
	return false
}

// running drops finished clips, keeping order.
func running(clips []*Clip) []*Clip {
	kept := clips[:0]
	for _, c := range clips {
		if c.Running() {
			kept = append(kept, c)
		}
	}
	return kept
}
