package render

import (
	"fmt"
	"image"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/afpkit/pkg/afp"
)

// renderState is everything one render call mutates: the shape slots defined by
// shape tags and the display list shared by every clip of the container.
type renderState struct {
	log        *zap.Logger
	verbose    bool
	maxFrames  int
	maxNesting int

	shapes   map[string]*afp.Shape
	textures map[string]image.Image

	registered map[int]*afp.Shape
	placed     []*PlacedObject
	visible    ClipID
}

// debug logs only when the render call asked for verbose output.
func (s *renderState) debug(msg string, fields ...zap.Field) {
	if s.verbose {
		s.log.Debug(msg, fields...)
	}
}

// render plays the container's timelines until every clip has finished.
func (s *renderState) render(c *afp.Container, export string, exported bool) (int, []*image.RGBA, error) {
	s.visible = RootClip
	if exported {
		id, ok := c.ExportedTags[export]
		if !ok {
			return 0, nil, fmt.Errorf("%w: %s is not exported by %s", ErrExportNotFound, export, c.ExportedName)
		}
		s.visible = ClipID(id)
	}
	s.registered = make(map[int]*afp.Shape)
	s.placed = nil

	duration := c.FrameDuration()
	spf := time.Duration(duration) * time.Millisecond

	var clips []*Clip
	if len(c.Frames) > 0 {
		clips = append(clips, NewClip(RootClip, c.Frames, c.Tags))
	}

	var frames []*image.RGBA
	for frameno := 0; anyRunning(clips); frameno++ {
		if s.maxFrames > 0 && frameno >= s.maxFrames {
			return 0, nil, fmt.Errorf("%w: %s stopped after %d frames", ErrFrameLimit, c.ExportedName, frameno)
		}
		s.debug("rendering frame", zap.Int("frame", frameno), zap.Duration("time", spf*time.Duration(frameno)))

		// Clips spawned by sprite tags already ran their first frame.
		var spawned []*Clip
		for _, clip := range clips {
			tags := clip.CurrentTags()
			if len(tags) > 0 {
				s.debug("processing frame tags",
					zap.Stringer("clip", clip.ID()),
					zap.Int("clip_frame", clip.FrameIndex()),
					zap.Int("tags", len(tags)),
				)
			}
			for _, tag := range tags {
				newClips, err := s.place(tag, clip.ID(), 0)
				if err != nil {
					return 0, nil, fmt.Errorf("frame %d: %w", frameno, err)
				}
				spawned = append(spawned, newClips...)
			}
		}
		clips = append(clips, spawned...)

		canvas := newCanvas(c.Location.Width, c.Location.Height, c.Background())
		if err := s.composite(canvas); err != nil {
			return 0, nil, fmt.Errorf("frame %d: %w", frameno, err)
		}

		for _, clip := range clips {
			clip.Advance()
		}
		frames = append(frames, canvas)
		clips = running(clips)
	}

	return duration, frames, nil
}

// place performs one tag, returning any clips it started.
func (s *renderState) place(tag afp.Tag, parent ClipID, depth int) ([]*Clip, error) {
	switch t := tag.(type) {
	case *afp.ShapeTag:
		s.debug("loading shape", zap.String("reference", t.Reference), zap.Int("slot", t.ID), zap.Int("nesting", depth))

		shape, ok := s.shapes[t.Reference]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, t.Reference)
		}
		if _, taken := s.registered[t.ID]; taken {
			return nil, fmt.Errorf("%w: cannot register %s as slot %d", ErrDuplicateShapeSlot, t.Reference, t.ID)
		}
		s.registered[t.ID] = shape
		return nil, nil

	case *afp.DefineSpriteTag:
		s.debug("registering sprite", zap.Int("sprite", t.ID), zap.Int("nesting", depth))

		clip := NewClip(ClipID(t.ID), t.Frames, t.Tags)
		clips := []*Clip{clip}

		// The sprite's first frame happens on the tick that defines it.
		for _, child := range clip.CurrentTags() {
			more, err := s.place(child, clip.ID(), depth+1)
			if err != nil {
				return nil, err
			}
			clips = append(clips, more...)
		}
		return clips, nil

	case *afp.PlaceObjectTag:
		if t.Update {
			s.debug("updating object", zap.Int("object_id", t.ObjectID), zap.Int("depth", t.Depth), zap.Int("nesting", depth))

			updated := false
			for _, obj := range s.placed {
				if obj.ObjectID() == t.ObjectID && obj.Depth() == t.Depth {
					obj.Tag.Overlay(t)
					updated = true
				}
			}
			if !updated {
				return nil, fmt.Errorf("%w: cannot update object %d on depth %d", ErrObjectNotFound, t.ObjectID, t.Depth)
			}
			return nil, nil
		}

		s.debug("placing object", zap.Int("object_id", t.ObjectID), zap.Int("depth", t.Depth),
			zap.Stringer("parent", parent), zap.Int("nesting", depth))
		s.placed = append(s.placed, newPlacedObject(parent, t))
		return nil, nil

	case *afp.RemoveObjectTag:
		s.debug("removing object", zap.Int("object_id", t.ObjectID), zap.Int("depth", t.Depth), zap.Int("nesting", depth))
		return nil, s.remove(t)

	case *afp.DoActionTag, *afp.DefineFontTag, *afp.DefineEditTextTag:
		s.log.Warn("unhandled tag", zap.Stringer("kind", tag.Kind()), zap.Stringer("parent", parent))
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTag, tag)
	}
}

// remove deletes by object id and depth, or the most recently placed object on the
// depth when the id is 0.
func (s *renderState) remove(t *afp.RemoveObjectTag) error {
	if t.ObjectID != 0 {
		before := len(s.placed)
		s.placed = slices.DeleteFunc(s.placed, func(obj *PlacedObject) bool {
			return obj.ObjectID() == t.ObjectID && obj.Depth() == t.Depth
		})
		if len(s.placed) == before {
			return fmt.Errorf("%w: cannot remove object %d on depth %d", ErrObjectNotFound, t.ObjectID, t.Depth)
		}
		return nil
	}

	// Later placements on a depth come later in the list.
	for i := len(s.placed) - 1; i >= 0; i-- {
		if s.placed[i].Depth() == t.Depth {
			s.placed = slices.Delete(s.placed, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrDepthNotFound, t.Depth)
}
