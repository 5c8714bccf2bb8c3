package render

import (
	"fmt"
	"image"
	"slices"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/afpkit/pkg/afp"
	"github.com/Faultbox/afpkit/pkg/geo"
)

// renderContext is what a placed object inherits from the sprite instance drawing it.
type renderContext struct {
	transform geo.Matrix
	origin    geo.Point
	multColor *geo.Color
	addColor  *geo.Color
}

func rootContext() renderContext {
	return renderContext{transform: geo.Identity()}
}

// newCanvas creates a frame filled with the background color.
func newCanvas(width, height int, background geo.Color) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	if !background.IsAddIdentity() {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background.NRGBA()), image.Point{}, draw.Src)
	}
	return canvas
}

// byDepth returns objs ordered by depth. Objects sharing a depth keep insertion order.
func byDepth(objs []*PlacedObject) []*PlacedObject {
	ordered := slices.Clone(objs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Depth() < ordered[j].Depth()
	})
	return ordered
}

// composite draws every visible object of the display list onto canvas.
func (s *renderState) composite(canvas *image.RGBA) error {
	for _, obj := range byDepth(s.placed) {
		if obj.ParentClip != s.visible {
			continue
		}
		s.debug("rendering placed object", zap.Stringer("object", obj))
		if err := s.renderObject(canvas, obj.Tag, rootContext(), nil); err != nil {
			return err
		}
	}
	return nil
}

// renderObject draws one placement, recursing into sprite instances. chain holds the
// sprites currently being drawn above this object.
func (s *renderState) renderObject(canvas *image.RGBA, tag *afp.PlaceObjectTag, parent renderContext, chain []ClipID) error {
	if tag.SourceTagID == nil {
		s.debug("nothing to render", zap.Int("object_id", tag.ObjectID))
		return nil
	}

	if blends(tag.MultColor, tag.AddColor) || blends(parent.multColor, parent.addColor) {
		s.log.Warn("unhandled color blend",
			zap.Stringer("mult", colorOrNone(tag.MultColor)),
			zap.Stringer("add", colorOrNone(tag.AddColor)),
			zap.Stringer("inherited_mult", colorOrNone(parent.multColor)),
			zap.Stringer("inherited_add", colorOrNone(parent.addColor)),
		)
	}

	transform := geo.Identity()
	if tag.Transform != nil {
		transform = *tag.Transform
	}
	origin := geo.Origin()
	if tag.RotationOffset != nil {
		origin = *tag.RotationOffset
	}

	// Only the translation part of a transform is drawn.
	if !transform.IsTranslation() {
		s.log.Warn("unhandled affine transformation", zap.Stringer("transform", transform))
	}
	if !parent.transform.IsTranslation() {
		s.log.Warn("unhandled affine transformation", zap.Stringer("transform", parent.transform))
	}
	offset := parent.transform.Multiply(transform).MultiplyPoint(origin.Add(parent.origin).Scale(-1))

	source := *tag.SourceTagID
	shape, ok := s.registered[source]
	if !ok {
		// Not a shape slot, so this is an instance of a sprite.
		inherited := renderContext{
			transform: transform,
			origin:    origin,
			multColor: firstColor(tag.MultColor, parent.multColor),
			addColor:  firstColor(tag.AddColor, parent.addColor),
		}
		return s.renderClip(canvas, ClipID(source), inherited, chain)
	}

	at := offset.Image()
	for i, params := range shape.DrawParams {
		if !params.Flags.Has(afp.DrawInstantiable) {
			s.debug("skipping non-instantiable draw params", zap.String("shape", shape.Name), zap.Int("param", i))
			continue
		}
		if params.Flags.Has(afp.DrawBlend) || params.Flags.Has(afp.DrawUVColor) {
			s.log.Warn("unhandled shape blend or UV coordinate color", zap.String("shape", shape.Name), zap.Int("param", i))
		}
		if !params.Flags.Has(afp.DrawTextured) {
			continue
		}

		texture, ok := s.textures[params.Region]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTextureNotFound, params.Region)
		}
		blit(canvas, texture, at)
	}
	return nil
}

// renderClip draws every object placed by sprite id, in depth order.
func (s *renderState) renderClip(canvas *image.RGBA, id ClipID, ctx renderContext, chain []ClipID) error {
	if slices.Contains(chain, id) {
		return fmt.Errorf("%w: sprite %s via %v", ErrRenderCycle, id, chain)
	}
	if len(chain) >= s.maxNesting {
		return fmt.Errorf("%w: sprite %s at depth %d", ErrNestingTooDeep, id, len(chain))
	}
	chain = append(slices.Clip(chain), id)

	found := false
	for _, obj := range byDepth(s.placed) {
		if obj.ParentClip != id {
			continue
		}
		found = true
		s.debug("rendering sprite object", zap.Stringer("object", obj), zap.Int("nesting", len(chain)))
		if err := s.renderObject(canvas, obj.Tag, ctx, chain); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNoClipChildren, id)
	}
	return nil
}

// blit alpha-composites src onto dst with its top-left corner at at. Parts of src
// left of or above the canvas are trimmed from the source side.
func blit(dst draw.Image, src image.Image, at image.Point) {
	var cutoff image.Point
	if at.X < 0 {
		cutoff.X = -at.X
		at.X = 0
	}
	if at.Y < 0 {
		cutoff.Y = -at.Y
		at.Y = 0
	}

	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size()).Sub(cutoff)}
	draw.Draw(dst, r, src, sb.Min.Add(cutoff), draw.Over)
}

func blends(mult, add *geo.Color) bool {
	return (mult != nil && !mult.IsMultiplyIdentity()) || (add != nil && !add.IsAddIdentity())
}

func firstColor(colors ...*geo.Color) *geo.Color {
	for _, c := range colors {
		if c != nil {
			return c
		}
	}
	return nil
}

type noColor struct{}

func (noColor) String() string { return "none" }

func colorOrNone(c *geo.Color) fmt.Stringer {
	if c == nil {
		return noColor{}
	}
	return *c
}
