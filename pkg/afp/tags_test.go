package afp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/afpkit/pkg/geo"
)

func TestOverlayKeepsOmittedFields(t *testing.T) {
	source := 4
	placed := &PlaceObjectTag{
		ObjectID:    1,
		Depth:       2,
		SourceTagID: &source,
		MultColor:   &geo.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		AddColor:    &geo.Color{R: 0.1},
	}
	other := 9
	update := &PlaceObjectTag{
		ObjectID:    1,
		Depth:       2,
		Update:      true,
		SourceTagID: &other,
		Transform:   &geo.Matrix{A: 1, D: 1, TX: 3, TY: 4},
	}

	placed.Overlay(update)

	assert.Equal(t, geo.Translate(3, 4), *placed.Transform)
	assert.Equal(t, geo.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}, *placed.MultColor)
	assert.Equal(t, geo.Color{R: 0.1}, *placed.AddColor)
	assert.Equal(t, 4, *placed.SourceTagID, "update must not change the source reference")
	assert.False(t, placed.Update)

	// The overlaid values must not alias the update tag.
	update.Transform.TX = 100
	assert.Equal(t, 3.0, placed.Transform.TX)
}

func TestCloneDoesNotAlias(t *testing.T) {
	source := 1
	orig := &PlaceObjectTag{SourceTagID: &source, RotationOffset: &geo.Point{X: 1, Y: 2}}
	c := orig.Clone()
	*c.SourceTagID = 5
	c.RotationOffset.X = 9

	assert.Equal(t, 1, *orig.SourceTagID)
	assert.Equal(t, 1.0, orig.RotationOffset.X)
}

func TestTagKindString(t *testing.T) {
	assert.Equal(t, "PLACE_OBJECT", (&PlaceObjectTag{}).Kind().String())
	assert.Equal(t, "DEFINE_EDIT_TEXT", KindDefineEditText.String())
	assert.Equal(t, "UNKNOWN(99)", TagKind(99).String())
}

func TestFrameSlice(t *testing.T) {
	tags := []Tag{&ShapeTag{ID: 1}, &ShapeTag{ID: 2}, &ShapeTag{ID: 3}}
	got := Frame{StartTagOffset: 1, NumTags: 2}.Slice(tags)
	assert.Equal(t, []Tag{tags[1], tags[2]}, got)
	assert.Empty(t, Frame{StartTagOffset: 3}.Slice(tags))
}
