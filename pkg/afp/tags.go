// Package afp provides the decoded AFP animation model: tags, frames, containers and shapes.
package afp

import (
	"fmt"

	"github.com/Faultbox/afpkit/pkg/geo"
)

// TagKind identifies the concrete type of a Tag.
type TagKind uint8

// Tag kinds understood by the renderer.
const (
	KindShape TagKind = iota + 1
	KindDefineSprite
	KindPlaceObject
	KindRemoveObject
	KindDoAction
	KindDefineFont
	KindDefineEditText
)

// String returns a readable name for the kind.
func (k TagKind) String() string {
	switch k {
	case KindShape:
		return "SHAPE"
	case KindDefineSprite:
		return "DEFINE_SPRITE"
	case KindPlaceObject:
		return "PLACE_OBJECT"
	case KindRemoveObject:
		return "REMOVE_OBJECT"
	case KindDoAction:
		return "DO_ACTION"
	case KindDefineFont:
		return "DEFINE_FONT"
	case KindDefineEditText:
		return "DEFINE_EDIT_TEXT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

// Tag is one decoded instruction of a timeline. The set of implementations is closed.
type Tag interface {
	Kind() TagKind
	isTag()
}

// Frame is a range of tags executed together on one tick of a timeline.
type Frame struct {
	StartTagOffset int `yaml:"start"`
	NumTags        int `yaml:"count"`
}

// Slice returns the tags belonging to f. It panics if f is out of range;
// containers validate frame ranges in Parse.
func (f Frame) Slice(tags []Tag) []Tag {
	return tags[f.StartTagOffset : f.StartTagOffset+f.NumTags]
}

// ShapeTag loads a named shape into a numbered shape slot.
type ShapeTag struct {
	ID        int
	Reference string
}

// DefineSpriteTag defines an embedded movie clip with its own timeline.
type DefineSpriteTag struct {
	ID     int
	Frames []Frame
	Tags   []Tag
}

// PlaceObjectTag places a shape or sprite on a depth, or updates an existing placement.
// Nil pointer fields are absent in the source data.
type PlaceObjectTag struct {
	ObjectID       int
	Depth          int
	SourceTagID    *int
	Update         bool
	Transform      *geo.Matrix
	RotationOffset *geo.Point
	MultColor      *geo.Color
	AddColor       *geo.Color
}

// RemoveObjectTag removes a placed object. An ObjectID of 0 removes the most recently
// placed object on Depth.
type RemoveObjectTag struct {
	ObjectID int
	Depth    int
}

// DoActionTag carries bytecode; it is never executed.
type DoActionTag struct {
	Bytecode []byte
}

// DefineFontTag defines a font; text rendering is not supported.
type DefineFontTag struct {
	ID int
}

// DefineEditTextTag defines a text field; text rendering is not supported.
type DefineEditTextTag struct {
	ID int
}

func (*ShapeTag) Kind() TagKind          { return KindShape }
func (*DefineSpriteTag) Kind() TagKind   { return KindDefineSprite }
func (*PlaceObjectTag) Kind() TagKind    { return KindPlaceObject }
func (*RemoveObjectTag) Kind() TagKind   { return KindRemoveObject }
func (*DoActionTag) Kind() TagKind       { return KindDoAction }
func (*DefineFontTag) Kind() TagKind     { return KindDefineFont }
func (*DefineEditTextTag) Kind() TagKind { return KindDefineEditText }

func (*ShapeTag) isTag()          {}
func (*DefineSpriteTag) isTag()   {}
func (*PlaceObjectTag) isTag()    {}
func (*RemoveObjectTag) isTag()   {}
func (*DoActionTag) isTag()       {}
func (*DefineFontTag) isTag()     {}
func (*DefineEditTextTag) isTag() {}

// Clone returns a copy of t whose optional fields no longer alias t's.
func (t *PlaceObjectTag) Clone() *PlaceObjectTag {
	c := *t
	if t.SourceTagID != nil {
		id := *t.SourceTagID
		c.SourceTagID = &id
	}
	if t.Transform != nil {
		m := *t.Transform
		c.Transform = &m
	}
	if t.RotationOffset != nil {
		p := *t.RotationOffset
		c.RotationOffset = &p
	}
	if t.MultColor != nil {
		col := *t.MultColor
		c.MultColor = &col
	}
	if t.AddColor != nil {
		col := *t.AddColor
		c.AddColor = &col
	}
	return &c
}

// Overlay copies every field present on update into t. The source reference is
// never changed by an update.
func (t *PlaceObjectTag) Overlay(update *PlaceObjectTag) {
	u := update.Clone()
	if u.Transform != nil {
		t.Transform = u.Transform
	}
	if u.RotationOffset != nil {
		t.RotationOffset = u.RotationOffset
	}
	if u.MultColor != nil {
		t.MultColor = u.MultColor
	}
	if u.AddColor != nil {
		t.AddColor = u.AddColor
	}
}
