package render

import (
	"fmt"

	"github.com/Faultbox/afpkit/pkg/afp"
)

// PlacedObject is one display list entry: a shape or sprite instance on a depth.
type PlacedObject struct {
	ParentClip ClipID
	Tag        *afp.PlaceObjectTag
}

// newPlacedObject places a private copy of tag so updates never reach the container.
func newPlacedObject(parent ClipID, tag *afp.PlaceObjectTag) *PlacedObject {
	return &PlacedObject{
		ParentClip: parent,
		Tag:        tag.Clone(),
	}
}

// Depth returns the z-order key.
func (o *PlacedObject) Depth() int {
	return o.Tag.Depth
}

// ObjectID returns the id the object was placed with.
func (o *PlacedObject) ObjectID() int {
	return o.Tag.ObjectID
}

func (o *PlacedObject) String() string {
	return fmt.Sprintf("PlacedObject(parent=%s, object_id=%d, depth=%d)", o.ParentClip, o.ObjectID(), o.Depth())
}
