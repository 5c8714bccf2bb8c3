package afp

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/afpkit/pkg/geo"
)

// Shape validation errors.
var (
	ErrEmptyShape    = errors.New("shape has no draw parameters")
	ErrMissingRegion = errors.New("textured draw parameter has no region")
)

// DrawFlag describes how a draw parameter is rendered.
type DrawFlag uint32

// Draw parameter flags.
const (
	DrawInstantiable DrawFlag = 0x1
	DrawTextured     DrawFlag = 0x2
	DrawBlend        DrawFlag = 0x4
	DrawUVColor      DrawFlag = 0x8
)

// Has reports whether all bits of flag are set.
func (f DrawFlag) Has(flag DrawFlag) bool {
	return f&flag == flag
}

// DrawParams is one drawable piece of a shape.
type DrawParams struct {
	Flags      DrawFlag
	Region     string     // texture region name, used when DrawTextured is set
	BlendColor *geo.Color // used when DrawBlend is set
}

// Shape is a pre-parsed vector shape referenced by ShapeTags.
type Shape struct {
	Name       string
	DrawParams []DrawParams

	parsed bool
}

// Parsed reports whether Parse has completed successfully.
func (s *Shape) Parsed() bool {
	return s.parsed
}

// Parse validates the draw parameters once.
func (s *Shape) Parse() error {
	if s.parsed {
		return nil
	}

	var err error
	if len(s.DrawParams) == 0 {
		err = multierr.Append(err, ErrEmptyShape)
	}
	for i, p := range s.DrawParams {
		if p.Flags.Has(DrawTextured) && p.Region == "" {
			err = multierr.Append(err, fmt.Errorf("%w: param %d", ErrMissingRegion, i))
		}
	}

	if err != nil {
		return fmt.Errorf("shape %s: %w", s.Name, err)
	}
	s.parsed = true
	return nil
}
