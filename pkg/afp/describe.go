package afp

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/afpkit/pkg/geo"
)

// ErrUnknownTagKind is returned when a described tag names a kind that does not exist.
var ErrUnknownTagKind = errors.New("unknown tag kind")

// TagList is a tag sequence that decodes from YAML using a "kind" discriminator:
//
//	- kind: shape      # id, reference
//	- kind: sprite     # id, frames, tags
//	- kind: place      # object_id, depth, source, transform, rotation_offset, mult_color, add_color
//	- kind: update     # same fields as place
//	- kind: remove     # object_id, depth
//	- kind: action
//	- kind: font       # id
//	- kind: edit_text  # id
type TagList []Tag

type tagDesc struct {
	Kind           string      `yaml:"kind"`
	ID             int         `yaml:"id"`
	Reference      string      `yaml:"reference"`
	ObjectID       int         `yaml:"object_id"`
	Depth          int         `yaml:"depth"`
	Source         *int        `yaml:"source"`
	Transform      *matrixDesc `yaml:"transform"`
	RotationOffset *geo.Point  `yaml:"rotation_offset"`
	MultColor      *geo.Color  `yaml:"mult_color"`
	AddColor       *geo.Color  `yaml:"add_color"`
	Frames         []Frame     `yaml:"frames"`
	Tags           TagList     `yaml:"tags"`
}

// matrixDesc defaults omitted scale components to 1 so that a bare
// {tx: 10, ty: 5} describes a translation.
type matrixDesc struct {
	A  *float64 `yaml:"a"`
	B  float64  `yaml:"b"`
	C  float64  `yaml:"c"`
	D  *float64 `yaml:"d"`
	TX float64  `yaml:"tx"`
	TY float64  `yaml:"ty"`
}

func (d *matrixDesc) matrix() *geo.Matrix {
	if d == nil {
		return nil
	}
	m := geo.Matrix{A: 1, B: d.B, C: d.C, D: 1, TX: d.TX, TY: d.TY}
	if d.A != nil {
		m.A = *d.A
	}
	if d.D != nil {
		m.D = *d.D
	}
	return &m
}

// UnmarshalYAML decodes a sequence of described tags.
func (l *TagList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: tags must be a sequence", value.Line)
	}

	tags := make(TagList, 0, len(value.Content))
	for i, item := range value.Content {
		var d tagDesc
		if err := item.Decode(&d); err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}
		tag, err := d.tag()
		if err != nil {
			return fmt.Errorf("line %d: tag %d: %w", item.Line, i, err)
		}
		tags = append(tags, tag)
	}
	*l = tags
	return nil
}

func (d *tagDesc) tag() (Tag, error) {
	switch d.Kind {
	case "shape":
		return &ShapeTag{ID: d.ID, Reference: d.Reference}, nil
	case "sprite":
		return &DefineSpriteTag{ID: d.ID, Frames: d.Frames, Tags: d.Tags}, nil
	case "place", "update":
		return &PlaceObjectTag{
			ObjectID:       d.ObjectID,
			Depth:          d.Depth,
			SourceTagID:    d.Source,
			Update:         d.Kind == "update",
			Transform:      d.Transform.matrix(),
			RotationOffset: d.RotationOffset,
			MultColor:      d.MultColor,
			AddColor:       d.AddColor,
		}, nil
	case "remove":
		return &RemoveObjectTag{ObjectID: d.ObjectID, Depth: d.Depth}, nil
	case "action":
		return &DoActionTag{}, nil
	case "font":
		return &DefineFontTag{ID: d.ID}, nil
	case "edit_text":
		return &DefineEditTextTag{ID: d.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTagKind, d.Kind)
	}
}

type containerDesc struct {
	Name       string         `yaml:"name"`
	FPS        float64        `yaml:"fps"`
	Location   Rect           `yaml:"location"`
	Background *geo.Color     `yaml:"background"`
	Exports    map[string]int `yaml:"exports"`
	Frames     []Frame        `yaml:"frames"`
	Tags       TagList        `yaml:"tags"`
}

// UnmarshalYAML decodes a described container. The result still needs Parse.
func (c *Container) UnmarshalYAML(value *yaml.Node) error {
	var d containerDesc
	if err := value.Decode(&d); err != nil {
		return err
	}
	*c = Container{
		ExportedName: d.Name,
		FPS:          d.FPS,
		Location:     d.Location,
		Color:        d.Background,
		Frames:       d.Frames,
		Tags:         d.Tags,
		ExportedTags: d.Exports,
	}
	return nil
}

type drawParamsDesc struct {
	Flags      uint32     `yaml:"flags"`
	Region     string     `yaml:"region"`
	BlendColor *geo.Color `yaml:"blend_color"`
}

type shapeDesc struct {
	Name       string           `yaml:"name"`
	DrawParams []drawParamsDesc `yaml:"draw_params"`
}

// UnmarshalYAML decodes a described shape. The result still needs Parse.
func (s *Shape) UnmarshalYAML(value *yaml.Node) error {
	var d shapeDesc
	if err := value.Decode(&d); err != nil {
		return err
	}
	*s = Shape{Name: d.Name, DrawParams: make([]DrawParams, 0, len(d.DrawParams))}
	for _, p := range d.DrawParams {
		s.DrawParams = append(s.DrawParams, DrawParams{
			Flags:      DrawFlag(p.Flags),
			Region:     p.Region,
			BlendColor: p.BlendColor,
		})
	}
	return nil
}

// ParseContainer decodes and validates a container description.
func ParseContainer(data []byte) (*Container, error) {
	var c Container
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding container: %w", err)
	}
	if err := c.Parse(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseContainerFile decodes and validates a container description from disk.
func ParseContainerFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading container file: %w", err)
	}
	return ParseContainer(data)
}
