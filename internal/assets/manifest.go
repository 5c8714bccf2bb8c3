package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/afpkit/pkg/afp"
	"github.com/Faultbox/afpkit/pkg/geo"
)

// ErrInvalidManifest is wrapped by every manifest validation failure.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest lists the files making up one set of renderable assets.
// File paths are relative to the manifest's directory.
type Manifest struct {
	Textures   []TextureEntry   `yaml:"textures"`
	Shapes     []afp.Shape      `yaml:"shapes"`
	Containers []ContainerEntry `yaml:"containers"`
}

// TextureEntry names a bitmap file. ColorKey, when set, is made transparent.
type TextureEntry struct {
	Name      string     `yaml:"name"`
	File      string     `yaml:"file"`
	ColorKey  *geo.Color `yaml:"color_key"`
	Tolerance uint8      `yaml:"tolerance"`
}

// ContainerEntry points at a container description. Name defaults to the file name.
type ContainerEntry struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

func (c ContainerEntry) registrationName() string {
	if c.Name != "" {
		return c.Name
	}
	return filepath.Base(c.File)
}

// ReadManifest decodes and validates a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks names are present and unique.
func (m *Manifest) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidManifest}, args...)...))
	}

	textures := make(map[string]bool, len(m.Textures))
	for i, t := range m.Textures {
		switch {
		case t.Name == "":
			invalid("texture %d has no name", i)
		case textures[t.Name]:
			invalid("texture %q listed twice", t.Name)
		}
		if t.File == "" {
			invalid("texture %q has no file", t.Name)
		}
		textures[t.Name] = true
	}

	shapes := make(map[string]bool, len(m.Shapes))
	for i, s := range m.Shapes {
		switch {
		case s.Name == "":
			invalid("shape %d has no name", i)
		case shapes[s.Name]:
			invalid("shape %q listed twice", s.Name)
		}
		shapes[s.Name] = true
	}

	containers := make(map[string]bool, len(m.Containers))
	for i, c := range m.Containers {
		if c.File == "" {
			invalid("container %d has no file", i)
			continue
		}
		name := c.registrationName()
		if containers[name] {
			invalid("container %q listed twice", name)
		}
		containers[name] = true
	}
	return err
}
