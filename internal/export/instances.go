package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terragen/internal/assets"
	"github.com/Faultbox/terragen/internal/terrain"
)

// Instance is the serialized form of one vegetation placement.
type Instance struct {
	Variant     string     `yaml:"variant"`
	Translation [3]float32 `yaml:"translation"`
	// Rotation is a quaternion in x, y, z, w order.
	Rotation [4]float32 `yaml:"rotation"`
	Scale    float32    `yaml:"scale"`
}

// InstanceList is the document written to the instances file.
type InstanceList struct {
	Seed      uint32     `yaml:"seed"`
	Instances []Instance `yaml:"instances"`
}

// WriteInstances serializes placements to yaml, resolving variant indices to
// their registered names.
func WriteInstances(w io.Writer, placements []terrain.Placement, variants *assets.VariantSet, seed uint32) error {
	list := InstanceList{
		Seed:      seed,
		Instances: make([]Instance, 0, len(placements)),
	}

	for _, p := range placements {
		v, err := variants.Handle(p.Variant)
		if err != nil {
			return fmt.Errorf("exporting instances: %w", err)
		}
		list.Instances = append(list.Instances, Instance{
			Variant:     v.Name,
			Translation: [3]float32{p.Translation.X, p.Translation.Y, p.Translation.Z},
			Rotation:    [4]float32{p.Rotation.X, p.Rotation.Y, p.Rotation.Z, p.Rotation.W},
			Scale:       p.Scale,
		})
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&list); err != nil {
		return fmt.Errorf("encoding instances: %w", err)
	}
	return enc.Close()
}

// WriteInstancesFile writes the instance list to path, creating parent
// directories.
func WriteInstancesFile(path string, placements []terrain.Placement, variants *assets.VariantSet, seed uint32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteInstances(f, placements, variants, seed); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
