package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk export of a site's bundle and field metadata.
// YAML and JSON documents are both accepted. Sequences keep the order of the
// site's registries, so no keyed maps are used here.
type Manifest struct {
	EntityTypes []ManifestEntityType `yaml:"entity_types"`
}

// ManifestEntityType lists the bundles of one entity type.
type ManifestEntityType struct {
	ID      EntityTypeID     `yaml:"id"`
	Bundles []ManifestBundle `yaml:"bundles"`
}

// ManifestBundle is a bundle and its field definitions.
type ManifestBundle struct {
	Name   string          `yaml:"name"`
	Class  string          `yaml:"class"`
	Fields []ManifestField `yaml:"fields"`
}

// ManifestField is a single field definition.
type ManifestField struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	ListClass    string `yaml:"list_class"`
	Label        string `yaml:"label"`
	Required     bool   `yaml:"required"`
	Configurable bool   `yaml:"configurable"`
}

// Definition converts the manifest entry into a FieldDefinition. Only
// configurable entries get the ConfigurableField capability.
func (f ManifestField) Definition(bundle string) FieldDefinition {
	if !f.Configurable {
		return &BaseField{FieldName: f.Name, FieldType: f.Type, ItemList: f.ListClass}
	}
	return &FieldConfig{
		FieldName:  f.Name,
		FieldType:  f.Type,
		ItemList:   f.ListClass,
		FieldLabel: f.Label,
		Required:   f.Required,
		Bundle:     bundle,
	}
}

// ParseManifest decodes a manifest document.
func ParseManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if len(bytes.TrimSpace(data)) == 0 {
		return &manifest, nil
	}

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	for i, et := range manifest.EntityTypes {
		if et.ID == "" {
			return nil, fmt.Errorf("entity_types[%d]: id is required", i)
		}
		for j, b := range et.Bundles {
			if b.Name == "" {
				return nil, fmt.Errorf("entity_types[%d] (%s) bundles[%d]: name is required", i, et.ID, j)
			}
			for k, f := range b.Fields {
				if f.Name == "" {
					return nil, fmt.Errorf("%s.%s fields[%d]: name is required", et.ID, b.Name, k)
				}
			}
		}
	}

	return &manifest, nil
}

// Registry loads the manifest into an in-memory registry, preserving the
// document order of entity types, bundles and fields.
func (m *Manifest) Registry() *Memory {
	mem := NewMemory()
	for _, et := range m.EntityTypes {
		for _, b := range et.Bundles {
			mem.AddBundle(et.ID, Bundle{Name: b.Name, Class: b.Class})
			for _, f := range b.Fields {
				mem.AddField(et.ID, b.Name, f.Definition(b.Name))
			}
		}
	}
	return mem
}

// LoadManifest reads a manifest file into an in-memory registry.
func LoadManifest(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	manifest, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest.Registry(), nil
}
