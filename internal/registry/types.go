// Package registry provides read-only access to entity bundle and field
// definition metadata exported from a content-management site.
package registry

import (
	"context"
	"errors"
)

var (
	// ErrUnknownSourceKind is returned when a source kind is not recognised
	ErrUnknownSourceKind = errors.New("unknown metadata source kind")

	// ErrUnsupportedDriver is returned when a database driver is not compiled in
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// EntityTypeID identifies a content entity type (e.g. "node", "taxonomy_term").
type EntityTypeID = string

// Bundle describes one bundle of an entity type.
type Bundle struct {
	Name  string `yaml:"name" json:"name"`   // Bundle machine name
	Class string `yaml:"class" json:"class"` // Fully-qualified backing class, empty when not subclassed
}

// HasClass reports whether the bundle is backed by its own class.
func (b Bundle) HasClass() bool {
	return b.Class != ""
}

// FieldDefinition is the minimum every field definition exposes,
// base fields included.
type FieldDefinition interface {
	// Name returns the field machine name
	Name() string
	// Type returns the field type plugin id (e.g. "string", "entity_reference")
	Type() string
	// ListClass returns the item list class declared by the definition, if any
	ListClass() string
}

// ConfigurableField is implemented by field definitions that are attached
// per bundle through configuration rather than baked into the entity schema.
type ConfigurableField interface {
	FieldDefinition
	IsRequired() bool
	Label() string
	TargetBundle() string
}

// BaseField is a field provided by the entity type itself.
type BaseField struct {
	FieldName string
	FieldType string
	ItemList  string
}

func (f *BaseField) Name() string      { return f.FieldName }
func (f *BaseField) Type() string      { return f.FieldType }
func (f *BaseField) ListClass() string { return f.ItemList }

// FieldConfig is a configurable field attached to a single bundle.
type FieldConfig struct {
	FieldName  string
	FieldType  string
	ItemList   string
	FieldLabel string
	Required   bool
	Bundle     string
}

func (f *FieldConfig) Name() string         { return f.FieldName }
func (f *FieldConfig) Type() string         { return f.FieldType }
func (f *FieldConfig) ListClass() string    { return f.ItemList }
func (f *FieldConfig) IsRequired() bool     { return f.Required }
func (f *FieldConfig) Label() string        { return f.FieldLabel }
func (f *FieldConfig) TargetBundle() string { return f.Bundle }

// BundleInfo lists the bundles of an entity type. Unknown entity types yield
// an empty result, not an error. The returned order is the iteration order
// of the underlying source and callers must not rely on any other order.
type BundleInfo interface {
	BundleInfo(ctx context.Context, entityType EntityTypeID) ([]Bundle, error)
}

// FieldDefinitions lists the field definitions of a bundle in source order.
// Unknown entity types or bundles yield an empty result.
type FieldDefinitions interface {
	FieldDefinitions(ctx context.Context, entityType EntityTypeID, bundle string) ([]FieldDefinition, error)
}

// Source combines both lookups.
type Source interface {
	BundleInfo
	FieldDefinitions
}
