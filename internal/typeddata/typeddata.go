// Package typeddata resolves the concrete item list class a field definition
// is instantiated as.
//
// Different field kinds wrap their values in different list classes, so the
// type reported in the generated stubs is the resolved one rather than the
// declared field type.
package typeddata

import (
	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

// Item list classes provided by core and common modules.
const (
	FieldItemList                = `Drupal\Core\Field\FieldItemList`
	EntityReferenceFieldItemList = `Drupal\Core\Field\EntityReferenceFieldItemList`
	FileFieldItemList            = `Drupal\file\Plugin\Field\FieldType\FileFieldItemList`
	CommentFieldItemList         = `Drupal\comment\CommentFieldItemList`
	LayoutSectionItemList        = `Drupal\layout_builder\Field\LayoutSectionItemList`
)

// TypedData is an instantiated wrapper for a field definition.
type TypedData interface {
	// RuntimeType returns the fully-qualified class of the wrapper
	RuntimeType() string
	// Definition returns the definition the wrapper was created for
	Definition() registry.FieldDefinition
}

// Factory creates typed data wrappers for field definitions.
type Factory interface {
	Create(def registry.FieldDefinition) TypedData
}

// ItemList is the typed data wrapper of a field: a list of field items.
type ItemList struct {
	class string
	def   registry.FieldDefinition
}

func (l *ItemList) RuntimeType() string                  { return l.class }
func (l *ItemList) Definition() registry.FieldDefinition { return l.def }

// DefaultListClasses maps field types to the list class their field type
// plugin declares. Types not listed use FieldItemList.
func DefaultListClasses() map[string]string {
	return map[string]string{
		"entity_reference":           EntityReferenceFieldItemList,
		"entity_reference_revisions": EntityReferenceFieldItemList,
		"file":                       FileFieldItemList,
		"image":                      FileFieldItemList,
		"comment":                    CommentFieldItemList,
		"layout_section":             LayoutSectionItemList,
	}
}

// Manager is the default Factory. A definition's own list class wins over
// the per-type table, and the table wins over the default class.
type Manager struct {
	defaultClass string
	listClasses  map[string]string
}

// Option configures a Manager.
type Option func(*Manager)

// WithDefaultListClass overrides the class used for unmapped field types.
func WithDefaultListClass(class string) Option {
	return func(m *Manager) {
		if class != "" {
			m.defaultClass = class
		}
	}
}

// WithListClasses adds or overrides field type mappings.
func WithListClasses(classes map[string]string) Option {
	return func(m *Manager) {
		for fieldType, class := range classes {
			m.listClasses[fieldType] = class
		}
	}
}

// NewManager creates a Manager seeded with DefaultListClasses.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		defaultClass: FieldItemList,
		listClasses:  DefaultListClasses(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create implements Factory.
func (m *Manager) Create(def registry.FieldDefinition) TypedData {
	return &ItemList{class: m.resolve(def), def: def}
}

func (m *Manager) resolve(def registry.FieldDefinition) string {
	if class := def.ListClass(); class != "" {
		return class
	}
	if class, ok := m.listClasses[def.Type()]; ok && class != "" {
		return class
	}
	return m.defaultClass
}
