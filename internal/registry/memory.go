package registry

import (
	"context"
	"sync"
)

// Memory is an in-memory Source. Bundles and fields are returned in the
// order they were added, which makes it the reference implementation of the
// ordering contract for tests and manifest-backed runs.
type Memory struct {
	mu sync.RWMutex

	entityTypes []EntityTypeID
	bundles     map[EntityTypeID][]Bundle
	fields      map[string][]FieldDefinition // entity type + "\x00" + bundle -> fields
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		bundles: make(map[EntityTypeID][]Bundle),
		fields:  make(map[string][]FieldDefinition),
	}
}

func fieldKey(entityType EntityTypeID, bundle string) string {
	return entityType + "\x00" + bundle
}

// AddBundle registers a bundle. Adding a bundle name twice replaces the
// class of the first registration in place.
func (m *Memory) AddBundle(entityType EntityTypeID, bundle Bundle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, known := m.bundles[entityType]
	if !known {
		m.entityTypes = append(m.entityTypes, entityType)
	}
	for i := range existing {
		if existing[i].Name == bundle.Name {
			existing[i].Class = bundle.Class
			return
		}
	}
	m.bundles[entityType] = append(existing, bundle)
}

// AddField appends a field definition to a bundle. A definition with a name
// already present on the bundle replaces the earlier one in place.
func (m *Memory) AddField(entityType EntityTypeID, bundle string, def FieldDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fieldKey(entityType, bundle)
	existing := m.fields[key]
	for i := range existing {
		if existing[i].Name() == def.Name() {
			existing[i] = def
			return
		}
	}
	m.fields[key] = append(existing, def)
}

// EntityTypes returns the entity types in registration order.
func (m *Memory) EntityTypes() []EntityTypeID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]EntityTypeID, len(m.entityTypes))
	copy(result, m.entityTypes)
	return result
}

// BundleInfo implements BundleInfo. Returns a copy to prevent external mutation.
func (m *Memory) BundleInfo(_ context.Context, entityType EntityTypeID) ([]Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bundles := m.bundles[entityType]
	result := make([]Bundle, len(bundles))
	copy(result, bundles)
	return result, nil
}

// FieldDefinitions implements FieldDefinitions.
func (m *Memory) FieldDefinitions(_ context.Context, entityType EntityTypeID, bundle string) ([]FieldDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := m.fields[fieldKey(entityType, bundle)]
	result := make([]FieldDefinition, len(defs))
	copy(result, defs)
	return result, nil
}
