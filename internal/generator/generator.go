// Package generator turns bundle and field metadata into a NamespaceGroup of
// stub classes ready for rendering.
//
// The pipeline is single-pass and synchronous:
//
//	SplitList -> collectBundles -> SplitQualifiedName -> exclusion check -> extractFields -> NamespaceGroup
//
// Excluded classes are filtered before their field definitions are fetched,
// so they never cost a field lookup.
package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fmacia/subclass-ide-helper/internal/registry"
	"github.com/fmacia/subclass-ide-helper/internal/typeddata"
)

// Generator builds NamespaceGroups from a metadata source.
type Generator struct {
	source  registry.Source
	factory typeddata.Factory
	logger  *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithFactory replaces the typed data factory.
func WithFactory(f typeddata.Factory) Option {
	return func(g *Generator) {
		if f != nil {
			g.factory = f
		}
	}
}

// WithLogger sets the logger used for skip and exclusion decisions.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generator reading from source.
func New(source registry.Source, opts ...Option) *Generator {
	g := &Generator{
		source:  source,
		factory: typeddata.NewManager(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate collects the property lines of every subclassed bundle of the
// given entity types, skipping classes whose short name is excluded.
func (g *Generator) Generate(ctx context.Context, entityTypes, excludedClasses []string) (*NamespaceGroup, error) {
	excluded := NewClassSet(excludedClasses)
	group := NewNamespaceGroup()

	for _, entityType := range entityTypes {
		bundles, err := g.collectBundles(ctx, entityType)
		if err != nil {
			return nil, err
		}

		for _, bundle := range bundles {
			if excluded.Excludes(bundle.Class) {
				g.logger.Debug("skipping excluded class",
					zap.String("entity_type", entityType),
					zap.String("bundle", bundle.Name),
					zap.String("class", bundle.Class),
				)
				continue
			}

			lines, err := g.extractFields(ctx, entityType, bundle.Name)
			if err != nil {
				return nil, err
			}
			if len(lines) == 0 {
				continue
			}

			namespace, className := SplitQualifiedName(bundle.Class)
			group.Append(namespace, className, lines...)
		}
	}

	g.logger.Debug("generated stub classes",
		zap.Int("namespaces", len(group.Namespaces)),
		zap.Int("classes", group.ClassCount()),
	)

	return group, nil
}

// collectBundles returns the bundles of an entity type that are backed by a
// class. Bundles without a class are dropped here.
func (g *Generator) collectBundles(ctx context.Context, entityType registry.EntityTypeID) ([]registry.Bundle, error) {
	bundles, err := g.source.BundleInfo(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles of %q: %w", entityType, err)
	}

	subclassed := make([]registry.Bundle, 0, len(bundles))
	for _, b := range bundles {
		if !b.HasClass() {
			g.logger.Debug("skipping bundle without class",
				zap.String("entity_type", entityType),
				zap.String("bundle", b.Name),
			)
			continue
		}
		subclassed = append(subclassed, b)
	}
	return subclassed, nil
}

// extractFields builds one PropertyLine per configurable field of a bundle,
// in the order the source returns the definitions.
func (g *Generator) extractFields(ctx context.Context, entityType registry.EntityTypeID, bundle string) ([]PropertyLine, error) {
	defs, err := g.source.FieldDefinitions(ctx, entityType, bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields of %s.%s: %w", entityType, bundle, err)
	}

	lines := make([]PropertyLine, 0, len(defs))
	for _, def := range defs {
		field, ok := def.(registry.ConfigurableField)
		if !ok {
			continue
		}

		lines = append(lines, PropertyLine{
			RuntimeType: g.factory.Create(field).RuntimeType(),
			Nullable:    !field.IsRequired(),
			Field:       field.Name(),
			Label:       field.Label(),
		})
	}
	return lines, nil
}
