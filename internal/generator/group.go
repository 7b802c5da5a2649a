package generator

import "fmt"

// NullableMarker is appended to the runtime type of optional fields.
const NullableMarker = "|null"

// PropertyLine describes one annotated property of a stub class.
type PropertyLine struct {
	RuntimeType string `json:"runtime_type"` // Resolved typed data class, without leading separator
	Nullable    bool   `json:"nullable"`     // True when the field is not required
	Field       string `json:"field"`        // Field machine name
	Label       string `json:"label"`        // Human readable label
}

// Marker returns NullableMarker for optional fields and "" otherwise.
func (p PropertyLine) Marker() string {
	if p.Nullable {
		return NullableMarker
	}
	return ""
}

// AccessName returns the PHP property access token for the field.
func (p PropertyLine) AccessName() string {
	return "$" + p.Field
}

// String renders the line as `\Type[|null] $field Label`.
func (p PropertyLine) String() string {
	return fmt.Sprintf(`\%s%s %s %s`, p.RuntimeType, p.Marker(), p.AccessName(), p.Label)
}

// Class is a stub class and its property lines in field iteration order.
type Class struct {
	Name       string         `json:"name"`
	Properties []PropertyLine `json:"properties"`
}

// Namespace holds the stub classes of one namespace in first-seen order.
type Namespace struct {
	Name    string   `json:"name"`
	Classes []*Class `json:"classes"`

	index map[string]*Class
}

// Global reports whether this is the global (unnamed) namespace.
func (n *Namespace) Global() bool {
	return n.Name == ""
}

// Class returns the named class, or nil.
func (n *Namespace) Class(name string) *Class {
	return n.index[name]
}

func (n *Namespace) class(name string) *Class {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := &Class{Name: name}
	n.index[name] = c
	n.Classes = append(n.Classes, c)
	return c
}

// NamespaceGroup maps namespace -> class -> property lines. Iteration
// follows insertion order at every level, so rendering is deterministic for
// a deterministic source.
type NamespaceGroup struct {
	Namespaces []*Namespace `json:"namespaces"`

	index map[string]*Namespace
}

// NewNamespaceGroup creates an empty group.
func NewNamespaceGroup() *NamespaceGroup {
	return &NamespaceGroup{index: make(map[string]*Namespace)}
}

// Touch makes sure the (namespace, class) pair exists, even without lines.
func (g *NamespaceGroup) Touch(namespace, class string) *Class {
	ns, ok := g.index[namespace]
	if !ok {
		ns = &Namespace{Name: namespace, index: make(map[string]*Class)}
		g.index[namespace] = ns
		g.Namespaces = append(g.Namespaces, ns)
	}
	return ns.class(class)
}

// Append adds lines to a class. Lines from several bundles mapping to the
// same class are concatenated in call order.
func (g *NamespaceGroup) Append(namespace, class string, lines ...PropertyLine) {
	c := g.Touch(namespace, class)
	c.Properties = append(c.Properties, lines...)
}

// Namespace returns the named namespace, or nil.
func (g *NamespaceGroup) Namespace(name string) *Namespace {
	return g.index[name]
}

// Lines returns the rendered property lines of a class, or nil.
func (g *NamespaceGroup) Lines(namespace, class string) []string {
	ns := g.Namespace(namespace)
	if ns == nil {
		return nil
	}
	c := ns.Class(class)
	if c == nil {
		return nil
	}
	lines := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		lines[i] = p.String()
	}
	return lines
}

// ClassCount returns the number of classes over all namespaces.
func (g *NamespaceGroup) ClassCount() int {
	count := 0
	for _, ns := range g.Namespaces {
		count += len(ns.Classes)
	}
	return count
}

// Empty reports whether the group holds no classes.
func (g *NamespaceGroup) Empty() bool {
	return len(g.Namespaces) == 0
}
