package generator

import "strings"

// ListSeparator separates entity types and excluded class names on input.
const ListSeparator = ","

// SplitList splits a comma separated list and trims every token. Empty
// tokens and duplicates are kept, so "" yields [""]; downstream lookups
// treat such tokens as unknown and return nothing.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ListSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// JoinList is the inverse of SplitList for already trimmed tokens.
func JoinList(tokens []string) string {
	return strings.Join(tokens, ListSeparator)
}

// ClassSet holds excluded class names. Names are short class names, matched
// case-sensitively against the last segment of a qualified class.
type ClassSet map[string]struct{}

// NewClassSet indexes names, typically the result of SplitList.
func NewClassSet(names []string) ClassSet {
	set := make(ClassSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether the short class name is in the set.
func (s ClassSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Excludes reports whether the short name of a qualified class is in the set.
func (s ClassSet) Excludes(qualifiedClass string) bool {
	_, className := SplitQualifiedName(qualifiedClass)
	return s.Has(className)
}
