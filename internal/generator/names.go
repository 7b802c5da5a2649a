package generator

import "strings"

// NamespaceSeparator separates PHP namespace segments.
const NamespaceSeparator = `\`

// SplitQualifiedName splits a fully-qualified class name into its namespace
// and short class name. A leading separator is ignored and a name without
// separator belongs to the global namespace "".
func SplitQualifiedName(qualified string) (namespace, class string) {
	qualified = strings.TrimPrefix(qualified, NamespaceSeparator)

	idx := strings.LastIndex(qualified, NamespaceSeparator)
	if idx < 0 {
		return "", qualified
	}
	return qualified[:idx], qualified[idx+len(NamespaceSeparator):]
}
