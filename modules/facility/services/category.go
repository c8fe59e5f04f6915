package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
)

// ResolveCategory returns the category code whose metadata marks a kind/type
// hierarchy. Exactly one entry must qualify.
func ResolveCategory(module string, meta codeelement.ModuleMetadata) (string, error) {
	var matches []string
	for code, entry := range meta {
		if codeelement.IsRecognizedHierarchy(entry.HierarchyType) {
			matches = append(matches, code)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &ResolutionError{
			Entity:   "category",
			Field:    "module",
			Value:    module,
			Searched: len(meta),
			Reason: fmt.Sprintf("no metadata entry with hierarchyType in [%s]",
				strings.Join(codeelement.RecognizedHierarchies(), ", ")),
		}
	default:
		return "", &ResolutionError{
			Entity:   "category",
			Field:    "module",
			Value:    module,
			Searched: len(meta),
			Reason:   fmt.Sprintf("ambiguous metadata, %d kind/type entries: %s", len(matches), strings.Join(matches, ", ")),
		}
	}
}
