// Package codeelement models the platform's classification codes and turns the
// flat, parent-referencing list served by the API into a forest.
package codeelement

import (
	"strings"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/entityid"
)

// Hierarchy kinds that mark a module's kind/type classification.
const (
	HierarchySortKindAndType = "SortKindAndType"
	HierarchyKindAndType     = "KindAndType"
)

var recognizedHierarchies = []string{HierarchySortKindAndType, HierarchyKindAndType}

type CodeElement struct {
	ID            entityid.ID  `json:"id"`
	ParentID      *entityid.ID `json:"parentId,omitempty"`
	Code          string       `json:"code,omitempty"`
	Name          string       `json:"name"`
	HierarchyType string       `json:"hierarchyType,omitempty"`
}

// HasParent reports whether the element references a parent. A null or empty
// parentId counts as no parent.
func (c CodeElement) HasParent() bool {
	return c.ParentID != nil && !c.ParentID.IsZero()
}

// IsRoot reports whether the element starts a classification tree.
func (c CodeElement) IsRoot() bool {
	return !c.HasParent() && strings.TrimSpace(c.Code) != ""
}

// MetadataEntry is one value of the per-module metadata mapping.
type MetadataEntry struct {
	HierarchyType string `json:"hierarchyType"`
}

// ModuleMetadata maps a category code to its metadata for one module.
type ModuleMetadata map[string]MetadataEntry

// IsRecognizedHierarchy reports whether t is a kind/type hierarchy label.
func IsRecognizedHierarchy(t string) bool {
	for _, h := range recognizedHierarchies {
		if t == h {
			return true
		}
	}
	return false
}

// RecognizedHierarchies returns the hierarchy labels accepted for category lookup.
func RecognizedHierarchies() []string {
	return append([]string(nil), recognizedHierarchies...)
}
