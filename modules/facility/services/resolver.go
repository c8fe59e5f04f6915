package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/codeelement"
	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/masterdata"
)

const maxSuggestions = 3

// FindFirst returns the earliest item in items that satisfies match.
func FindFirst[T any](items []T, match func(T) bool) (T, bool) {
	for _, it := range items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// ResolutionError reports a required lookup that matched nothing, or a
// structural precondition that did not hold. The looked-up value is echoed.
type ResolutionError struct {
	Entity      string
	Field       string
	Value       string
	Reason      string
	Searched    int
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	if e.Reason != "" {
		fmt.Fprintf(&b, "%s %s=%q: %s", e.Entity, e.Field, e.Value, e.Reason)
	} else {
		fmt.Fprintf(&b, "%s with %s=%q not found (searched %d)", e.Entity, e.Field, e.Value, e.Searched)
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("; did you mean ")
		for i, s := range e.Suggestions {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", s)
		}
	}
	return b.String()
}

func notFound(entity, field, value string, candidates []string) *ResolutionError {
	return &ResolutionError{
		Entity:      entity,
		Field:       field,
		Value:       value,
		Searched:    len(candidates),
		Suggestions: suggest(value, candidates),
	}
}

// suggest ranks candidates close to value: fuzzy containment first, then
// small edit distance.
func suggest(value string, candidates []string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	type scored struct {
		name string
		dist int
	}
	threshold := len([]rune(value)) / 3
	if threshold < 2 {
		threshold = 2
	}
	seen := make(map[string]struct{}, len(candidates))
	var hits []scored
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		d := fuzzy.LevenshteinDistance(strings.ToLower(value), strings.ToLower(c))
		if fuzzy.MatchNormalizedFold(value, c) || fuzzy.MatchNormalizedFold(c, value) || d <= threshold {
			hits = append(hits, scored{name: c, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(hits) && i < maxSuggestions; i++ {
		out = append(out, hits[i].name)
	}
	return out
}

func ResolveNotifier(employees []masterdata.Employee, userName string) (masterdata.Employee, error) {
	e, ok := FindFirst(employees, func(e masterdata.Employee) bool { return e.UserName == userName })
	if !ok {
		names := make([]string, 0, len(employees))
		for _, e := range employees {
			names = append(names, e.UserName)
		}
		return masterdata.Employee{}, notFound("employee", "userName", userName, names)
	}
	return e, nil
}

func ResolveSubject(equipments []masterdata.Equipment, uniqueNumber string) (masterdata.Equipment, error) {
	e, ok := FindFirst(equipments, func(e masterdata.Equipment) bool { return e.UniqueNumber == uniqueNumber })
	if !ok {
		numbers := make([]string, 0, len(equipments))
		for _, e := range equipments {
			numbers = append(numbers, e.UniqueNumber)
		}
		return masterdata.Equipment{}, notFound("equipment", "uniqueNumber", uniqueNumber, numbers)
	}
	return e, nil
}

// ResolveModuleRoot picks the forest root carrying the module's category code.
func ResolveModuleRoot(roots []*codeelement.Node, categoryCode string) (*codeelement.Node, error) {
	n, ok := FindFirst(roots, func(n *codeelement.Node) bool { return n.Code == categoryCode })
	if !ok {
		codes := make([]string, 0, len(roots))
		for _, r := range roots {
			codes = append(codes, r.Code)
		}
		return nil, notFound("category root", "code", categoryCode, codes)
	}
	return n, nil
}

// ResolveKindAndType walks module root -> kind -> grouping -> type. The kind
// must have at least one grouping child; the type is looked up beneath the
// first one.
func ResolveKindAndType(moduleRoot *codeelement.Node, kindName, typeName string) (kind, typ *codeelement.Node, err error) {
	kind, err = childByName(moduleRoot, "kind", kindName)
	if err != nil {
		return nil, nil, err
	}
	if len(kind.Children) == 0 {
		return nil, nil, &ResolutionError{
			Entity: "kind", Field: "name", Value: kindName,
			Reason: "has no grouping level below it",
		}
	}

	typ, err = childByName(kind.Children[0], "type", typeName)
	if err != nil {
		return nil, nil, err
	}
	return kind, typ, nil
}

func childByName(parent *codeelement.Node, entity, name string) (*codeelement.Node, error) {
	n, ok := FindFirst(parent.Children, func(n *codeelement.Node) bool { return n.Name == name })
	if !ok {
		names := make([]string, 0, len(parent.Children))
		for _, c := range parent.Children {
			names = append(names, c.Name)
		}
		return nil, notFound(entity, "name", name, names)
	}
	return n, nil
}
