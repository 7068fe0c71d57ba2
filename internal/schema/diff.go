// Package schema compares source schema snapshots by field name.
package schema

import "sort"

// Diff reports the field names present in new but not old (added) and
// in old but not new (removed). Field identity is by name only; each
// list is treated as a set, so duplicates collapse and order is
// irrelevant. The result slices are sorted for stable output.
type Diff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// FieldDiff compares two field-name collections. It is total: nil or
// empty inputs yield empty (non-nil) result slices.
func FieldDiff(oldFields, newFields []string) Diff {
	oldSet := toSet(oldFields)
	newSet := toSet(newFields)

	added := []string{}
	for f := range newSet {
		if _, ok := oldSet[f]; !ok {
			added = append(added, f)
		}
	}

	removed := []string{}
	for f := range oldSet {
		if _, ok := newSet[f]; !ok {
			removed = append(removed, f)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)

	return Diff{Added: added, Removed: removed}
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
