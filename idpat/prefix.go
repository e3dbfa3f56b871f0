package idpat

import "sort"

// UnknownOrg tags external IDs that matched no configured prefix when
// strict resolution is off.
const UnknownOrg = "unknown"

// PrefixTable resolves externally assigned IDs to the issuing
// organization by longest configured prefix.
type PrefixTable struct {
	orgs    map[string]string
	ordered []string
	strict  bool
}

// NewPrefixTable builds a resolver over a prefix to organization mapping.
// With strict set, an ID matching no prefix is an error instead of being
// tagged with the unknown organization.
func NewPrefixTable(prefixes map[string]string, strict bool) *PrefixTable {
	t := &PrefixTable{
		orgs:   make(map[string]string, len(prefixes)),
		strict: strict,
	}
	for p, org := range prefixes {
		t.orgs[p] = org
		t.ordered = append(t.ordered, p)
	}
	// longest prefix wins; equal lengths tie-break lexically so lookups
	// stay deterministic across runs
	sort.Slice(t.ordered, func(i, j int) bool {
		if len(t.ordered[i]) != len(t.ordered[j]) {
			return len(t.ordered[i]) > len(t.ordered[j])
		}
		return t.ordered[i] < t.ordered[j]
	})
	return t
}

// Resolve maps a raw external ID to its organization and local form. IDs
// with no matching prefix keep their full form and resolve to the
// unknown organization, or fail when the table is strict.
func (t *PrefixTable) Resolve(extID string) (string, string, error) {
	for _, p := range t.ordered {
		if len(extID) >= len(p) && extID[:len(p)] == p {
			return t.orgs[p], extID[len(p):], nil
		}
	}
	if t.strict {
		return "", "", &UnknownPrefixError{ID: extID}
	}
	return UnknownOrg, extID, nil
}
