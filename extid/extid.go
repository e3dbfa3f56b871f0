// Package extid collects external identifier bindings for local
// entities and builds the reverse index downstream result joining runs
// on. Collection and validation are two separate phases so collision
// diagnostics never depend on the order bindings arrive in.
package extid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OSVTAC/osv-data-converter/idpat"
)

// Binding ties one external ID to one local entity.
type Binding struct {
	Kind    string
	LocalID string
	Org     string
	ExtID   string
}

// Resolved is one (organization, external ID) pair produced for a local
// entity.
type Resolved struct {
	Org   string
	ExtID string
}

// CollisionError reports one external ID bound to two different local
// entities.
type CollisionError struct {
	Org    string
	ExtID  string
	KindA  string
	LocalA string
	KindB  string
	LocalB string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("external ID [%s:%s] is bound to both %s [%s] and %s [%s]",
		e.Org, e.ExtID, e.KindA, e.LocalA, e.KindB, e.LocalB)
}

// Resolver accumulates bindings during the collect phase.
type Resolver struct {
	table    *idpat.PrefixTable
	bindings []Binding
}

// NewResolver returns a collector resolving raw external IDs through the
// given prefix table.
func NewResolver(table *idpat.PrefixTable) *Resolver {
	return &Resolver{table: table}
}

// Add resolves a space-separated run of raw external IDs and records
// their bindings to one local entity. An empty field yields an empty
// list, not an error.
func (r *Resolver) Add(kind, localID, rawExtIDs string) ([]Resolved, error) {
	fields := strings.Fields(rawExtIDs)
	if len(fields) == 0 {
		return nil, nil
	}
	resolved := make([]Resolved, 0, len(fields))
	for _, raw := range fields {
		org, local, err := r.table.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("%s [%s]: %w", kind, localID, err)
		}
		resolved = append(resolved, Resolved{Org: org, ExtID: local})
		r.bindings = append(r.bindings, Binding{Kind: kind, LocalID: localID, Org: org, ExtID: local})
	}
	return resolved, nil
}

// Index is the immutable reverse index over all collected bindings.
type Index struct {
	reverse  map[string]Binding
	bindings []Binding
}

// Build validates every collected binding and freezes the reverse
// index. The same external ID bound to two different local entities is
// a CollisionError; re-binding the identical pair collapses silently.
func (r *Resolver) Build() (*Index, error) {
	sorted := append([]Binding(nil), r.bindings...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Org != b.Org {
			return a.Org < b.Org
		}
		if a.ExtID != b.ExtID {
			return a.ExtID < b.ExtID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.LocalID < b.LocalID
	})
	idx := &Index{reverse: make(map[string]Binding)}
	for _, b := range sorted {
		key := reverseKey(b.Org, b.ExtID)
		prev, bound := idx.reverse[key]
		if !bound {
			idx.reverse[key] = b
			idx.bindings = append(idx.bindings, b)
			continue
		}
		if prev.Kind == b.Kind && prev.LocalID == b.LocalID {
			continue
		}
		return nil, &CollisionError{
			Org:    b.Org,
			ExtID:  b.ExtID,
			KindA:  prev.Kind,
			LocalA: prev.LocalID,
			KindB:  b.Kind,
			LocalB: b.LocalID,
		}
	}
	return idx, nil
}

// Lookup resolves one external ID to its local entity.
func (i *Index) Lookup(org, extID string) (string, string, bool) {
	b, ok := i.reverse[reverseKey(org, extID)]
	if !ok {
		return "", "", false
	}
	return b.Kind, b.LocalID, true
}

// Bindings returns every binding in (org, ext ID) order.
func (i *Index) Bindings() []Binding {
	return append([]Binding(nil), i.bindings...)
}

// ByKind returns the bindings of one entity kind in (org, ext ID) order.
func (i *Index) ByKind(kind string) []Binding {
	var out []Binding
	for _, b := range i.bindings {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// LocalIDs returns the local IDs of one entity kind bound under one
// organization, in external ID order.
func (i *Index) LocalIDs(kind, org string) []string {
	var out []string
	for _, b := range i.bindings {
		if b.Kind == kind && b.Org == org {
			out = append(out, b.LocalID)
		}
	}
	return out
}

func reverseKey(org, extID string) string {
	return org + "\x1f" + extID
}
