// Package precinct normalizes raw precinct records into canonical
// precinct entities and their consolidation groups.
package precinct

import (
	"fmt"
	"log"
	"sort"

	"github.com/OSVTAC/osv-data-converter/idpat"
)

// Record is one raw precinct line from the source export. The same
// precinct may arrive once per ballot type.
type Record struct {
	ID          string
	Name        string
	BallotType  string
	DistrictIDs []string
}

// Precinct is a normalized precinct entity.
type Precinct struct {
	// ID is the full canonical precinct ID (base plus split suffix).
	ID string
	// BaseID is the precinct ID with any split suffix removed.
	BaseID string
	// SplitSuffix distinguishes splits of the same base. Empty when the
	// precinct is unsplit.
	SplitSuffix string
	Name        string
	// ConsID is the consolidated (reporting) precinct this precinct
	// subtotals into. Never empty.
	ConsID      string
	BallotTypes []string
	DistrictIDs []string
}

// Consolidation groups the precincts reporting under one subtotal.
type Consolidation struct {
	ID string
	// Name is the name of the member matching the consolidation ID, or
	// the ID itself for table-defined groups.
	Name        string
	PrecinctIDs []string
}

// DuplicateError reports a precinct ID defined twice with conflicting
// data.
type DuplicateError struct {
	ID    string
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate precinct [%s]: conflicting %s between source records", e.ID, e.Field)
}

// OrphanSplitError reports a split suffix the configured pattern marks
// invalid.
type OrphanSplitError struct {
	ID     string
	Suffix string
}

func (e *OrphanSplitError) Error() string {
	return fmt.Sprintf("precinct [%s]: split suffix [%s] is not valid for the configured split pattern", e.ID, e.Suffix)
}

// Normalize derives canonical precincts and consolidation groups from
// raw records. It is a pure transformation: everything is collected
// before any validation fires, so diagnostics do not depend on record
// order, and on error no partial result is returned.
func Normalize(records []Record, consTable map[string]string, rule *idpat.Rule) ([]Precinct, []Consolidation, error) {
	byID := make(map[string]*Precinct)
	var order []string
	collapsed := 0
	var conflicts []*DuplicateError
	for _, rec := range records {
		p, seen := byID[rec.ID]
		if !seen {
			byID[rec.ID] = &Precinct{
				ID:          rec.ID,
				Name:        rec.Name,
				DistrictIDs: append([]string(nil), rec.DistrictIDs...),
				BallotTypes: ballotTypes(rec.BallotType),
			}
			order = append(order, rec.ID)
			continue
		}
		collapsed++
		if p.Name != rec.Name {
			conflicts = append(conflicts, &DuplicateError{ID: rec.ID, Field: "precinct_name"})
			continue
		}
		if !sameDistricts(p.DistrictIDs, rec.DistrictIDs) {
			conflicts = append(conflicts, &DuplicateError{ID: rec.ID, Field: "district composition"})
			continue
		}
		if rec.BallotType != "" && !contains(p.BallotTypes, rec.BallotType) {
			p.BallotTypes = append(p.BallotTypes, rec.BallotType)
		}
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].ID < conflicts[j].ID })
		return nil, nil, conflicts[0]
	}
	var orphans []*OrphanSplitError
	for _, id := range order {
		p := byID[id]
		base, suffix, err := rule.Split(p.ID)
		if err != nil {
			return nil, nil, err
		}
		if !rule.ValidSuffix(suffix) {
			orphans = append(orphans, &OrphanSplitError{ID: p.ID, Suffix: suffix})
			continue
		}
		p.BaseID = base
		p.SplitSuffix = suffix
		if cons, ok := consTable[base]; ok {
			p.ConsID = cons
		} else {
			p.ConsID = base
		}
	}
	if len(orphans) > 0 {
		sort.Slice(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
		return nil, nil, orphans[0]
	}
	precincts := make([]Precinct, 0, len(order))
	for _, id := range order {
		precincts = append(precincts, *byID[id])
	}
	sort.Slice(precincts, func(i, j int) bool { return precincts[i].ID < precincts[j].ID })
	log.Printf("precinct records [%d], collapsed duplicate lines [%d], precincts [%d]\n", len(records), collapsed, len(precincts))
	return precincts, consolidate(precincts), nil
}

func consolidate(precincts []Precinct) []Consolidation {
	byID := make(map[string]*Consolidation)
	var order []string
	for _, p := range precincts {
		c, ok := byID[p.ConsID]
		if !ok {
			c = &Consolidation{ID: p.ConsID, Name: p.ConsID}
			byID[p.ConsID] = c
			order = append(order, p.ConsID)
		}
		if p.ID == p.ConsID {
			c.Name = p.Name
		}
		c.PrecinctIDs = append(c.PrecinctIDs, p.ID)
	}
	sort.Strings(order)
	groups := make([]Consolidation, 0, len(order))
	for _, id := range order {
		c := byID[id]
		sort.Strings(c.PrecinctIDs)
		groups = append(groups, *c)
	}
	return groups
}

func ballotTypes(bt string) []string {
	if bt == "" {
		return nil
	}
	return []string{bt}
}

func sameDistricts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
