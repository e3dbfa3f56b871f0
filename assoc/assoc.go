// Package assoc builds the ballot type association tables: which
// precincts vote each ballot type, which contests appear on it and with
// what rotation, plus the contest list and the rotated candidate order.
package assoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OSVTAC/osv-data-converter/emsfile"
	"github.com/OSVTAC/osv-data-converter/precinct"
	"github.com/OSVTAC/osv-data-converter/rotation"
)

// Input carries everything one association build consumes. All tables
// referenced here are fully built before Build reads them.
type Input struct {
	Precincts []precinct.Precinct
	// Master is the composite contest definition file.
	Master []emsfile.ContestRecord
	// ByBallotType holds the per ballot type contest files keyed by the
	// raw ballot type.
	ByBallotType map[string][]emsfile.ContestRecord
	Rotations    *rotation.Resolver
	// DistrictOrdinals maps a district ID to its portion number, the
	// rotation shift for contests elected by that district.
	DistrictOrdinals map[string]int
	// Digits is the ballot type zero-fill width.
	Digits int
	// SuffixParties maps a party suffix letter to its party ID. Empty
	// disables party handling.
	SuffixParties map[string]string
	// PrecinctOrder is lexical (default) or source.
	PrecinctOrder string
	// EmitUnsuffixed adds merged rows for the unsuffixed form of every
	// party-suffixed ballot type.
	EmitUnsuffixed bool
}

// BTRow is one association table row.
type BTRow struct {
	BallotType string
	IDs        []string
}

// ContestEntry is one contest list line.
type ContestEntry struct {
	ID    string
	Title string
}

// CandOrderRow is the ballot display order of one contest's candidates.
type CandOrderRow struct {
	ContestID    string
	CandidateIDs []string
}

// Tables is the complete association build output.
type Tables struct {
	BTPct     []BTRow
	BTCont    []BTRow
	Contests  []ContestEntry
	CandOrder []CandOrderRow
}

type btLists struct {
	precincts []string
	contests  []string
	seenPct   map[string]bool
	seenCont  map[string]bool
}

func newBTLists() *btLists {
	return &btLists{seenPct: map[string]bool{}, seenCont: map[string]bool{}}
}

func (l *btLists) addPrecinct(id string) {
	if l.seenPct[id] {
		return
	}
	l.seenPct[id] = true
	l.precincts = append(l.precincts, id)
}

func (l *btLists) addContest(token string) {
	id := token
	if i := strings.IndexByte(token, ':'); i >= 0 {
		id = token[:i]
	}
	if l.seenCont[id] {
		return
	}
	l.seenCont[id] = true
	l.contests = append(l.contests, token)
}

// Build assembles the association tables. It returns no partial result:
// any validation failure leaves every table unwritten.
func Build(in Input) (*Tables, error) {
	digits := in.Digits
	if digits == 0 {
		digits = 3
	}
	lists := map[string]*btLists{}
	var order []string
	get := func(bt string) *btLists {
		l, ok := lists[bt]
		if !ok {
			l = newBTLists()
			lists[bt] = l
			order = append(order, bt)
		}
		return l
	}
	for _, p := range in.Precincts {
		for _, raw := range p.BallotTypes {
			bt := PadBallotType(raw, digits, in.SuffixParties)
			get(bt).addPrecinct(p.ID)
		}
	}
	for _, raw := range sortedRecordKeys(in.ByBallotType) {
		bt := PadBallotType(raw, digits, in.SuffixParties)
		l := get(bt)
		for _, rec := range in.ByBallotType[raw] {
			l.addContest(contestToken(rec))
		}
	}
	if in.EmitUnsuffixed && len(in.SuffixParties) > 0 {
		merged := mergeUnsuffixed(lists, order, in.SuffixParties)
		for _, bt := range merged {
			if !contains(order, bt) {
				order = append(order, bt)
			}
		}
	}
	sort.Strings(order)

	t := &Tables{}
	for _, bt := range order {
		l := lists[bt]
		precincts := append([]string(nil), l.precincts...)
		if in.PrecinctOrder != "source" {
			sort.Strings(precincts)
		}
		if len(precincts) > 0 {
			t.BTPct = append(t.BTPct, BTRow{BallotType: bt, IDs: precincts})
		}
		if len(l.contests) > 0 {
			t.BTCont = append(t.BTCont, BTRow{BallotType: bt, IDs: append([]string(nil), l.contests...)})
		}
	}

	for _, rec := range in.Master {
		t.Contests = append(t.Contests, ContestEntry{ID: rec.ContestID, Title: rec.ContestTitle})
		row, err := candidateOrder(rec, in.Rotations, in.DistrictOrdinals)
		if err != nil {
			return nil, err
		}
		if row != nil {
			t.CandOrder = append(t.CandOrder, *row)
		}
	}
	sort.Slice(t.CandOrder, func(i, j int) bool { return t.CandOrder[i].ContestID < t.CandOrder[j].ContestID })
	return t, nil
}

// PadBallotType renders the canonical ballot type: party suffix
// stripped, numeric part zero-filled to digits, suffix re-appended.
func PadBallotType(raw string, digits int, suffixParties map[string]string) string {
	num, suffix := splitSuffix(raw, suffixParties)
	for len(num) < digits {
		num = "0" + num
	}
	return num + suffix
}

func splitSuffix(raw string, suffixParties map[string]string) (string, string) {
	if len(raw) < 2 {
		return raw, ""
	}
	last := raw[len(raw)-1:]
	if _, ok := suffixParties[last]; ok {
		return raw[:len(raw)-1], last
	}
	return raw, ""
}

func contestToken(rec emsfile.ContestRecord) string {
	if rec.RotationID != "" && rec.RotationID != "0" {
		return rec.ContestID + ":" + rec.RotationID
	}
	return rec.ContestID
}

// mergeUnsuffixed extends or creates the unsuffixed row of every party
// suffixed ballot type as the union of its variants, own rows first,
// then variants in sorted order, first seen wins.
func mergeUnsuffixed(lists map[string]*btLists, order []string, suffixParties map[string]string) []string {
	groups := map[string][]string{}
	for _, bt := range order {
		num, suffix := splitSuffix(bt, suffixParties)
		if suffix != "" {
			groups[num] = append(groups[num], bt)
		}
	}
	var created []string
	for _, num := range sortedGroupKeys(groups) {
		variants := groups[num]
		sort.Strings(variants)
		l, ok := lists[num]
		if !ok {
			l = newBTLists()
			lists[num] = l
			created = append(created, num)
		}
		for _, bt := range variants {
			for _, id := range lists[bt].precincts {
				l.addPrecinct(id)
			}
			for _, token := range lists[bt].contests {
				l.addContest(token)
			}
		}
	}
	return created
}

func candidateOrder(rec emsfile.ContestRecord, rotations *rotation.Resolver, ordinals map[string]int) (*CandOrderRow, error) {
	ids := strings.Fields(rec.CandidateIDs)
	names := splitNames(rec.CandidateNames)
	if len(ids) > 0 && len(names) != len(ids) {
		return nil, fmt.Errorf("contest [%s]: %d candidate IDs but %d names", rec.ContestID, len(ids), len(names))
	}
	if rec.RotationID == "" || rec.RotationID == "0" {
		if len(ids) == 0 {
			return nil, nil
		}
		return &CandOrderRow{ContestID: rec.ContestID, CandidateIDs: ids}, nil
	}
	if rotations == nil {
		return nil, fmt.Errorf("contest [%s]: %w", rec.ContestID, &rotation.UnknownRotationError{ID: rec.RotationID})
	}
	items := make([]rotation.Item, len(ids))
	for i := range ids {
		items[i] = rotation.Item{ID: ids[i], Name: names[i]}
	}
	// A district-scoped rotation shifts by its own district so every
	// contest sharing the rotation rotates identically.
	scope := rec.ElectedByDistrictID
	if d := rotations.DistrictID(rec.RotationID); d != "" {
		scope = d
	}
	ordered, err := rotations.Order(rec.RotationID, ordinals[scope], items)
	if err != nil {
		return nil, fmt.Errorf("contest [%s]: %w", rec.ContestID, err)
	}
	if len(ordered) == 0 {
		return nil, nil
	}
	out := make([]string, len(ordered))
	for i, it := range ordered {
		out[i] = it.ID
	}
	return &CandOrderRow{ContestID: rec.ContestID, CandidateIDs: out}, nil
}

func splitNames(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return strings.Split(joined, "~")
}

func sortedRecordKeys(m map[string][]emsfile.ContestRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
