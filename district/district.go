// Package district takes district display names apart into base name and
// portion, and renders them back with the fixed-width portion padding
// that makes lexical name order equal numeric portion order.
package district

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

// District is a normalized district entity.
type District struct {
	ID       string
	Name     string
	BaseName string
	// Portion identifies the subarea within the base district: the
	// space-padded number or the literal text token. Empty for a
	// whole district.
	Portion string
}

// Parse splits a district display name into base name and raw portion
// using the configured portion labels. With no labels configured only a
// trailing numeric token is recognized. The second return is false when
// no portion was recognized, which callers treat as a whole district,
// not an error.
func Parse(name string, labels []string) (string, string, bool) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name, "", false
	}
	last := fields[len(fields)-1]
	if len(labels) == 0 {
		if isNumber(last) {
			return strings.Join(fields[:len(fields)-1], " "), last, true
		}
		return name, "", false
	}
	prev := fields[len(fields)-2]
	for _, label := range labels {
		if prev == label {
			return strings.Join(fields[:len(fields)-1], " "), last, true
		}
	}
	return name, "", false
}

// PadWidth is the portion field width for a jurisdiction whose largest
// portion number is max. Single digits always carry at least one pad
// space; a jurisdiction reaching 100 widens every portion by one more.
func PadWidth(max int) int {
	w := len(strconv.Itoa(max))
	if w < 2 {
		return 2
	}
	return w
}

// PadPortion renders a numeric portion left-padded for its jurisdiction.
func PadPortion(n, max int) string {
	return fmt.Sprintf("%*d", PadWidth(max), n)
}

// Format renders the display name of a numeric portion of a district.
// The padding guarantees lexical order of names equals numeric order of
// portions within the jurisdiction.
func Format(baseName string, n, max int) string {
	return baseName + " " + PadPortion(n, max)
}

// SubdistrictID renders the canonical ID of a numbered subdistrict,
// stripping the marker stars some exports put around the base ID.
func SubdistrictID(baseID string, n int, separator string) string {
	if separator == "" {
		separator = "-"
	}
	return strings.Trim(baseID, "*") + separator + fmt.Sprintf("%02d", n)
}

// NameRecord is one raw district line from the source export.
type NameRecord struct {
	ID   string
	Name string
}

// Normalize parses every district name and re-renders numeric portions
// padded to their jurisdiction's width. Names with no recognizable
// portion are kept whole and logged for operator review.
func Normalize(records []NameRecord, labels []string) []District {
	type parsed struct {
		rec     NameRecord
		base    string
		portion string
		number  int
		numeric bool
	}
	items := make([]parsed, 0, len(records))
	maxByBase := make(map[string]int)
	for _, rec := range records {
		base, portion, ok := Parse(rec.Name, labels)
		it := parsed{rec: rec, base: base, portion: portion}
		if !ok {
			log.Printf("district [%s]: no portion recognized in [%s], keeping whole name\n", rec.ID, rec.Name)
		}
		if n, err := strconv.Atoi(portion); ok && err == nil {
			it.number = n
			it.numeric = true
			if n > maxByBase[base] {
				maxByBase[base] = n
			}
		}
		items = append(items, it)
	}
	districts := make([]District, 0, len(items))
	for _, it := range items {
		d := District{ID: it.rec.ID, Name: it.rec.Name, BaseName: it.base}
		switch {
		case it.numeric:
			d.Portion = PadPortion(it.number, maxByBase[it.base])
			d.Name = Format(it.base, it.number, maxByBase[it.base])
		case it.portion != "":
			d.Portion = it.portion
			d.Name = it.base + " " + it.portion
		}
		districts = append(districts, d)
	}
	sort.Slice(districts, func(i, j int) bool { return districts[i].ID < districts[j].ID })
	return districts
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
