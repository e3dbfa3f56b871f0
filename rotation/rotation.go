// Package rotation computes ballot display order. Each rotation ID is
// bound to a stored 26-letter alphabet drawn for the election; ordering
// sorts names through that alphabet and optionally shifts the starting
// entry by the district ordinal, so the result is a pure function of the
// rotation entry and the input identity set.
package rotation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OSVTAC/osv-data-converter/config"
)

// OrderRandomAlphabet is the only ordering algorithm currently defined.
const OrderRandomAlphabet = "random_alphabet"

// UnknownRotationError reports a rotation ID with no configuration
// entry.
type UnknownRotationError struct {
	ID string
}

func (e *UnknownRotationError) Error() string {
	return fmt.Sprintf("rotation [%s] has no configuration entry", e.ID)
}

// Item is one candidate or contest to be ordered.
type Item struct {
	ID   string
	Name string
}

type entry struct {
	method     config.RotationMethod
	districtID string
	translate  [26]byte
}

// Resolver holds the compiled rotation entries of one election.
type Resolver struct {
	entries map[string]entry
}

// NewResolver compiles the profile's rotation entries. Every alphabet
// must contain each letter A-Z exactly once.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	r := &Resolver{entries: make(map[string]entry, len(cfg.Rotations))}
	for id, rot := range cfg.Rotations {
		method, ok := cfg.RotationMethods[rot.Method]
		if !ok {
			return nil, &config.MissingKeyError{Key: "rotation_methods." + rot.Method}
		}
		if method.OrderBy != "" && method.OrderBy != OrderRandomAlphabet {
			return nil, fmt.Errorf("rotation method [%s]: unknown order_by [%s]", rot.Method, method.OrderBy)
		}
		e := entry{method: method, districtID: rot.DistrictID}
		translate, err := compileAlphabet(rot.Alphabet)
		if err != nil {
			return nil, fmt.Errorf("rotation [%s]: %v", id, err)
		}
		e.translate = translate
		r.entries[id] = e
	}
	return r, nil
}

// DistrictID returns the district a rotation entry is scoped to, empty
// when unscoped.
func (r *Resolver) DistrictID(rotationID string) string {
	return r.entries[rotationID].districtID
}

// Order returns the items in ballot display order for one rotation.
// districtOrdinal shifts the starting item for methods that rotate by
// district; pass 0 when the contest has no district ordinal. The input
// slice is not modified and its order does not influence the result.
func (r *Resolver) Order(rotationID string, districtOrdinal int, items []Item) ([]Item, error) {
	e, ok := r.entries[rotationID]
	if !ok {
		return nil, &UnknownRotationError{ID: rotationID}
	}
	ordered := append([]Item(nil), items...)
	sort.Slice(ordered, func(i, j int) bool {
		a := translateName(ordered[i].Name, e.translate)
		b := translateName(ordered[j].Name, e.translate)
		if a != b {
			return a < b
		}
		return ordered[i].ID < ordered[j].ID
	})
	if e.method.RotateByDistrict && len(ordered) > 0 {
		shift := districtOrdinal % len(ordered)
		if shift < 0 {
			shift += len(ordered)
		}
		ordered = append(ordered[shift:], ordered[:shift]...)
	}
	return ordered, nil
}

func compileAlphabet(alphabet string) ([26]byte, error) {
	var translate [26]byte
	up := strings.ToUpper(alphabet)
	if len(up) != 26 {
		return translate, fmt.Errorf("alphabet [%s] must have 26 letters, has %d", alphabet, len(up))
	}
	var seen [26]bool
	for rank := 0; rank < 26; rank++ {
		c := up[rank]
		if c < 'A' || c > 'Z' {
			return translate, fmt.Errorf("alphabet [%s] has non-letter [%c]", alphabet, c)
		}
		if seen[c-'A'] {
			return translate, fmt.Errorf("alphabet [%s] repeats letter [%c]", alphabet, c)
		}
		seen[c-'A'] = true
		translate[c-'A'] = byte('A' + rank)
	}
	return translate, nil
}

func translateName(name string, translate [26]byte) string {
	up := strings.ToUpper(name)
	var b strings.Builder
	b.Grow(len(up))
	for _, r := range up {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(translate[r-'A'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
