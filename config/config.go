// Package config loads the YAML conversion profile that drives one
// election's identifier normalization run.
package config

import (
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/OSVTAC/osv-data-converter/idpat"
)

const (
	// DefaultBTDigits is the zero-fill width of ballot type IDs.
	DefaultBTDigits = 3

	// DefaultTSVSeparator separates columns of the output tables.
	DefaultTSVSeparator = "\t"
)

// MissingKeyError reports a configuration key a component needed but the
// profile does not carry.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("configuration key [%s] is required but missing", e.Key)
}

// RotationMethod holds the algorithm parameters of one rotation method.
type RotationMethod struct {
	// OrderBy names the ordering algorithm. The only supported value is
	// random_alphabet.
	OrderBy string `yaml:"order_by"`
	// RotateByDistrict shifts the starting entry by the district ordinal.
	RotateByDistrict bool `yaml:"rotate_by_district"`
}

// Rotation binds a source rotation ID to a method and its stored seed.
type Rotation struct {
	// Method references a key of rotation_methods.
	Method string `yaml:"method"`
	// Alphabet is the drawn 26-letter ordering seed.
	Alphabet string `yaml:"alphabet"`
	// DistrictID scopes the seed to contests elected by that district.
	DistrictID string `yaml:"district_id"`
}

// Config is one election's conversion profile.
type Config struct {
	// PrecinctSplitSeparator splits precinct IDs at its last occurrence.
	PrecinctSplitSeparator string `yaml:"precinct_split_separator"`
	// PrecinctSplitPattern matches base and split suffix when the
	// separator is unset or absent from an ID.
	PrecinctSplitPattern string `yaml:"precinct_split_pattern"`
	// PrecinctConsolidation maps base precinct IDs to their consolidated
	// (reporting) precinct ID.
	PrecinctConsolidation map[string]string `yaml:"precinct_consolidation_table"`
	// ExternalIDPrefixes maps configured ID prefixes to the organization
	// that issued them.
	ExternalIDPrefixes map[string]string `yaml:"external_id_prefixes"`
	// StrictExternalIDs makes an unknown prefix fatal.
	StrictExternalIDs bool `yaml:"strict_external_ids"`
	// DistrictPortionLabels are the words that may introduce a district
	// portion inside a district name, in match order.
	DistrictPortionLabels []string `yaml:"district_portion_labels"`
	// DistrictIDSuffixSeparator joins a district base ID with its
	// zero-filled subdistrict number.
	DistrictIDSuffixSeparator string `yaml:"district_id_suffix_separator"`
	// RotationMethods defines the available rotation algorithms.
	RotationMethods map[string]RotationMethod `yaml:"rotation_methods"`
	// Rotations binds source rotation IDs to methods and seeds.
	Rotations map[string]Rotation `yaml:"rotations"`
	// PartyBallotSuffixes maps a party ID to the suffix letter its
	// ballot types carry.
	PartyBallotSuffixes map[string]string `yaml:"party_ballot_suffixes"`
	// BTDigits is the zero-fill width of ballot type IDs.
	BTDigits int `yaml:"bt_digits"`
	// TSVSeparator overrides the output column separator.
	TSVSeparator string `yaml:"tsv_separator"`
	// PrecinctDisplayOrder orders precinct lists in the association
	// tables: lexical (default) or source.
	PrecinctDisplayOrder string `yaml:"precinct_display_order"`
}

// Load reads and validates a conversion profile.
func Load(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion profile [%s], error %q", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse conversion profile [%s], error %q", path, err)
	}
	if _, err := c.PrecinctRule(); err != nil {
		return nil, fmt.Errorf("conversion profile [%s]: %v", path, err)
	}
	for _, id := range sortedRotationIDs(c.Rotations) {
		rot := c.Rotations[id]
		if rot.Method == "" {
			return nil, &MissingKeyError{Key: "rotations." + id + ".method"}
		}
		if _, ok := c.RotationMethods[rot.Method]; !ok {
			return nil, &MissingKeyError{Key: "rotation_methods." + rot.Method}
		}
	}
	if c.PrecinctDisplayOrder != "" && c.PrecinctDisplayOrder != "lexical" && c.PrecinctDisplayOrder != "source" {
		return nil, fmt.Errorf("conversion profile [%s]: unknown precinct_display_order [%s]", path, c.PrecinctDisplayOrder)
	}
	return &c, nil
}

// PrecinctRule builds the precinct split rule from the profile.
func (c *Config) PrecinctRule() (*idpat.Rule, error) {
	return idpat.NewRule("precinct", c.PrecinctSplitSeparator, c.PrecinctSplitPattern)
}

// PrefixTable builds the external ID resolver table. Strict resolution
// without configured prefixes cannot resolve anything and is reported as
// a missing key.
func (c *Config) PrefixTable() (*idpat.PrefixTable, error) {
	if c.StrictExternalIDs && len(c.ExternalIDPrefixes) == 0 {
		return nil, &MissingKeyError{Key: "external_id_prefixes"}
	}
	return idpat.NewPrefixTable(c.ExternalIDPrefixes, c.StrictExternalIDs), nil
}

// Digits returns the ballot type zero-fill width.
func (c *Config) Digits() int {
	if c.BTDigits == 0 {
		return DefaultBTDigits
	}
	return c.BTDigits
}

// Separator returns the output column separator.
func (c *Config) Separator() string {
	if c.TSVSeparator == "" {
		return DefaultTSVSeparator
	}
	return c.TSVSeparator
}

// SuffixParties inverts party_ballot_suffixes into suffix letter to
// party ID form, which is the direction association building needs.
func (c *Config) SuffixParties() map[string]string {
	m := make(map[string]string, len(c.PartyBallotSuffixes))
	for party, suffix := range c.PartyBallotSuffixes {
		m[suffix] = party
	}
	return m
}

func sortedRotationIDs(rotations map[string]Rotation) []string {
	ids := make([]string, 0, len(rotations))
	for id := range rotations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
