// Package refdata holds the reference catalog of result stat types,
// voting groups, and result styles. The catalog is static lookup data
// consumed by downstream reporting: it is built once at startup, passed
// explicitly to the components that need it, and never mutated.
package refdata

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// StatType is one reported statistic kind.
type StatType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Counted marks stats that count ballots or votes, as opposed to
	// roster sizes and percentages.
	Counted bool `json:"counted"`
}

// VotingGroup is one ballot-origin subtotal group.
type VotingGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Style names the stat and group subset one result file kind reports.
type Style struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	StatTypeIDs    []string `json:"result_stat_type_ids"`
	VotingGroupIDs []string `json:"voting_group_ids"`
	WriteIns       bool     `json:"write_ins"`
}

// Catalog is the immutable reference data set of one election.
type Catalog struct {
	statTypes []StatType
	groups    []VotingGroup
	styles    []Style
	statByID  map[string]StatType
	groupByID map[string]VotingGroup
	styleByID map[string]Style
}

type catalogFile struct {
	StatTypes []StatType    `json:"result_stat_types"`
	Groups    []VotingGroup `json:"voting_groups"`
	Styles    []Style       `json:"result_styles"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := build(defaultCatalog)
	if err != nil {
		// the built-in data is fixed at compile time
		panic(err)
	}
	return c
}

// Load reads a catalog override file, replacing the built-in data
// entirely.
func Load(path string) (*Catalog, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file [%s], error %q", path, err)
	}
	var f catalogFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file [%s], error %q", path, err)
	}
	c, err := build(f)
	if err != nil {
		return nil, fmt.Errorf("catalog file [%s]: %v", path, err)
	}
	return c, nil
}

func build(f catalogFile) (*Catalog, error) {
	c := &Catalog{
		statTypes: f.StatTypes,
		groups:    f.Groups,
		styles:    f.Styles,
		statByID:  make(map[string]StatType, len(f.StatTypes)),
		groupByID: make(map[string]VotingGroup, len(f.Groups)),
		styleByID: make(map[string]Style, len(f.Styles)),
	}
	for _, st := range f.StatTypes {
		if _, dup := c.statByID[st.ID]; dup {
			return nil, fmt.Errorf("result stat type [%s] is defined twice", st.ID)
		}
		c.statByID[st.ID] = st
	}
	for _, g := range f.Groups {
		if _, dup := c.groupByID[g.ID]; dup {
			return nil, fmt.Errorf("voting group [%s] is defined twice", g.ID)
		}
		c.groupByID[g.ID] = g
	}
	for _, s := range f.Styles {
		if _, dup := c.styleByID[s.ID]; dup {
			return nil, fmt.Errorf("result style [%s] is defined twice", s.ID)
		}
		for _, id := range s.StatTypeIDs {
			if _, ok := c.statByID[id]; !ok {
				return nil, fmt.Errorf("result style [%s] references unknown stat type [%s]", s.ID, id)
			}
		}
		for _, id := range s.VotingGroupIDs {
			if _, ok := c.groupByID[id]; !ok {
				return nil, fmt.Errorf("result style [%s] references unknown voting group [%s]", s.ID, id)
			}
		}
		c.styleByID[s.ID] = s
	}
	return c, nil
}

// StatType resolves one result stat type ID.
func (c *Catalog) StatType(id string) (StatType, error) {
	st, ok := c.statByID[id]
	if !ok {
		return StatType{}, fmt.Errorf("result stat type [%s] is not in the catalog", id)
	}
	return st, nil
}

// VotingGroup resolves one voting group ID.
func (c *Catalog) VotingGroup(id string) (VotingGroup, error) {
	g, ok := c.groupByID[id]
	if !ok {
		return VotingGroup{}, fmt.Errorf("voting group [%s] is not in the catalog", id)
	}
	return g, nil
}

// Style resolves one result style ID.
func (c *Catalog) Style(id string) (Style, error) {
	s, ok := c.styleByID[id]
	if !ok {
		return Style{}, fmt.Errorf("result style [%s] is not in the catalog", id)
	}
	return s, nil
}

// StatTypes returns the stat types in catalog order.
func (c *Catalog) StatTypes() []StatType {
	return append([]StatType(nil), c.statTypes...)
}

// VotingGroups returns the voting groups in catalog order.
func (c *Catalog) VotingGroups() []VotingGroup {
	return append([]VotingGroup(nil), c.groups...)
}

// Styles returns the result styles in catalog order.
func (c *Catalog) Styles() []Style {
	return append([]Style(nil), c.styles...)
}
