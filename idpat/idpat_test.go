package idpat

import (
	"errors"
	"testing"
)

func TestSplitWithSeparator(t *testing.T) {
	rule, err := NewRule("precinct", ".", "")
	if err != nil {
		t.Fatalf("expected error nil when building separator rule, got %q", err)
	}
	testCases := []struct {
		id     string
		base   string
		suffix string
	}{
		{"101", "101", ""},
		{"101.A", "101", "A"},
		{"101.B", "101", "B"},
		{"7.04.1", "7.04", "1"},
		{"", "", ""},
	}
	for _, tt := range testCases {
		t.Run(tt.id, func(t *testing.T) {
			base, suffix, err := rule.Split(tt.id)
			if err != nil {
				t.Fatalf("expected error nil when splitting [%s], got %q", tt.id, err)
			}
			if base != tt.base || suffix != tt.suffix {
				t.Errorf("want (%s, %s), got (%s, %s)", tt.base, tt.suffix, base, suffix)
			}
		})
	}
}

func TestSplitWithPattern(t *testing.T) {
	rule, err := NewRule("precinct", "", "{base}{letter}")
	if err != nil {
		t.Fatalf("expected error nil when building pattern rule, got %q", err)
	}
	base, suffix, err := rule.Split("101A")
	if err != nil {
		t.Fatalf("expected error nil when splitting [101A], got %q", err)
	}
	if base != "101" || suffix != "A" {
		t.Errorf("want (101, A), got (%s, %s)", base, suffix)
	}
	if _, _, err = rule.Split("101"); err == nil {
		t.Fatal("expected pattern mismatch error when splitting [101], got nil")
	}
	var mismatch *PatternMismatchError
	_, _, err = rule.Split("101")
	if !errors.As(err, &mismatch) {
		t.Errorf("expected a PatternMismatchError, got %q", err)
	}
	if mismatch.ID != "101" || mismatch.Kind != "precinct" {
		t.Errorf("want mismatch on precinct [101], got %s [%s]", mismatch.Kind, mismatch.ID)
	}
}

func TestSplitWithOptionalSuffix(t *testing.T) {
	rule, err := NewRule("precinct", "", "{base}{letter?}")
	if err != nil {
		t.Fatalf("expected error nil when building pattern rule, got %q", err)
	}
	testCases := []struct {
		id     string
		base   string
		suffix string
	}{
		{"1234", "1234", ""},
		{"1234A", "1234", "A"},
		{"12AB", "12A", "B"},
	}
	for _, tt := range testCases {
		base, suffix, err := rule.Split(tt.id)
		if err != nil {
			t.Fatalf("expected error nil when splitting [%s], got %q", tt.id, err)
		}
		if base != tt.base || suffix != tt.suffix {
			t.Errorf("id [%s]: want (%s, %s), got (%s, %s)", tt.id, tt.base, tt.suffix, base, suffix)
		}
	}
}

func TestSeparatorRuleFallsBackToPattern(t *testing.T) {
	rule, err := NewRule("precinct", ".", "{base}{letter}")
	if err != nil {
		t.Fatalf("expected error nil when building rule, got %q", err)
	}
	base, suffix, err := rule.Split("101A")
	if err != nil {
		t.Fatalf("expected error nil when splitting [101A], got %q", err)
	}
	if base != "101" || suffix != "A" {
		t.Errorf("want (101, A), got (%s, %s)", base, suffix)
	}
	// with a separator configured a pattern miss is not fatal
	base, suffix, err = rule.Split("101")
	if err != nil {
		t.Fatalf("expected error nil when splitting [101], got %q", err)
	}
	if base != "101" || suffix != "" {
		t.Errorf("want (101, ), got (%s, %s)", base, suffix)
	}
}

func TestJoinIsLeftInverseOfSplit(t *testing.T) {
	rules := map[string]*Rule{}
	var err error
	if rules["separator"], err = NewRule("precinct", ".", ""); err != nil {
		t.Fatalf("expected error nil when building separator rule, got %q", err)
	}
	if rules["pattern"], err = NewRule("precinct", "", "{base}{letter?}"); err != nil {
		t.Fatalf("expected error nil when building pattern rule, got %q", err)
	}
	if rules["none"], err = NewRule("precinct", "", ""); err != nil {
		t.Fatalf("expected error nil when building bare rule, got %q", err)
	}
	ids := map[string][]string{
		"separator": {"101", "101.A", "7.04.1", "9999.ZZ", ""},
		"pattern":   {"101", "101A", "12AB", ""},
		"none":      {"101", "101.A", "PCT 9999", ""},
	}
	for name, rule := range rules {
		for _, id := range ids[name] {
			base, suffix, err := rule.Split(id)
			if err != nil {
				t.Fatalf("rule %s: expected error nil when splitting [%s], got %q", name, id, err)
			}
			if got := rule.Join(base, suffix); got != id {
				t.Errorf("rule %s: want round trip of [%s], got [%s]", name, id, got)
			}
		}
	}
}

func TestNewRuleRejectsBadPatterns(t *testing.T) {
	badPatterns := []string{
		"{letter}",
		"{base}{base}",
		"{base}{letter}{digit}",
		"{base}-",
		"{base}{bogus}",
		"x{base}{letter}",
	}
	for _, pattern := range badPatterns {
		if _, err := NewRule("precinct", "", pattern); err == nil {
			t.Errorf("expected error when building rule with pattern [%s], got nil", pattern)
		}
	}
}

func TestValidSuffix(t *testing.T) {
	rule, err := NewRule("precinct", ".", "{base}{letter}")
	if err != nil {
		t.Fatalf("expected error nil when building rule, got %q", err)
	}
	testCases := []struct {
		suffix string
		valid  bool
	}{
		{"", true},
		{"A", true},
		{"AB", false},
		{"7", false},
	}
	for _, tt := range testCases {
		if got := rule.ValidSuffix(tt.suffix); got != tt.valid {
			t.Errorf("suffix [%s]: want %v, got %v", tt.suffix, tt.valid, got)
		}
	}
	noPattern, err := NewRule("precinct", ".", "")
	if err != nil {
		t.Fatalf("expected error nil when building rule, got %q", err)
	}
	if !noPattern.ValidSuffix("ANYTHING") {
		t.Error("expected rules without a pattern to accept every suffix")
	}
}

func TestResolveExternalID(t *testing.T) {
	table := NewPrefixTable(map[string]string{
		"SF-":   "SFDept",
		"SF-X-": "SFExp",
		"SOS-":  "CASOS",
	}, false)
	testCases := []struct {
		extID string
		org   string
		local string
	}{
		{"SF-C102", "SFDept", "C102"},
		{"SF-X-77", "SFExp", "77"},
		{"SOS-12", "CASOS", "12"},
		{"ZZ-999", UnknownOrg, "ZZ-999"},
	}
	for _, tt := range testCases {
		t.Run(tt.extID, func(t *testing.T) {
			org, local, err := table.Resolve(tt.extID)
			if err != nil {
				t.Fatalf("expected error nil when resolving [%s], got %q", tt.extID, err)
			}
			if org != tt.org || local != tt.local {
				t.Errorf("want (%s, %s), got (%s, %s)", tt.org, tt.local, org, local)
			}
		})
	}
}

func TestResolveExternalIDStrict(t *testing.T) {
	table := NewPrefixTable(map[string]string{"SF-": "SFDept"}, true)
	_, _, err := table.Resolve("ZZ-999")
	if err == nil {
		t.Fatal("expected error when resolving unknown prefix in strict mode, got nil")
	}
	var unknown *UnknownPrefixError
	if !errors.As(err, &unknown) {
		t.Errorf("expected an UnknownPrefixError, got %q", err)
	}
	if unknown.ID != "ZZ-999" {
		t.Errorf("want offending ID ZZ-999, got %s", unknown.ID)
	}
}
