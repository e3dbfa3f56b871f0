package config

import (
	"errors"
	"io/ioutil"
	"os"
	"path"
	"testing"
)

func TestLoad(t *testing.T) {
	c, err := Load("testdata/profile.yaml")
	if err != nil {
		t.Fatalf("expected error nil when loading profile, got %q", err)
	}
	if c.PrecinctSplitSeparator != "." {
		t.Errorf("want separator [.], got [%s]", c.PrecinctSplitSeparator)
	}
	if got := c.PrecinctConsolidation["7041"]; got != "7041/7044" {
		t.Errorf("want consolidation [7041/7044], got [%s]", got)
	}
	if got := c.ExternalIDPrefixes["SF-"]; got != "SFDept" {
		t.Errorf("want organization [SFDept], got [%s]", got)
	}
	rot, ok := c.Rotations["2"]
	if !ok {
		t.Fatal("expected rotation [2] to be configured")
	}
	if rot.Method != "alpha" || rot.DistrictID != "SUPV" {
		t.Errorf("want rotation (alpha, SUPV), got (%s, %s)", rot.Method, rot.DistrictID)
	}
	if !c.RotationMethods["alpha"].RotateByDistrict {
		t.Error("expected method [alpha] to rotate by district")
	}
	if c.Digits() != 3 {
		t.Errorf("want 3 ballot type digits, got %d", c.Digits())
	}
	if c.Separator() != "\t" {
		t.Errorf("want tab separator, got %q", c.Separator())
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	p := writeProfile(t, "precinct_split_pattern: \"{bogus}\"\n")
	defer os.RemoveAll(path.Dir(p))
	if _, err := Load(p); err == nil {
		t.Error("expected error when loading profile with a bad split pattern, got nil")
	}
}

func TestLoadRejectsUnknownRotationMethod(t *testing.T) {
	p := writeProfile(t, "rotations:\n  \"1\":\n    method: alpha\n")
	defer os.RemoveAll(path.Dir(p))
	_, err := Load(p)
	if err == nil {
		t.Fatal("expected error when a rotation references an undefined method, got nil")
	}
	var missing *MissingKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected a MissingKeyError, got %q", err)
	}
	if missing.Key != "rotation_methods.alpha" {
		t.Errorf("want missing key [rotation_methods.alpha], got [%s]", missing.Key)
	}
}

func TestDefaults(t *testing.T) {
	c := &Config{}
	if c.Digits() != DefaultBTDigits {
		t.Errorf("want %d ballot type digits, got %d", DefaultBTDigits, c.Digits())
	}
	if c.Separator() != DefaultTSVSeparator {
		t.Errorf("want default separator, got %q", c.Separator())
	}
}

func TestPrefixTableStrictNeedsPrefixes(t *testing.T) {
	c := &Config{StrictExternalIDs: true}
	_, err := c.PrefixTable()
	if err == nil {
		t.Fatal("expected error when strict resolution has no prefixes, got nil")
	}
	var missing *MissingKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected a MissingKeyError, got %q", err)
	}
	if missing.Key != "external_id_prefixes" {
		t.Errorf("want missing key [external_id_prefixes], got [%s]", missing.Key)
	}
}

func TestSuffixParties(t *testing.T) {
	c := &Config{PartyBallotSuffixes: map[string]string{"DEM": "D", "REP": "R"}}
	inverted := c.SuffixParties()
	if inverted["D"] != "DEM" || inverted["R"] != "REP" {
		t.Errorf("want suffixes inverted to parties, got %v", inverted)
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "profile")
	if err != nil {
		t.Fatalf("expected error nil when creating temporary dir, got %q", err)
	}
	p := path.Join(dir, "profile.yaml")
	if err := ioutil.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("expected error nil when writing profile, got %q", err)
	}
	return p
}
