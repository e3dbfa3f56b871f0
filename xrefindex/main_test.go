package main

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/OSVTAC/osv-data-converter/extid"
)

func TestRunIndexesBindings(t *testing.T) {
	repo := newInMemoryRepository()
	if err := run("testdata/export", "testdata/profile.yaml", repo); err != nil {
		t.Fatalf("expected error nil when indexing the test export, got %q", err)
	}
	tt := []struct {
		org     string
		extID   string
		kind    string
		localID string
	}{
		{"sfgov", "P1101", "precinct", "1101"},
		{"sfgov", "P7041", "precinct", "7041"},
		{"state", "407", "precinct", "7041"},
		{"state", "A17", "district", "ASMB17"},
		{"state", "A19", "district", "ASMB19"},
		{"sfgov", "C01", "contest", "MAYOR"},
	}
	for _, tc := range tt {
		b, err := repo.findByExtID(tc.org, tc.extID)
		if err != nil {
			t.Fatalf("expected to find a binding for [%s:%s], got %q", tc.org, tc.extID, err)
		}
		if b.Kind != tc.kind || b.LocalID != tc.localID {
			t.Errorf("expected [%s:%s] to bind %s [%s], got %s [%s]",
				tc.org, tc.extID, tc.kind, tc.localID, b.Kind, b.LocalID)
		}
	}
	if _, err := repo.findByExtID("sfgov", "P9999"); err == nil {
		t.Error("expected an error when looking up an unbound external ID, got nil")
	}
}

func TestRunReportsCollision(t *testing.T) {
	repo := newInMemoryRepository()
	err := run("testdata/collision", "testdata/profile.yaml", repo)
	if err == nil {
		t.Fatal("expected a collision error, got nil")
	}
	var collision *extid.CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected a CollisionError, got %q", err)
	}
	if collision.Org != "sfgov" || collision.ExtID != "X9" {
		t.Errorf("expected the collision on [sfgov:X9], got [%s:%s]", collision.Org, collision.ExtID)
	}
}

func TestSQLiteRepository(t *testing.T) {
	dir, err := ioutil.TempDir("", "xrefindex")
	if err != nil {
		t.Fatalf("expected error nil when creating a temporary directory, got %q", err)
	}
	defer os.RemoveAll(dir)
	repo, err := newSQLiteRepository(filepath.Join(dir, "bindings.db"))
	if err != nil {
		t.Fatalf("expected error nil when opening the SQLite repository, got %q", err)
	}
	first := &extid.Binding{Kind: "precinct", LocalID: "1101", Org: "sfgov", ExtID: "P1101"}
	if err := repo.save(first); err != nil {
		t.Fatalf("expected error nil when saving a binding, got %q", err)
	}
	// Saving the same external ID again replaces the bound entity.
	second := &extid.Binding{Kind: "precinct", LocalID: "1102", Org: "sfgov", ExtID: "P1101"}
	if err := repo.save(second); err != nil {
		t.Fatalf("expected error nil when saving a binding twice, got %q", err)
	}
	b, err := repo.findByExtID("sfgov", "P1101")
	if err != nil {
		t.Fatalf("expected to find the saved binding, got %q", err)
	}
	if b.Kind != "precinct" || b.LocalID != "1102" {
		t.Errorf("expected [sfgov:P1101] to bind precinct [1102], got %s [%s]", b.Kind, b.LocalID)
	}
	if _, err := repo.findByExtID("sfgov", "P9999"); err == nil {
		t.Error("expected an error when looking up an unbound external ID, got nil")
	}
}
