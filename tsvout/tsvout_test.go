package tsvout

import (
	"errors"
	"io/ioutil"
	"os"
	"path"
	"testing"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "tables")
	if err != nil {
		t.Fatalf("expected error nil when creating temporary dir, got %q", err)
	}
	return dir
}

func TestWriteSortsBodyUnderHeader(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	p := path.Join(dir, "btpct.tsv")
	w := NewWriter(p, "\t", "ballot_type", "precinct_ids")
	w.AddLine("012", "9401 9402")
	w.AddLine("001", "1101 1102")
	w.AddLine("005", "7041")
	if err := w.Write(); err != nil {
		t.Fatalf("expected error nil when writing table, got %q", err)
	}
	b, err := ioutil.ReadFile(p)
	if err != nil {
		t.Fatalf("expected error nil when reading table back, got %q", err)
	}
	expected := "ballot_type\tprecinct_ids\n001\t1101 1102\n005\t7041\n012\t9401 9402\n"
	if string(b) != expected {
		t.Errorf("want %q, got %q", expected, string(b))
	}
}

func TestWriteMapsEmbeddedSeparators(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	p := path.Join(dir, "distname.tsv")
	w := NewWriter(p, "|", "district_id", "district_name")
	w.AddLine("D1", "Name\twith\ttabs")
	w.AddLine("D2", "Name|with|pipes")
	w.AddLine("D3", "Name\nwith newline")
	if err := w.Write(); err != nil {
		t.Fatalf("expected error nil when writing table, got %q", err)
	}
	b, err := ioutil.ReadFile(p)
	if err != nil {
		t.Fatalf("expected error nil when reading table back, got %q", err)
	}
	expected := "district_id|district_name\n" +
		"D1|Name␉with␉tabs\n" +
		"D2|Name¦with¦pipes\n" +
		"D3|Name␤with newline\n"
	if string(b) != expected {
		t.Errorf("want %q, got %q", expected, string(b))
	}
}

func TestUniqueColCollapsesIdenticalRows(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	p := path.Join(dir, "contlist.tsv")
	w := NewWriter(p, "\t", "contest_id", "contest_title").RequireUniqueCol(0)
	w.AddLine("MAYOR", "Mayor")
	w.AddLine("MAYOR", "Mayor")
	if err := w.Write(); err != nil {
		t.Fatalf("expected error nil when writing identical duplicates, got %q", err)
	}
	b, err := ioutil.ReadFile(p)
	if err != nil {
		t.Fatalf("expected error nil when reading table back, got %q", err)
	}
	expected := "contest_id\tcontest_title\nMAYOR\tMayor\n"
	if string(b) != expected {
		t.Errorf("want %q, got %q", expected, string(b))
	}
}

func TestUniqueColRejectsDifferingRows(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	p := path.Join(dir, "contlist.tsv")
	w := NewWriter(p, "\t", "contest_id", "contest_title").RequireUniqueCol(0)
	w.AddLine("MAYOR", "Mayor")
	w.AddLine("MAYOR", "Mayor of San Francisco")
	err := w.Write()
	if err == nil {
		t.Fatal("expected error when a unique key repeats with differing rows, got nil")
	}
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected a DuplicateKeyError, got %q", err)
	}
	if dup.Table != "contlist.tsv" || dup.Key != "MAYOR" {
		t.Errorf("want (contlist.tsv, MAYOR), got (%s, %s)", dup.Table, dup.Key)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Error("expected no file on disk after a failed write")
	}
}

func TestWriteAllIsAllOrNothing(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	good := NewWriter(path.Join(dir, "btpct.tsv"), "\t", "ballot_type", "precinct_ids")
	good.AddLine("001", "1101")
	bad := NewWriter(path.Join(dir, "btcont.tsv"), "\t", "ballot_type", "contest_ids").RequireUniqueCol(0)
	bad.AddLine("001", "MAYOR")
	bad.AddLine("001", "SHERIFF")
	if err := WriteAll(good, bad); err == nil {
		t.Fatal("expected error when one table fails validation, got nil")
	}
	if _, err := os.Stat(path.Join(dir, "btpct.tsv")); !os.IsNotExist(err) {
		t.Error("expected the passing table to stay off disk when a sibling fails")
	}
	if err := WriteAll(good); err != nil {
		t.Fatalf("expected error nil when writing the passing table alone, got %q", err)
	}
	if _, err := os.Stat(path.Join(dir, "btpct.tsv")); err != nil {
		t.Errorf("expected the table on disk, got %q", err)
	}
}
