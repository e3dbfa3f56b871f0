// Package tsvout writes the cross-reference tables the downstream
// reporting software consumes: unquoted separated values, header line
// first, body lines in sorted order, embedded separator characters
// replaced by substitutes. Writers buffer everything and nothing
// reaches disk until every table of a run has validated, so a failed
// conversion leaves no output files behind.
package tsvout

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
)

// substitute characters for field content that would break the
// unquoted format
const (
	subNewline = "␤"
	subTab     = "␉"
	subPipe    = "¦"
	subComma   = "，"
)

// DuplicateKeyError reports a unique-checked column repeating with
// differing rows.
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("output table [%s]: key [%s] appears with differing rows", e.Table, e.Key)
}

// Writer buffers one output table.
type Writer struct {
	path      string
	sep       string
	header    []string
	uniqueCol int
	lines     []string
}

// NewWriter prepares a buffered table writer. Nothing is written until
// Write or WriteAll.
func NewWriter(path, sep string, header ...string) *Writer {
	return &Writer{path: path, sep: sep, header: header, uniqueCol: -1}
}

// RequireUniqueCol makes rendering fail when the given column repeats a
// value across differing rows. Identical repeated rows collapse to one.
func (w *Writer) RequireUniqueCol(col int) *Writer {
	w.uniqueCol = col
	return w
}

// AddLine buffers one body row.
func (w *Writer) AddLine(fields ...string) {
	mapped := make([]string, len(fields))
	for i, f := range fields {
		mapped[i] = w.mapField(f)
	}
	w.lines = append(w.lines, strings.Join(mapped, w.sep))
}

// Len returns the number of buffered body rows.
func (w *Writer) Len() int {
	return len(w.lines)
}

// Path returns the destination path of the table.
func (w *Writer) Path() string {
	return w.path
}

// Write validates and writes the table to disk.
func (w *Writer) Write() error {
	b, err := w.render()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(w.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write output table [%s], error %q", w.path, err)
	}
	return nil
}

// WriteAll validates every table first and writes only when all of them
// pass, so a single bad table keeps the whole run's output off disk.
func WriteAll(writers ...*Writer) error {
	rendered := make([][]byte, len(writers))
	for i, w := range writers {
		b, err := w.render()
		if err != nil {
			return err
		}
		rendered[i] = b
	}
	for i, w := range writers {
		if err := ioutil.WriteFile(w.path, rendered[i], 0644); err != nil {
			return fmt.Errorf("failed to write output table [%s], error %q", w.path, err)
		}
	}
	return nil
}

func (w *Writer) render() ([]byte, error) {
	lines := append([]string(nil), w.lines...)
	sort.Strings(lines)
	if w.uniqueCol >= 0 {
		deduped := lines[:0]
		byKey := make(map[string]string, len(lines))
		for _, line := range lines {
			cols := strings.Split(line, w.sep)
			if w.uniqueCol >= len(cols) {
				deduped = append(deduped, line)
				continue
			}
			key := cols[w.uniqueCol]
			prev, seen := byKey[key]
			if !seen {
				byKey[key] = line
				deduped = append(deduped, line)
				continue
			}
			if prev != line {
				return nil, &DuplicateKeyError{Table: filepath.Base(w.path), Key: key}
			}
		}
		lines = deduped
	}
	var b strings.Builder
	b.WriteString(strings.Join(w.header, w.sep))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func (w *Writer) mapField(s string) string {
	s = strings.ReplaceAll(s, "\n", subNewline)
	s = strings.ReplaceAll(s, "\t", subTab)
	switch w.sep {
	case "|":
		s = strings.ReplaceAll(s, "|", subPipe)
	case ",":
		s = strings.ReplaceAll(s, ",", subComma)
	}
	return s
}
