// Package emsfile reads the raw EMS export this converter runs on. The
// export is a zip (or an unpacked directory) of ISO-8859-1 tab
// separated files; decoding goes through a charset transform into gocsv
// so the records land on csv-tagged structs.
package emsfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"sort"
	"strings"

	"archive/zip"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// file names inside the export
const (
	PrecinctFile = "pctxref.tsv"
	DistrictFile = "districts.tsv"
	ContestFile  = "contests.tsv"
	btDir        = "bt"
)

// Source is an open raw export, either a zip file or an unpacked
// directory.
type Source struct {
	zip *zip.ReadCloser
	dir string
}

// OpenSource opens a raw export for reading.
func OpenSource(p string) (*Source, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open source [%s], error %q", p, err)
	}
	if info.IsDir() {
		return &Source{dir: p}, nil
	}
	z, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open source zip [%s], error %q", p, err)
	}
	return &Source{zip: z}, nil
}

// Close releases the underlying zip, if any.
func (s *Source) Close() error {
	if s.zip != nil {
		return s.zip.Close()
	}
	return nil
}

// Precincts reads the precinct / ballot type cross reference.
func (s *Source) Precincts() ([]PrecinctRecord, error) {
	var records []PrecinctRecord
	if err := s.readFile(PrecinctFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Districts reads the district name export.
func (s *Source) Districts() ([]DistrictRecord, error) {
	var records []DistrictRecord
	if err := s.readFile(DistrictFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Contests reads the master composite contest definition file.
func (s *Source) Contests() ([]ContestRecord, error) {
	var records []ContestRecord
	if err := s.readFile(ContestFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// BallotTypeContests reads every per ballot type contest definition
// file under bt/, keyed by the ballot type taken from the file name
// (bt012.tsv belongs to ballot type 012).
func (s *Source) BallotTypeContests() (map[string][]ContestRecord, error) {
	names, err := s.ballotTypeFiles()
	if err != nil {
		return nil, err
	}
	byType := make(map[string][]ContestRecord, len(names))
	for _, name := range names {
		bt := strings.TrimSuffix(strings.TrimPrefix(path.Base(name), btDir), ".tsv")
		var records []ContestRecord
		if err := s.readFile(name, &records); err != nil {
			return nil, err
		}
		byType[bt] = records
	}
	return byType, nil
}

func (s *Source) ballotTypeFiles() ([]string, error) {
	var names []string
	if s.zip != nil {
		for _, f := range s.zip.File {
			base := path.Base(f.Name)
			dir := path.Dir(f.Name)
			if (dir == btDir || strings.HasSuffix(dir, "/"+btDir)) && strings.HasPrefix(base, btDir) && strings.HasSuffix(base, ".tsv") {
				names = append(names, f.Name)
			}
		}
		sort.Strings(names)
		return names, nil
	}
	infos, err := ioutil.ReadDir(path.Join(s.dir, btDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list ballot type files in [%s], error %q", s.dir, err)
	}
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), btDir) && strings.HasSuffix(info.Name(), ".tsv") {
			names = append(names, path.Join(btDir, info.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Source) readFile(name string, out interface{}) error {
	rc, err := s.open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = '\t'
		r.LazyQuotes = true
		return r
	})
	decoded := transform.NewReader(rc, charmap.ISO8859_1.NewDecoder())
	if err := gocsv.Unmarshal(decoded, out); err != nil {
		return fmt.Errorf("failed to decode export file [%s], error %q", name, err)
	}
	return nil
}

func (s *Source) open(name string) (io.ReadCloser, error) {
	if s.zip != nil {
		for _, f := range s.zip.File {
			if f.Name == name || strings.HasSuffix(f.Name, "/"+name) {
				rc, err := f.Open()
				if err != nil {
					return nil, fmt.Errorf("failed to open export file [%s], error %q", name, err)
				}
				return rc, nil
			}
		}
		return nil, fmt.Errorf("export file [%s] is not in the source zip", name)
	}
	f, err := os.Open(path.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open export file [%s], error %q", name, err)
	}
	return f, nil
}
