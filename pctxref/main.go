package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OSVTAC/osv-data-converter/assoc"
	"github.com/OSVTAC/osv-data-converter/config"
	"github.com/OSVTAC/osv-data-converter/district"
	"github.com/OSVTAC/osv-data-converter/emsfile"
	"github.com/OSVTAC/osv-data-converter/filestorage"
	"github.com/OSVTAC/osv-data-converter/precinct"
	"github.com/OSVTAC/osv-data-converter/tsvout"
	"github.com/matryer/try"
)

const maxAttempts = 3

func main() {
	zipFile := flag.String("zip", "", "path of the raw export zip")
	inDir := flag.String("inDir", "", "directory with the expanded export files")
	configFile := flag.String("config", "", "path of the conversion profile")
	outDir := flag.String("outDir", "", "directory to place the converted tables")
	storageType := flag.String("storage", "", "upload target for converted tables: local, gcs, s3 or drive")
	bucket := flag.String("bucket", "", "bucket, directory or folder ID receiving uploaded tables")
	googleDriveCredentialsFile := flag.String("credentials", "", "Google Drive credentials file")
	googleDriveOAuthTokenFile := flag.String("OAuthToken", "", "file with oauth token")
	flag.Parse()
	source := *zipFile
	if source == "" {
		source = *inDir
	}
	if source == "" {
		log.Fatal("inform the export source with -zip or -inDir")
	}
	if *configFile == "" {
		log.Fatal("inform the conversion profile")
	}
	if *outDir == "" {
		log.Fatal("inform the output directory")
	}
	if err := run(source, *configFile, *outDir, *storageType, *bucket, *googleDriveCredentialsFile, *googleDriveOAuthTokenFile); err != nil {
		log.Fatalf("failed to convert precinct tables, error %v", err)
	}
}

func run(source, configFile, outDir, storageType, bucket, credentialsFile, oauthTokenFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	src, err := emsfile.OpenSource(source)
	if err != nil {
		return fmt.Errorf("failed to open export source [%s], error %q", source, err)
	}
	defer src.Close()
	writers, err := buildTables(src, cfg, outDir)
	if err != nil {
		return err
	}
	if err := tsvout.WriteAll(writers...); err != nil {
		return err
	}
	for _, w := range writers {
		log.Printf("wrote [ %s ] with [ %d ] lines\n", w.Path(), w.Len())
	}
	if storageType == "" {
		return nil
	}
	client, err := storageClient(storageType, credentialsFile, oauthTokenFile)
	if err != nil {
		return err
	}
	return uploadTables(client, bucket, writers)
}

// buildTables runs the precinct normalizer and the district portion
// parser over the export and buffers the four precinct tables. Nothing
// reaches disk here.
func buildTables(src *emsfile.Source, cfg *config.Config, outDir string) ([]*tsvout.Writer, error) {
	rule, err := cfg.PrecinctRule()
	if err != nil {
		return nil, err
	}
	records, err := src.Precincts()
	if err != nil {
		return nil, err
	}
	recs := make([]precinct.Record, len(records))
	for i, r := range records {
		recs[i] = precinct.Record{
			ID:          r.PrecinctID,
			Name:        r.PrecinctName,
			BallotType:  r.BallotType,
			DistrictIDs: strings.Fields(r.DistrictIDs),
		}
	}
	precincts, cons, err := precinct.Normalize(recs, cfg.PrecinctConsolidation, rule)
	if err != nil {
		return nil, err
	}
	nameRecords, err := src.Districts()
	if err != nil {
		return nil, err
	}
	names := make([]district.NameRecord, len(nameRecords))
	for i, r := range nameRecords {
		names[i] = district.NameRecord{ID: r.DistrictID, Name: r.DistrictName}
	}
	districts := district.Normalize(names, cfg.DistrictPortionLabels)

	sep := cfg.Separator()
	digits := cfg.Digits()
	suffixes := cfg.SuffixParties()

	precinctTable := tsvout.NewWriter(filepath.Join(outDir, "precinct.tsv"), sep,
		"precinct_id", "base_precinct_id", "split_suffix", "cons_precinct_id",
		"precinct_name", "ballot_types", "district_ids").RequireUniqueCol(0)
	for _, p := range precincts {
		bts := make([]string, len(p.BallotTypes))
		for i, raw := range p.BallotTypes {
			bts[i] = assoc.PadBallotType(raw, digits, suffixes)
		}
		sort.Strings(bts)
		precinctTable.AddLine(p.ID, p.BaseID, p.SplitSuffix, p.ConsID, p.Name,
			strings.Join(bts, " "), strings.Join(dedupeSorted(p.DistrictIDs), " "))
	}

	pctconsTable := tsvout.NewWriter(filepath.Join(outDir, "pctcons.tsv"), sep,
		"cons_precinct_id", "cons_precinct_name", "precinct_ids").RequireUniqueCol(0)
	for _, c := range cons {
		pctconsTable.AddLine(c.ID, c.Name, strings.Join(c.PrecinctIDs, " "))
	}

	distpct := map[string][]string{}
	for _, p := range precincts {
		for _, d := range p.DistrictIDs {
			distpct[d] = append(distpct[d], p.ID)
		}
	}
	// Districts sharing an identical precinct set collapse to one line.
	pctset := map[string][]string{}
	var setOrder []string
	for _, d := range sortedKeys(distpct) {
		key := strings.Join(dedupeSorted(distpct[d]), " ")
		if _, ok := pctset[key]; !ok {
			setOrder = append(setOrder, key)
		}
		pctset[key] = append(pctset[key], d)
	}
	distpctTable := tsvout.NewWriter(filepath.Join(outDir, "distpct.tsv"), sep,
		"district_ids", "precinct_set")
	for _, key := range setOrder {
		distpctTable.AddLine(strings.Join(pctset[key], " "), key)
	}

	distnameTable := tsvout.NewWriter(filepath.Join(outDir, "distname.tsv"), sep,
		"district_id", "district_name").RequireUniqueCol(0)
	for _, d := range districts {
		distnameTable.AddLine(d.ID, d.Name)
	}

	return []*tsvout.Writer{precinctTable, pctconsTable, distpctTable, distnameTable}, nil
}

func storageClient(storageType, credentialsFile, oauthTokenFile string) (filestorage.FileStorage, error) {
	switch storageType {
	case "local":
		return filestorage.NewLocalStorage(), nil
	case "gcs":
		return filestorage.NewGCSClient(), nil
	case "s3":
		return filestorage.NewAWSClient(), nil
	case "drive":
		return filestorage.NewGoogleDriveStorage(credentialsFile, oauthTokenFile)
	}
	return nil, fmt.Errorf("unknown storage type [%s]", storageType)
}

func uploadTables(client filestorage.FileStorage, bucket string, writers []*tsvout.Writer) error {
	for _, w := range writers {
		b, err := ioutil.ReadFile(w.Path())
		if err != nil {
			return fmt.Errorf("failed to read converted table [%s], error %q", w.Path(), err)
		}
		fileName := filepath.Base(w.Path())
		err = try.Do(func(attempt int) (bool, error) {
			_, err := client.Upload(b, bucket, fileName)
			return attempt < maxAttempts, err
		})
		if err != nil {
			return fmt.Errorf("failed to save table [%s] on bucket [%s], error %q", fileName, bucket, err)
		}
		log.Printf("sent table [ %s ]\n", fileName)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeSorted(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []string
	for _, id := range sorted {
		if len(out) == 0 || out[len(out)-1] != id {
			out = append(out, id)
		}
	}
	return out
}
