package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OSVTAC/osv-data-converter/assoc"
	"github.com/OSVTAC/osv-data-converter/config"
	"github.com/OSVTAC/osv-data-converter/district"
	"github.com/OSVTAC/osv-data-converter/emsfile"
	"github.com/OSVTAC/osv-data-converter/filestorage"
	"github.com/OSVTAC/osv-data-converter/precinct"
	"github.com/OSVTAC/osv-data-converter/rotation"
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
		log.Fatalf("failed to convert ballot type tables, error %v", err)
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

// buildTables runs the association builder over the export and buffers
// the four ballot type tables. Nothing reaches disk here.
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
	precincts, _, err := precinct.Normalize(recs, cfg.PrecinctConsolidation, rule)
	if err != nil {
		return nil, err
	}
	master, err := src.Contests()
	if err != nil {
		return nil, err
	}
	byBallotType, err := src.BallotTypeContests()
	if err != nil {
		return nil, err
	}
	rotations, err := rotation.NewResolver(cfg)
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
	ordinals := districtOrdinals(district.Normalize(names, cfg.DistrictPortionLabels))

	tables, err := assoc.Build(assoc.Input{
		Precincts:        precincts,
		Master:           master,
		ByBallotType:     byBallotType,
		Rotations:        rotations,
		DistrictOrdinals: ordinals,
		Digits:           cfg.Digits(),
		SuffixParties:    cfg.SuffixParties(),
		PrecinctOrder:    cfg.PrecinctDisplayOrder,
		EmitUnsuffixed:   true,
	})
	if err != nil {
		return nil, err
	}

	sep := cfg.Separator()
	btpct := tsvout.NewWriter(filepath.Join(outDir, "btpct.tsv"), sep,
		"ballot_type", "precinct_ids").RequireUniqueCol(0)
	for _, row := range tables.BTPct {
		btpct.AddLine(row.BallotType, strings.Join(row.IDs, " "))
	}
	btcont := tsvout.NewWriter(filepath.Join(outDir, "btcont.tsv"), sep,
		"ballot_type", "contest_rot_ids").RequireUniqueCol(0)
	for _, row := range tables.BTCont {
		btcont.AddLine(row.BallotType, strings.Join(row.IDs, " "))
	}
	contlist := tsvout.NewWriter(filepath.Join(outDir, "contlist.tsv"), sep,
		"contest_id", "contest_title").RequireUniqueCol(0)
	for _, c := range tables.Contests {
		contlist.AddLine(c.ID, c.Title)
	}
	candorder := tsvout.NewWriter(filepath.Join(outDir, "candorder.tsv"), sep,
		"contest_id", "candidate_ids").RequireUniqueCol(0)
	for _, row := range tables.CandOrder {
		candorder.AddLine(row.ContestID, strings.Join(row.CandidateIDs, " "))
	}
	return []*tsvout.Writer{btpct, btcont, contlist, candorder}, nil
}

// districtOrdinals maps a district to its numeric portion, which is the
// rotation shift of contests elected by that district. Districts with a
// text portion or none have no ordinal.
func districtOrdinals(districts []district.District) map[string]int {
	ordinals := make(map[string]int)
	for _, d := range districts {
		n, err := strconv.Atoi(strings.TrimSpace(d.Portion))
		if err != nil {
			continue
		}
		ordinals[d.ID] = n
	}
	return ordinals
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
