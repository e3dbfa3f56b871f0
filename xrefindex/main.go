package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/datastore"
	"github.com/OSVTAC/osv-data-converter/config"
	"github.com/OSVTAC/osv-data-converter/emsfile"
	"github.com/OSVTAC/osv-data-converter/extid"
)

func main() {
	zipFile := flag.String("zip", "", "path of the raw export zip")
	inDir := flag.String("inDir", "", "directory with the expanded export files")
	configFile := flag.String("config", "", "path of the conversion profile")
	local := flag.Bool("local", false, "index into a local SQLite file instead of Datastore")
	dbFile := flag.String("dbFile", "xrefindex.db", "SQLite file receiving the index when -local is set")
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
	repo, err := newRepository(*local, *dbFile)
	if err != nil {
		log.Fatalf("failed to create bindings repository, error %q", err)
	}
	if err := run(source, *configFile, repo); err != nil {
		log.Fatalf("failed to index external IDs, error %v", err)
	}
}

func newRepository(local bool, dbFile string) (bindingsRepository, error) {
	if local {
		return newSQLiteRepository(dbFile)
	}
	projectID := os.Getenv("PROJECT_ID")
	if projectID == "" {
		return nil, fmt.Errorf("missing PROJECT_ID environment variable")
	}
	client, err := datastore.NewClient(context.Background(), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore client for project [%s], error %q", projectID, err)
	}
	return newDatastoreRepository(client), nil
}

func run(source, configFile string, repo bindingsRepository) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	table, err := cfg.PrefixTable()
	if err != nil {
		return err
	}
	src, err := emsfile.OpenSource(source)
	if err != nil {
		return fmt.Errorf("failed to open export source [%s], error %q", source, err)
	}
	defer src.Close()
	resolver := extid.NewResolver(table)
	if err := collectBindings(src, resolver); err != nil {
		return err
	}
	index, err := resolver.Build()
	if err != nil {
		return err
	}
	bindings := index.Bindings()
	for i := range bindings {
		if err := repo.save(&bindings[i]); err != nil {
			return err
		}
	}
	log.Printf("indexed [ %d ] external ID bindings\n", len(bindings))
	return nil
}

// collectBindings walks every catalog carrying external IDs and feeds
// the resolver. Validation runs later in one pass over the whole set so
// a reported collision never depends on catalog order.
func collectBindings(src *emsfile.Source, resolver *extid.Resolver) error {
	precincts, err := src.Precincts()
	if err != nil {
		return err
	}
	for _, r := range precincts {
		if _, err := resolver.Add("precinct", r.PrecinctID, r.ExtPrecinctIDs); err != nil {
			return err
		}
	}
	districts, err := src.Districts()
	if err != nil {
		return err
	}
	for _, r := range districts {
		if _, err := resolver.Add("district", r.DistrictID, r.ExtDistrictIDs); err != nil {
			return err
		}
	}
	contests, err := src.Contests()
	if err != nil {
		return err
	}
	for _, r := range contests {
		if _, err := resolver.Add("contest", r.ContestID, r.ExtContestIDs); err != nil {
			return err
		}
	}
	return nil
}
