package main

import (
	"database/sql"
	"fmt"

	"github.com/OSVTAC/osv-data-converter/extid"
	_ "modernc.org/sqlite"
)

type sqliteRepository struct {
	db *sql.DB
}

func newSQLiteRepository(path string) (bindingsRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite file [%s], error %q", path, err)
	}
	repo := &sqliteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (s *sqliteRepository) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ext_binding (
		org TEXT NOT NULL,
		ext_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		local_id TEXT NOT NULL,
		PRIMARY KEY(org, ext_id)
	);`)
	if err != nil {
		return fmt.Errorf("failed to create binding table, error %q", err)
	}
	return nil
}

func (s *sqliteRepository) save(binding *extid.Binding) error {
	_, err := s.db.Exec(
		`INSERT INTO ext_binding(org, ext_id, kind, local_id)
		 VALUES(?, ?, ?, ?)
		 ON CONFLICT(org, ext_id) DO UPDATE SET kind=excluded.kind, local_id=excluded.local_id`,
		binding.Org, binding.ExtID, binding.Kind, binding.LocalID,
	)
	if err != nil {
		return fmt.Errorf("failed to save binding for external ID [%s:%s], error %q", binding.Org, binding.ExtID, err)
	}
	return nil
}

func (s *sqliteRepository) findByExtID(org, extID string) (*extid.Binding, error) {
	binding := &extid.Binding{Org: org, ExtID: extID}
	err := s.db.QueryRow(
		`SELECT kind, local_id FROM ext_binding WHERE org = ? AND ext_id = ?`,
		org, extID,
	).Scan(&binding.Kind, &binding.LocalID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no binding found for external ID [%s:%s]", org, extID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query binding for external ID [%s:%s], error %q", org, extID, err)
	}
	return binding, nil
}
