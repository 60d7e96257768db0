// Package snapshot persists one fetch of incident records as a flat CSV file
// and reloads it for indexing.
package snapshot

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cloo-solutions/snowbot/internal/domain"
)

// Archiver stores snapshot files in remote object storage.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
}

// Store persists incident records to a CSV file. The header row is the field
// order of the first record; every subsequent record must carry exactly the
// same field set.
type Store struct {
	path     string
	archiver Archiver
}

// NewStore creates a Store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewStoreWithArchiver creates a Store that also uploads each saved snapshot
// to remote storage.
func NewStoreWithArchiver(path string, archiver Archiver) *Store {
	return &Store{path: path, archiver: archiver}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Save serializes records to CSV. The first record's field order is the
// canonical column set. Returns ErrEmptySnapshot for zero records and
// ErrSchemaMismatch when a record's field set differs from the canonical one.
func (s *Store) Save(ctx context.Context, records []domain.IncidentRecord) error {
	if len(records) == 0 {
		return domain.ErrEmptySnapshot
	}

	columns := records[0].Fields
	for i, rec := range records {
		if !rec.HasSchema(columns) {
			return fmt.Errorf("record %d (sys_id %q): %w", i, rec.SysID(), domain.ErrSchemaMismatch)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = rec.Value(col)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	if s.archiver != nil {
		key := archiveKey(time.Now().UTC())
		if err := s.archiver.Archive(ctx, key, buf.Bytes()); err != nil {
			// Archival is best effort; the local snapshot is authoritative.
			log.Printf("snapshot: archive upload failed: %v", err)
		} else {
			log.Printf("snapshot: archived as %s", key)
		}
	}

	return nil
}

// Load reconstructs records from the persisted CSV. Round-trips with Save
// preserve every field's string value exactly, including empty strings.
func (s *Store) Load() ([]domain.IncidentRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot file has no header: %w", domain.ErrEmptySnapshot)
	}

	columns := rows[0]
	records := make([]domain.IncidentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			values[col] = row[i]
		}
		records = append(records, domain.NewIncidentRecord(columns, values))
	}
	return records, nil
}

// Restore downloads an archived snapshot by key and installs it as the local
// snapshot file.
func (s *Store) Restore(ctx context.Context, key string) error {
	if s.archiver == nil {
		return fmt.Errorf("no archiver configured")
	}
	data, err := s.archiver.Retrieve(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to retrieve archived snapshot %q: %w", key, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

func archiveKey(t time.Time) string {
	return fmt.Sprintf("snapshots/%s.csv", t.Format("20060102T150405Z"))
}
