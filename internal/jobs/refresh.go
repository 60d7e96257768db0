package jobs

import (
	"context"
	"log"

	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/cloo-solutions/snowbot/internal/index"
)

// RecordSource fetches the current incident set from the upstream system.
type RecordSource interface {
	Export(ctx context.Context) ([]domain.IncidentRecord, error)
}

// SnapshotSaver persists a fetched incident set.
type SnapshotSaver interface {
	Save(ctx context.Context, records []domain.IncidentRecord) error
}

// IndexBuilder turns incident records into a searchable vector index.
type IndexBuilder interface {
	Build(ctx context.Context, records []domain.IncidentRecord) (*index.VectorIndex, error)
}

// IndexInstaller swaps a freshly built index into the serving path.
type IndexInstaller interface {
	InstallIndex(idx *index.VectorIndex)
}

// Refresher re-runs the full fetch, snapshot, and index cycle and swaps
// the result into the pipeline. The old index keeps serving until the
// swap, so queries never observe a partially built index.
type Refresher struct {
	source    RecordSource
	saver     SnapshotSaver
	builder   IndexBuilder
	installer IndexInstaller
}

// NewRefresher creates a new Refresher instance
func NewRefresher(source RecordSource, saver SnapshotSaver, builder IndexBuilder, installer IndexInstaller) *Refresher {
	return &Refresher{
		source:    source,
		saver:     saver,
		builder:   builder,
		installer: installer,
	}
}

// Reindex fetches incidents, saves the snapshot, rebuilds the index, and
// installs it. It returns the number of indexed documents.
func (r *Refresher) Reindex(ctx context.Context) (int, error) {
	records, err := r.source.Export(ctx)
	if err != nil {
		return 0, err
	}

	if err := r.saver.Save(ctx, records); err != nil {
		return 0, err
	}

	idx, err := r.builder.Build(ctx, records)
	if err != nil {
		return 0, err
	}

	r.installer.InstallIndex(idx)
	return idx.Len(), nil
}

// ProcessJobs implements Processor for the worker's poll loop.
func (r *Refresher) ProcessJobs(ctx context.Context) error {
	count, err := r.Reindex(ctx)
	if err != nil {
		return err
	}

	log.Printf("Snapshot refreshed: %d documents indexed", count)
	return nil
}
