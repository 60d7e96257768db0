package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/cloo-solutions/snowbot/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRecordSource is a mock implementation of RecordSource
type MockRecordSource struct {
	mock.Mock
}

func (m *MockRecordSource) Export(ctx context.Context) ([]domain.IncidentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncidentRecord), args.Error(1)
}

// MockSnapshotSaver is a mock implementation of SnapshotSaver
type MockSnapshotSaver struct {
	mock.Mock
}

func (m *MockSnapshotSaver) Save(ctx context.Context, records []domain.IncidentRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockIndexBuilder is a mock implementation of IndexBuilder
type MockIndexBuilder struct {
	mock.Mock
}

func (m *MockIndexBuilder) Build(ctx context.Context, records []domain.IncidentRecord) (*index.VectorIndex, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*index.VectorIndex), args.Error(1)
}

// MockIndexInstaller is a mock implementation of IndexInstaller
type MockIndexInstaller struct {
	mock.Mock
}

func (m *MockIndexInstaller) InstallIndex(idx *index.VectorIndex) {
	m.Called(idx)
}

type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func testRecords() []domain.IncidentRecord {
	fields := []string{"sys_id", "short_description"}
	return []domain.IncidentRecord{
		domain.NewIncidentRecord(fields, map[string]string{"sys_id": "a1", "short_description": "VPN down"}),
		domain.NewIncidentRecord(fields, map[string]string{"sys_id": "b2", "short_description": "Printer jam"}),
	}
}

func testIndex(t *testing.T, records []domain.IncidentRecord) *index.VectorIndex {
	t.Helper()
	idx, err := index.NewIndexer(stubEmbedder{}).Build(context.Background(), records)
	require.NoError(t, err)
	return idx
}

func TestRefresher_Reindex_Success(t *testing.T) {
	records := testRecords()
	idx := testIndex(t, records)

	source := new(MockRecordSource)
	saver := new(MockSnapshotSaver)
	builder := new(MockIndexBuilder)
	installer := new(MockIndexInstaller)

	source.On("Export", mock.Anything).Return(records, nil)
	saver.On("Save", mock.Anything, records).Return(nil)
	builder.On("Build", mock.Anything, records).Return(idx, nil)
	installer.On("InstallIndex", idx).Return()

	refresher := NewRefresher(source, saver, builder, installer)
	count, err := refresher.Reindex(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	source.AssertExpectations(t)
	saver.AssertExpectations(t)
	builder.AssertExpectations(t)
	installer.AssertExpectations(t)
}

func TestRefresher_Reindex_ExportFailure(t *testing.T) {
	source := new(MockRecordSource)
	saver := new(MockSnapshotSaver)
	builder := new(MockIndexBuilder)
	installer := new(MockIndexInstaller)

	source.On("Export", mock.Anything).Return(nil, domain.ErrUpstreamAPI)

	refresher := NewRefresher(source, saver, builder, installer)
	count, err := refresher.Reindex(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstreamAPI)
	assert.Zero(t, count)
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	installer.AssertNotCalled(t, "InstallIndex", mock.Anything)
}

func TestRefresher_Reindex_SaveFailure(t *testing.T) {
	records := testRecords()

	source := new(MockRecordSource)
	saver := new(MockSnapshotSaver)
	builder := new(MockIndexBuilder)
	installer := new(MockIndexInstaller)

	source.On("Export", mock.Anything).Return(records, nil)
	saver.On("Save", mock.Anything, records).Return(errors.New("disk full"))

	refresher := NewRefresher(source, saver, builder, installer)
	_, err := refresher.Reindex(context.Background())

	assert.Error(t, err)
	builder.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
	installer.AssertNotCalled(t, "InstallIndex", mock.Anything)
}

func TestRefresher_Reindex_BuildFailure(t *testing.T) {
	records := testRecords()

	source := new(MockRecordSource)
	saver := new(MockSnapshotSaver)
	builder := new(MockIndexBuilder)
	installer := new(MockIndexInstaller)

	source.On("Export", mock.Anything).Return(records, nil)
	saver.On("Save", mock.Anything, records).Return(nil)
	builder.On("Build", mock.Anything, records).Return(nil, domain.ErrIndexBuild)

	refresher := NewRefresher(source, saver, builder, installer)
	_, err := refresher.Reindex(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexBuild)
	installer.AssertNotCalled(t, "InstallIndex", mock.Anything)
}

func TestRefresher_ProcessJobs(t *testing.T) {
	records := testRecords()
	idx := testIndex(t, records)

	source := new(MockRecordSource)
	saver := new(MockSnapshotSaver)
	builder := new(MockIndexBuilder)
	installer := new(MockIndexInstaller)

	source.On("Export", mock.Anything).Return(records, nil)
	saver.On("Save", mock.Anything, records).Return(nil)
	builder.On("Build", mock.Anything, records).Return(idx, nil)
	installer.On("InstallIndex", idx).Return()

	refresher := NewRefresher(source, saver, builder, installer)

	assert.NoError(t, refresher.ProcessJobs(context.Background()))
}

func TestWorker_StartStop(t *testing.T) {
	processor := new(MockProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(processor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	worker.Stop()
	wg.Wait()

	processor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_ContextCancellation(t *testing.T) {
	processor := new(MockProcessor)
	processor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(processor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()
	wg.Wait()

	processor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// MockProcessor is a mock implementation of Processor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessJobs(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
