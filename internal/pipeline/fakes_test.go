package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/assetdesk/importer/internal/alias"
	"github.com/assetdesk/importer/internal/cleaning"
	"github.com/assetdesk/importer/internal/filestore"
)

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*Job)}
}

func (s *memJobStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *memJobStore) Get(ctx context.Context, jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}
	cp := *job
	cp.Errors = append([]string(nil), job.Errors...)
	return &cp, nil
}

func (s *memJobStore) List(ctx context.Context, limit int) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memJobStore) SetStatus(ctx context.Context, jobID string, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}
	if job.Status != from {
		return fmt.Errorf("%w: job is %s, not %s", ErrConflict, job.Status, from)
	}
	job.Status = to
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memJobStore) SetPhase(ctx context.Context, jobID string, phase Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}
	job.Phase = phase
	return nil
}

func (s *memJobStore) SetProgress(ctx context.Context, jobID string, progress Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}
	if progress.ProcessedRows < job.Progress.ProcessedRows {
		return fmt.Errorf("progress went backwards: %d -> %d", job.Progress.ProcessedRows, progress.ProcessedRows)
	}
	job.Progress = progress
	return nil
}

func (s *memJobStore) AppendError(ctx context.Context, jobID string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}
	job.Errors = append(job.Errors, msg)
	return nil
}

type memStagingStore struct {
	mu   sync.Mutex
	jobs *memJobStore
	rows map[string][]StagedRow
}

func newMemStagingStore(jobs *memJobStore) *memStagingStore {
	return &memStagingStore{jobs: jobs, rows: make(map[string][]StagedRow)}
}

func (s *memStagingStore) Replace(ctx context.Context, jobID string, rows []StagedRow) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != StatusRunning {
		return fmt.Errorf("%w: job is %s", ErrConflict, job.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[jobID] = append([]StagedRow(nil), rows...)
	return nil
}

func (s *memStagingStore) List(ctx context.Context, jobID string, limit int) ([]StagedRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[jobID]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return append([]StagedRow(nil), rows...), nil
}

func (s *memStagingStore) ListImportable(ctx context.Context, jobID string) ([]StagedRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StagedRow
	for _, r := range s.rows[jobID] {
		if r.WillImport {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStagingStore) Counts(ctx context.Context, jobID string) (total, valid, willImport int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[jobID] {
		total++
		if r.IsValid {
			valid++
		}
		if r.WillImport {
			willImport++
		}
	}
	return total, valid, willImport, nil
}

func (s *memStagingStore) Clear(ctx context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.rows[jobID])
	delete(s.rows, jobID)
	return n, nil
}

type memAssetStore struct {
	mu     sync.Mutex
	assets map[string]map[string]string
	// failTags forces an upsert error for specific asset tags.
	failTags map[string]bool
}

func newMemAssetStore() *memAssetStore {
	return &memAssetStore{
		assets:   make(map[string]map[string]string),
		failTags: make(map[string]bool),
	}
}

func (s *memAssetStore) UpsertByAssetTag(ctx context.Context, fields map[string]string) error {
	tag := fields["assetTag"]
	if tag == "" {
		return fmt.Errorf("missing asset tag")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTags[tag] {
		return fmt.Errorf("simulated write failure for %s", tag)
	}
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	s.assets[tag] = cp
	return nil
}

func (s *memAssetStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

type memConfigStore struct {
	aliases []alias.Mapping
	rules   []cleaning.Rule
}

func defaultConfig() *memConfigStore {
	return &memConfigStore{aliases: alias.Defaults(), rules: cleaning.Defaults()}
}

func (s *memConfigStore) ListAliases(ctx context.Context) ([]alias.Mapping, error) {
	return s.aliases, nil
}

func (s *memConfigStore) ListRules(ctx context.Context) ([]cleaning.Rule, error) {
	return s.rules, nil
}

type memFileStore struct {
	files map[string][][]string
	// failReads simulates files that stat fine but cannot be read.
	failReads map[string]error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{
		files:     make(map[string][][]string),
		failReads: make(map[string]error),
	}
}

func (s *memFileStore) List(ctx context.Context) ([]filestore.FileInfo, error) {
	out := make([]filestore.FileInfo, 0, len(s.files))
	for id := range s.files {
		out = append(out, filestore.FileInfo{ID: id, Name: id})
	}
	return out, nil
}

func (s *memFileStore) Stat(ctx context.Context, fileID string) (filestore.FileInfo, error) {
	if _, ok := s.files[fileID]; !ok {
		return filestore.FileInfo{}, fmt.Errorf("%s: %w", fileID, fs.ErrNotExist)
	}
	return filestore.FileInfo{ID: fileID, Name: fileID}, nil
}

func (s *memFileStore) Read(ctx context.Context, fileID string) ([][]string, error) {
	if err, ok := s.failReads[fileID]; ok {
		return nil, err
	}
	records, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", fileID, fs.ErrNotExist)
	}
	return records, nil
}
