package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/bmcnabb/qcodex/internal/qcode"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting_text"
	StatusParsing     JobStatus = "parsing"
	StatusRegistering JobStatus = "registering"
	StatusExporting   JobStatus = "exporting"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single document extraction.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	records  []qcode.Record
	diags    []qcode.Diagnostic
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Records     int      `json:"records"`
	Diagnostics int      `json:"diagnostics"`
	CodesSeen   int      `json:"codes_seen"`
	Exported    int      `json:"exported"`
	Errors      []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResults stores the parse output on the job.
func (j *Job) SetResults(records []qcode.Record, diags []qcode.Diagnostic) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
	j.diags = diags
	j.Progress.Records = len(records)
	j.Progress.Diagnostics = len(diags)
	j.UpdatedAt = time.Now()
}

// SetCodesSeen records how many distinct codes the document contributed.
func (j *Job) SetCodesSeen(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.CodesSeen = n
	j.UpdatedAt = time.Now()
}

// SetExported records how many rows reached the downstream sink.
func (j *Job) SetExported(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Exported = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Records returns a copy of the job's record rows.
func (j *Job) Records() []qcode.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]qcode.Record, len(j.records))
	copy(out, j.records)
	return out
}

// Diagnostics returns a copy of the job's diagnostic rows.
func (j *Job) Diagnostics() []qcode.Diagnostic {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]qcode.Diagnostic, len(j.diags))
	copy(out, j.diags)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	DocID    string    `json:"doc_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		DocID:    j.DocID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			Records:     j.Progress.Records,
			Diagnostics: j.Progress.Diagnostics,
			CodesSeen:   j.Progress.CodesSeen,
			Exported:    j.Progress.Exported,
			Errors:      errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
