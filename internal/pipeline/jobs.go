package pipeline

import (
	"crypto/sha256"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/diccas/internal/vrt"
	"github.com/dgallion1/diccas/internal/writer"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusConverting JobStatus = "converting"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	// Name is the basename of every output file.
	Name string `json:"name"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData  []byte
	outputDir string
	files     map[writer.Kind]string
	errors    []string
}

// Progress reports what the conversion produced.
type Progress struct {
	Books      int      `json:"books"`
	Paragraphs int      `json:"paragraphs"`
	Sentences  int      `json:"sentences"`
	Tokens     int      `json:"tokens"`
	Pages      int      `json:"pages"`
	Recovered  bool     `json:"recovered"`
	Errors     []string `json:"errors"`
}

// NewJob creates a queued job with a time-ordered ID.
func NewJob(filename, name string, data []byte) (*Job, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("job id: %w", err)
	}
	now := time.Now()
	return &Job{
		ID:          id.String(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Name:        name,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}, nil
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs idle for longer than the TTL and returns them.
func (s *JobStore) Cleanup(now time.Time) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []*Job
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			evicted = append(evicted, job)
		}
	}
	return evicted
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

// SetStats copies the run counts into the job progress.
func (j *Job) SetStats(st vrt.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Books = st.Books
	j.Progress.Paragraphs = st.Paragraphs
	j.Progress.Sentences = st.Sentences
	j.Progress.Tokens = st.Tokens
	j.Progress.Pages = st.Pages
	j.Progress.Recovered = st.Recovered
	j.UpdatedAt = time.Now()
}

// SetFiles records the written outputs.
func (j *Job) SetFiles(dir string, files map[writer.Kind]string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputDir = dir
	j.files = maps.Clone(files)
	j.UpdatedAt = time.Now()
}

// File returns the path of one output, if written.
func (j *Job) File(k writer.Kind) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	p, ok := j.files[k]
	return p, ok
}

// OutputDir returns the directory holding the job's outputs.
func (j *Job) OutputDir() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputDir
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been parsed.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Name        string    `json:"name"`
	ContentHash string    `json:"content_hash"`
	Progress    Progress  `json:"progress"`
	Files       []string  `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = append([]string{}, j.Progress.Errors...)
	files := []string{}
	for _, k := range writer.Kinds {
		if _, ok := j.files[k]; ok {
			files = append(files, string(k))
		}
	}
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Name:        j.Name,
		ContentHash: j.ContentHash,
		Progress:    progress,
		Files:       files,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
