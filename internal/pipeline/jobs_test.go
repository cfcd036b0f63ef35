package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/diccas/internal/vrt"
	"github.com/dgallion1/diccas/internal/writer"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job, err := NewJob("kitab.xml", "corpus_DiCCAS", []byte("<TEI/>"))
	if err != nil {
		t.Fatal(err)
	}
	id, err := uuid.Parse(job.ID)
	if err != nil {
		t.Fatalf("job ID %q is not a UUID: %v", job.ID, err)
	}
	if id.Version() != 7 {
		t.Errorf("expected UUIDv7, got version %d", id.Version())
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.ContentHash != ContentHashHex([]byte("<TEI/>")) {
		t.Error("content hash not set from data")
	}
	if string(job.FileData()) != "<TEI/>" {
		t.Errorf("unexpected file data %q", job.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusConverting, "converting"},
		{StatusWriting, "writing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Status.Done() {
		t.Error("completed should be terminal")
	}
	if StatusWriting.Done() {
		t.Error("writing should not be terminal")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parsing: bad tag")
	job.AddError("writing: disk full")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parsing: bad tag" {
		t.Errorf("expected first error %q, got %q", "parsing: bad tag", snap.Progress.Errors[0])
	}

	// The snapshot must not alias the job's slice.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "parsing: bad tag" {
		t.Error("snapshot errors alias job state")
	}
}

func TestJob_SetStats(t *testing.T) {
	job := &Job{ID: "stats-test"}
	job.SetStats(vrt.Stats{Books: 2, Paragraphs: 5, Sentences: 7, Tokens: 90, Pages: 3, Recovered: true})

	p := job.Snapshot().Progress
	if p.Books != 2 || p.Paragraphs != 5 || p.Sentences != 7 || p.Tokens != 90 || p.Pages != 3 {
		t.Errorf("unexpected progress %+v", p)
	}
	if !p.Recovered {
		t.Error("expected recovered flag")
	}
}

func TestJob_Files(t *testing.T) {
	job := &Job{ID: "files-test"}
	job.SetFiles("/out/files-test", map[writer.Kind]string{
		writer.Conllu: "/out/files-test/c.conllu",
		writer.Vert:   "/out/files-test/c.vert",
	})

	if got, ok := job.File(writer.Vert); !ok || got != "/out/files-test/c.vert" {
		t.Errorf("unexpected vert file %q %v", got, ok)
	}
	if _, ok := job.File(writer.JSON); ok {
		t.Error("json was never written")
	}
	snap := job.Snapshot()
	if strings.Join(snap.Files, ",") != "vert,conllu" {
		t.Errorf("expected files in write order, got %v", snap.Files)
	}
	if job.OutputDir() != "/out/files-test" {
		t.Errorf("unexpected output dir %q", job.OutputDir())
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil slices.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Files == nil {
		t.Error("expected non-nil files slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(time.Minute)
	now := time.Now()

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: now.Add(-2 * time.Minute)}
	running := &Job{ID: "slow", Status: StatusConverting, UpdatedAt: now.Add(-2 * time.Minute)}
	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: now}
	store.Put(expired)
	store.Put(running)
	store.Put(fresh)

	evicted := store.Cleanup(now)

	if len(evicted) != 1 || evicted[0].ID != "old" {
		t.Fatalf("expected only the old job evicted, got %v", evicted)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("slow") == nil {
		t.Error("unfinished job must survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 jobs, got %d", store.Len())
	}
}
