package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantfold/rebalancer/pkg/config"
	"github.com/quantfold/rebalancer/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
	})
}

func TestAddJob(t *testing.T) {
	s := New(testLogger())

	job := &stubJob{name: "rebalance", schedule: "0 0 17 * * MON-FRI"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0] != "rebalance" {
		t.Errorf("Jobs = %v, want [rebalance]", jobs)
	}
}

func TestAddJob_Duplicate(t *testing.T) {
	s := New(testLogger())

	job := &stubJob{name: "rebalance", schedule: "@hourly"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Error("expected error for duplicate job")
	}
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(testLogger())

	job := &stubJob{name: "bad", schedule: "not a cron expression"}
	if err := s.AddJob(job); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestRunJob_NotFound(t *testing.T) {
	s := New(testLogger())

	if err := s.RunJob("missing"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "rebalance", schedule: "@hourly"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.runJob(job)

	history, err := s.History("rebalance")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	latest, ok := history.Latest()
	if !ok {
		t.Fatal("expected a recorded result")
	}
	if !latest.Success {
		t.Errorf("Success = false, want true: %s", latest.Error)
	}
	if job.runs != 1 {
		t.Errorf("runs = %d, want 1", job.runs)
	}
}

func TestRunJob_RetriesOnFailure(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "flaky", schedule: "@hourly", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.runJob(job)

	// Initial attempt plus maxRetries.
	if job.runs != s.maxRetries+1 {
		t.Errorf("runs = %d, want %d", job.runs, s.maxRetries+1)
	}

	history, _ := s.History("flaky")
	latest, _ := history.Latest()
	if latest.Success {
		t.Error("expected failed result")
	}
	if latest.Error != "boom" {
		t.Errorf("Error = %q, want boom", latest.Error)
	}
	if rate := history.SuccessRate(); rate != 0.0 {
		t.Errorf("SuccessRate = %f, want 0", rate)
	}
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{JobName: "j", Success: true})
	}
	if len(h.Results) != historyLimit {
		t.Errorf("len = %d, want %d", len(h.Results), historyLimit)
	}
}
