package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gmcandra/mebelshop/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var echoRuns atomic.Int32

type echoJob struct {
	Val string
}

func (echoJob) Name() string { return "test.echo" }

func (j *echoJob) Handle(context.Context) error {
	echoRuns.Add(1)
	return nil
}

type failJob struct{}

func (failJob) Name() string { return "test.fail" }

func (failJob) Handle(context.Context) error {
	return errors.New("always fails")
}

func init() {
	queue.Register("test.echo", func() queue.Job { return &echoJob{} })
	queue.Register("test.fail", func() queue.Job { return &failJob{} })
	queue.StartWorkers(context.Background(), 2)
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	before := echoRuns.Load()

	if err := queue.Dispatch(&echoJob{Val: "hello"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for echoRuns.Load() == before {
		if time.Now().After(deadline) {
			t.Fatal("job was never processed")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestFailedJobRecorded(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(queue.FailedJobs()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected the job to land in FailedJobs")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
