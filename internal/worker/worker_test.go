package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/PolicyRAG/internal/data/store"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/job"
)

// MockIngester records every file handed to the pipeline
type MockIngester struct {
	ProcessedCount int32
	OnIngest       func(ctx context.Context, id, path, filename string) error
}

func (m *MockIngester) IngestFile(ctx context.Context, id, path, filename string) error {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, id, path, filename)
	}
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newJobService() (*job.Service, *store.InMemoryJobStore) {
	jobStore := store.InitInMemoryJobStore()
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.IngestJob, 10),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
	}), jobStore
}

func jobStatus(jobStore *store.InMemoryJobStore, id string) jobModel.JobStatus {
	j, ok := jobStore.GetJob(context.Background(), id)
	if !ok {
		return ""
	}
	return j.Status
}

func TestWorkerPool_Flow(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	minWorkerCount, idleWorkerTimeout = 1, time.Minute

	jobSvc, jobStore := newJobService()
	mockIngest := &MockIngester{OnIngest: func(ctx context.Context, id, path, filename string) error {
		switch filename {
		case "broken.pdf":
			return errors.New("no text")
		case "panic.pdf":
			panic("bad page")
		}
		return nil
	}}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockIngest)
	InitWorkerPool(stopChan, wg)
	ctx := context.Background()

	t.Run("Pool starts with the minimum workers", func(t *testing.T) {
		if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
			t.Errorf("Expected 1 worker, got %d", count)
		}
	})

	t.Run("Worker ingests a queued file", func(t *testing.T) {
		if err := jobSvc.Enqueue(ctx, jobModel.IngestJob{Id: "doc-1", FileName: "policy.pdf", FilePath: "/tmp/policy.pdf"}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "job completion", func() bool { return jobStatus(jobStore, "doc-1") == jobModel.JobStatusComplete })
	})

	t.Run("Failed ingestion is recorded on the job", func(t *testing.T) {
		if err := jobSvc.Enqueue(ctx, jobModel.IngestJob{Id: "doc-2", FileName: "broken.pdf"}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "job failure", func() bool { return jobStatus(jobStore, "doc-2") == jobModel.JobStatusError })
	})

	t.Run("Panicking ingestion does not kill the worker", func(t *testing.T) {
		if err := jobSvc.Enqueue(ctx, jobModel.IngestJob{Id: "doc-3", FileName: "panic.pdf"}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "panic recorded", func() bool { return jobStatus(jobStore, "doc-3") == jobModel.JobStatusError })

		if err := jobSvc.Enqueue(ctx, jobModel.IngestJob{Id: "doc-4", FileName: "after.pdf"}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "next job", func() bool { return jobStatus(jobStore, "doc-4") == jobModel.JobStatusComplete })
	})

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, "second worker", func() bool { return atomic.LoadInt64(&currentWorkerCount) >= 2 })
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if processed := atomic.LoadInt32(&mockIngest.ProcessedCount); processed != 4 {
			t.Errorf("Expected 4 jobs processed, got %d", processed)
		}
	})
}

func TestEnqueue_CancelledWhileQueueFull(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.IngestJob),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := jobSvc.Enqueue(ctx, jobModel.IngestJob{Id: "doc-1", FileName: "policy.pdf"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if got := jobStatus(jobStore, "doc-1"); got != jobModel.JobStatusQueued {
		t.Errorf("Expected queued record, got %q", got)
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	minWorkerCount, idleWorkerTimeout = 0, 20*time.Millisecond
	defer func() { minWorkerCount, idleWorkerTimeout = 1, time.Minute }()

	jobSvc, _ := newJobService()
	InitServices(jobSvc, &MockIngester{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	createWorker()
	waitFor(t, "idle retirement", func() bool { return atomic.LoadInt64(&currentWorkerCount) == 0 })
	wg.Wait()
}

func TestWorker_IdleKeepsMinimum(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	minWorkerCount, idleWorkerTimeout = 1, 10*time.Millisecond
	defer func() { idleWorkerTimeout = time.Minute }()

	jobSvc, _ := newJobService()
	InitServices(jobSvc, &MockIngester{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stop := make(chan bool)
	stopWorkerChannel = stop

	createWorker()
	time.Sleep(50 * time.Millisecond)
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("Expected the last worker to stay, got %d", count)
	}
	close(stop)
	wg.Wait()
}
