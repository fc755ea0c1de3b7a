package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	jobmodel "github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
)

func executeJob(job jobmodel.IngestJob) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, ingestTimeout)
	defer cancel()
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id, "file", job.FileName)
	log.Debug("Processing ingestion job")

	job = saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if err := runIngestion(ctx, job); err != nil {
		log.Error("Ingestion job failed", "error", err)
		job = saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	job = saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

// runIngestion shields the pool from a panicking pipeline.
func runIngestion(ctx context.Context, job jobmodel.IngestJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion panicked: %v", r)
		}
	}()
	return _ingester.IngestFile(ctx, job.Id, job.FilePath, job.FileName)
}

func removeWorker(reason string) {
	atomic.AddInt64(&currentWorkerCount, -1)
	finishWorker(reason)
}

// finishWorker releases a worker whose slot was already given back.
func finishWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.IngestJob, jobStatus jobmodel.JobStatus) jobmodel.IngestJob {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("Failed to update job status", "jobId", job.Id, "err", err)
	}
	return job
}
