package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

// Service is the ingestion queue shared by the upload handler and the worker pool.
type Service struct {
	JobChannel        chan jobModel.IngestJob
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.IngestJob
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records job as queued and hands it to the worker pool. It blocks
// while the queue is full, until ctx is done.
func (s *Service) Enqueue(ctx context.Context, job jobModel.IngestJob) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id)
	job.Status = jobModel.JobStatusQueued
	if job.CreatedTime.IsZero() {
		job.CreatedTime = time.Now()
	}
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Warn("Could not record queued job", "error", err)
	}

	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		return fmt.Errorf("queueing ingestion of %s: %w", job.FileName, ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	log.Info("Ingestion job queued", "file", job.FileName)

	// a backlog or every few requests asks for another worker
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || len(s.JobChannel) > 1 {
		s.signalDispatcher()
	}
	return nil
}

func (s *Service) signalDispatcher() {
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		// a signal is already pending
	}
}

// GetJob returns the last recorded state of a job.
func (s *Service) GetJob(ctx context.Context, id string) (jobModel.IngestJob, bool) {
	return s.JobStore.GetJob(ctx, id)
}
