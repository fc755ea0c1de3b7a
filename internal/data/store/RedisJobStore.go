package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/data/redisStore"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

const jobKeyPrefix = "ingest-job:"

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// NewRedisJobStore returns nil when store is nil so callers can fall back to memory.
func NewRedisJobStore(store *redisStore.Store) *RedisJobStore {
	if store == nil {
		return nil
	}
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.IngestJob) error {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, jobKeyPrefix+job.Id, data, config.RedisJobTTL)
	if err == nil {
		log.Debug("Saved ingest job to Redis", "status", job.Status)
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.IngestJob, bool) {
	var job jobModel.IngestJob
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("jobId", jobId)
	val, err := s.store.Get(ctx, jobKeyPrefix+jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("Reading ingest job failed", "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Decoding ingest job failed", "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobId string) {
	if err := s.store.Del(ctx, jobKeyPrefix+jobId); err != nil {
		s.logger.Error("Error deleting ingest job from Redis", "jobId", jobId, "error", err)
		return
	}
	s.logger.Debug("Ingest job deleted from Redis", "jobId", jobId)
}
