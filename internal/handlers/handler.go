package handlers

import (
	"context"

	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/rag"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

// JobQueue accepts ingestion jobs for the worker pool.
type JobQueue interface {
	Enqueue(ctx context.Context, job jobModel.IngestJob) error
	GetJob(ctx context.Context, id string) (jobModel.IngestJob, bool)
}

// Handler serves the HTTP surface of the policy assistant.
type Handler struct {
	service   rag.Service
	jobs      JobQueue
	uploadDir string
	logger    *logger_i.Logger
}

func NewHandler(service rag.Service, jobs JobQueue, uploadDir string) *Handler {
	return &Handler{
		service:   service,
		jobs:      jobs,
		uploadDir: uploadDir,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}
