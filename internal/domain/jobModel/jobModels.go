package jobModel

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"
)

// IngestJob asks a worker to chunk and index one uploaded file.
// Id is the document id the upload was registered under.
type IngestJob struct {
	Id          string    `json:"id"`
	TraceId     string    `json:"trace_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	Size        int64     `json:"size"`
	CreatedTime time.Time `json:"created_time"`
	Status      JobStatus `json:"status"`
}

type JobStore interface {
	SaveJob(ctx context.Context, job IngestJob) error
	GetJob(ctx context.Context, jobId string) (IngestJob, bool)
	DeleteJob(ctx context.Context, jobId string)
}
