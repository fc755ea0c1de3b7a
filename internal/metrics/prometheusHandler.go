package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var ingestJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ingest_jobs_in_queue",
	Help: "Number of ingestion jobs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_total",
	Help: "How often the dispatcher has been asked to start a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active ingestion workers",
})

var indexedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "indexed_documents",
	Help: "Documents in the record table",
})

var indexedVectors = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "indexed_vectors",
	Help: "Vectors in the published index snapshot",
})

var cachedSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cached_sessions",
	Help: "Conversation sessions held by the workflow engine",
})

var persistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vector_store_persist_failures_total",
	Help: "Failed writes of the vector store bundle",
})

var ingestOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_outcomes_total",
	Help: "Finished ingestions labelled by final status",
}, []string{"status"})

var answerCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "answer_cache_lookups_total",
	Help: "Semantic answer cache lookups labelled by result",
}, []string{"result"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	ingestJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	ingestJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func SetIndexSize(documents, vectors int) {
	indexedDocuments.Set(float64(documents))
	indexedVectors.Set(float64(vectors))
}

func SetCachedSessions(n int) {
	cachedSessions.Set(float64(n))
}

func CapturePersistenceFailure() {
	persistenceFailures.Inc()
}

func CaptureIngestOutcome(status string) {
	ingestOutcomes.WithLabelValues(status).Inc()
}

func CaptureCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	answerCacheLookups.WithLabelValues(result).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingest_job_duration_seconds",
	Help:    "Total time spent on one ingestion job.",
	Buckets: []float64{.5, 1, 5, 10, 30, 60, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline stages.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
