package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD        = slog.LevelInfo
	LOG_LEVEL_DEV         = slog.LevelDebug
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 2
	BURST_RATE_LIMIT      = 5
	CacheSimilarityCutoff = 0.97

	//vector index bundle
	VectorStorePath  = "vector_store"
	IndexVectorsFile = "index.vec"
	IndexDocsFile    = "index.docs"
	MetadataFile     = "metadata.db"

	//retrieval
	RetrievalK        = 5
	SourcePreviewSize = 200

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200
	//pages that take longer than this are skipped
	PageExtractTimeout = 10 * time.Second

	//uploads
	UploadDir         = "uploads"
	MaxFileSize int64 = 10 << 20 //10mb
	//whole multipart request, several files at once
	MaxUploadRequestSize int64 = 100 << 20
	MultipartMemory      int64 = 32 << 20
	EnqueueTimeout             = 5 * time.Second

	EmbeddingOutputDimensionality int32 = 768
	EmbeddingBatchSize                  = 100
	EmbeddingConcurrency                = 4
	EmbeddingRetryDelay                 = 5 * time.Second

	//ingestion worker pool
	RequestsPerNewWorkerCount int64 = 2
	MaxWorkerCount            int64 = 4
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestTimeout                   = 10 * time.Minute
	BufferLimit                     = 100

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 120 * time.Second //answers can take a while
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	ServerListenAddr       = ":8000"

	//sessions
	MaxSessions        = 1000
	SessionTTL         = 2 * time.Hour
	HistoryTokenBudget = 3000
	JanitorInterval    = 5 * time.Minute

	//semantic cache
	QdrantHost           = "localhost"
	QdrantGrpcPort       = 6334
	QdrantUseTLS         = false
	QdrantPoolSize       = 1
	SemanticCacheName    = "policy-answer-cache"
	QdrantConnectTimeout = 3 * time.Second

	//llm
	ProviderPingTimeout          = 10 * time.Second
	GeminiModelName              = "gemini-2.5-flash"
	OpenAIModelName              = "gpt-4o-mini"
	GroqModelName                = "llama-3.3-70b-versatile"
	GroqBaseURL                  = "https://api.groq.com/openai/v1/"
	ModelTemperature     float32 = 0.1

	//embeddings
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost        = "127.0.0.1"
	redisPort        = "6379"
	RedisAddr        = redisHost + ":" + redisPort
	RedisSessionDB   = 1
	RedisSessionTTL  = 24 * time.Hour
	RedisJobDB       = 2
	RedisJobTTL      = 24 * time.Hour
	RedisPingTimeout = 3 * time.Second

	ConfigFile = "config.yaml"
)
