package api

// requests---------------------

type ChatRequest struct {
	Message   string `json:"message" validate:"required" example:"What is my deductible?"`
	SessionID string `json:"session_id,omitempty" example:"default"`
}

// responses--------------------

type DocumentSource struct {
	Id             string  `json:"id" example:"policy.pdf_3"`
	DocumentName   string  `json:"documentName" example:"policy.pdf"`
	Content        string  `json:"content"`
	Page           *int    `json:"page,omitempty" example:"2"`
	RelevanceScore float32 `json:"relevanceScore" example:"0.82"`
}

type ChatResponse struct {
	Success bool             `json:"success"`
	Answer  string           `json:"answer"`
	Sources []DocumentSource `json:"sources"`
}

type UploadedDocument struct {
	Id       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type UploadResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	DocumentIds []string           `json:"document_ids"`
	Documents   []UploadedDocument `json:"documents"`
}

type DocumentStatusResponse struct {
	DocumentId  string `json:"document_id"`
	Filename    string `json:"filename"`
	Status      string `json:"status" example:"ready"`
	ChunksCount int    `json:"chunks_count"`
	Error       string `json:"error,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
	Size        int64  `json:"size"`
	JobStatus   string `json:"job_status,omitempty" example:"COMPLETE"`
}

type DocumentsResponse struct {
	Documents []DocumentStatusResponse `json:"documents"`
	Total     int                      `json:"total"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Version        string `json:"version"`
	Timestamp      string `json:"timestamp"`
	HasDocuments   bool   `json:"has_documents"`
	HasLLM         bool   `json:"llm_configured"`
	RagInitialized bool   `json:"rag_initialized"`
}

type PingResponse struct {
	Message        string `json:"message" example:"pong"`
	RagInitialized bool   `json:"rag_initialized"`
	Timestamp      string `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code" example:"400"`
	Error   string `json:"error" example:"Empty query not allowed."`
	TraceId string `json:"trace_id,omitempty"`
}
