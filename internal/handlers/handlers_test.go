package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/akolanti/PolicyRAG/internal/api"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func newRouter(h *handlers.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.RootHandler)
	r.Get("/health", h.HealthHandler)
	r.Get("/ping", h.PingHandler)
	r.Post("/chat", h.ChatHandler)
	r.Post("/upload", h.UploadHandler)
	r.Get("/documents", h.ListDocumentsHandler)
	r.Get("/documents/{id}/status", h.DocumentStatusHandler)
	r.Delete("/documents/{id}", h.DeleteDocumentHandler)
	r.Delete("/sessions/{id}", h.ClearSessionHandler)
	return r
}

func serve(t *testing.T, svc *MockService, queue *MockQueue, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	h := handlers.NewHandler(svc, queue, t.TempDir())
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace"))
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestChatHandler_Scenarios(t *testing.T) {
	page := 2
	tests := []struct {
		name         string
		body         string
		generate     func(ctx context.Context, q, s string) (chatModel.Answer, error)
		expectedCode int
		wantSession  string
	}{
		{
			name:         "Malformed_Body",
			body:         `{"message":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Empty_Message",
			body:         `{"message":"   "}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "No_Documents",
			body: `{"message":"what is covered?"}`,
			generate: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{}, ragErrors.ErrNoDocuments
			},
			expectedCode: http.StatusFailedDependency,
		},
		{
			name: "No_Language_Model",
			body: `{"message":"what is covered?"}`,
			generate: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{}, ragErrors.ErrNoLanguageModel
			},
			expectedCode: http.StatusFailedDependency,
		},
		{
			name: "Generation_Failure",
			body: `{"message":"what is covered?","session_id":"s1"}`,
			generate: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{}, fmt.Errorf("%w: provider down", ragErrors.ErrGeneration)
			},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name: "Success_Default_Session",
			body: `{"message":"what is covered?"}`,
			generate: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{
					Answer:  "Fire damage.",
					Sources: []chatModel.Source{{ID: "a.pdf_0", DocumentName: "a.pdf", ContentPreview: "fire", Page: &page, RelevanceScore: 0.7}},
				}, nil
			},
			expectedCode: http.StatusOK,
			wantSession:  "default",
		},
		{
			name:         "Success_Named_Session",
			body:         `{"message":"and theft?","session_id":"s42"}`,
			expectedCode: http.StatusOK,
			wantSession:  "s42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{OnGenerateAnswer: tt.generate}
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))

			rec := serve(t, svc, &MockQueue{}, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("Code got %d, want %d (%s)", rec.Code, tt.expectedCode, rec.Body.String())
			}
			if tt.expectedCode != http.StatusOK {
				res := decode[api.ErrorResponse](t, rec)
				if res.Success || res.Code != tt.expectedCode || res.TraceId != "test-trace" {
					t.Errorf("unexpected error body %+v", res)
				}
				return
			}
			if svc.LastSessionID != tt.wantSession {
				t.Errorf("session got %q, want %q", svc.LastSessionID, tt.wantSession)
			}
			res := decode[api.ChatResponse](t, rec)
			if !res.Success {
				t.Errorf("success flag not set")
			}
		})
	}
}

func TestChatHandler_SourceShape(t *testing.T) {
	svc := &MockService{OnGenerateAnswer: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
		return chatModel.Answer{Answer: "x", Sources: []chatModel.Source{{ID: "a_0", DocumentName: "a.txt", ContentPreview: "c", RelevanceScore: 0.5}}}, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"q"}`))
	rec := serve(t, svc, &MockQueue{}, req)

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	src := raw["sources"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "documentName", "content", "relevanceScore"} {
		if _, ok := src[key]; !ok {
			t.Errorf("source missing %q: %v", key, src)
		}
	}
	if _, ok := src["page"]; ok {
		t.Errorf("page should be omitted when unknown")
	}
}

type uploadFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, files ...uploadFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		files        []uploadFile
		queueErr     error
		expectedCode int
		wantJobs     int
	}{
		{
			name:         "No_Files",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unsupported_Type_Rejects_Batch",
			files:        []uploadFile{{"policy.txt", []byte("ok")}, {"policy.docx", []byte("no")}},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "File_Too_Large",
			files:        []uploadFile{{"big.txt", bytes.Repeat([]byte("a"), int(config.MaxFileSize)+1)}},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Queue_Unavailable",
			files:        []uploadFile{{"policy.txt", []byte("text")}},
			queueErr:     context.DeadlineExceeded,
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "Two_Files_Queued",
			files:        []uploadFile{{"auto.PDF", []byte("%PDF")}, {"home.txt", []byte("home policy")}},
			expectedCode: http.StatusOK,
			wantJobs:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockService{}
			queue := &MockQueue{Err: tt.queueErr}

			rec := serve(t, svc, queue, multipartRequest(t, tt.files...))

			if rec.Code != tt.expectedCode {
				t.Fatalf("Code got %d, want %d (%s)", rec.Code, tt.expectedCode, rec.Body.String())
			}
			if len(queue.Jobs) != tt.wantJobs {
				t.Fatalf("jobs got %d, want %d", len(queue.Jobs), tt.wantJobs)
			}
			if tt.queueErr != nil && len(svc.Failed) != 1 {
				t.Errorf("queue failure should mark the document failed, got %v", svc.Failed)
			}
			if tt.expectedCode != http.StatusOK {
				return
			}

			res := decode[api.UploadResponse](t, rec)
			if !res.Success || len(res.DocumentIds) != tt.wantJobs || len(res.Documents) != tt.wantJobs {
				t.Fatalf("unexpected upload response %+v", res)
			}
			for i, job := range queue.Jobs {
				if job.Id != res.DocumentIds[i] {
					t.Errorf("job %d id %s does not match document id %s", i, job.Id, res.DocumentIds[i])
				}
				if svc.Registered[job.Id] != job.FileName {
					t.Errorf("document %s not registered before queueing", job.Id)
				}
				if job.TraceId != "test-trace" {
					t.Errorf("trace id not carried to the job")
				}
				if _, err := os.Stat(job.FilePath); err != nil {
					t.Errorf("uploaded file not stored: %v", err)
				}
			}
		})
	}
}

func TestDocumentEndpoints(t *testing.T) {
	known := commonModels.DocumentInfo{DocumentID: "doc-1", Filename: "a.pdf", Status: commonModels.StatusReady, ChunksCount: 3}
	svc := &MockService{
		Documents: []commonModels.DocumentInfo{known},
		OnGetDocument: func(id string) (commonModels.DocumentInfo, error) {
			if id == "doc-1" {
				return known, nil
			}
			return commonModels.DocumentInfo{}, ragErrors.ErrNotFound
		},
		OnDeleteDocument: func(ctx context.Context, id string) error {
			switch id {
			case "doc-1":
				return nil
			case "doc-broken":
				return fmt.Errorf("%w: disk full", ragErrors.ErrPersistence)
			}
			return fmt.Errorf("deleting %s: %w", id, ragErrors.ErrNotFound)
		},
	}

	tests := []struct {
		name         string
		method       string
		path         string
		expectedCode int
	}{
		{"List", http.MethodGet, "/documents", http.StatusOK},
		{"Status_Known", http.MethodGet, "/documents/doc-1/status", http.StatusOK},
		{"Status_Unknown", http.MethodGet, "/documents/nope/status", http.StatusNotFound},
		{"Delete_Known", http.MethodDelete, "/documents/doc-1", http.StatusOK},
		{"Delete_Unknown", http.MethodDelete, "/documents/nope", http.StatusNotFound},
		{"Delete_Failure", http.MethodDelete, "/documents/doc-broken", http.StatusInternalServerError},
		{"Clear_Session", http.MethodDelete, "/sessions/s1", http.StatusOK},
		{"Health", http.MethodGet, "/health", http.StatusOK},
		{"Ping", http.MethodGet, "/ping", http.StatusOK},
		{"Root", http.MethodGet, "/", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, svc, &MockQueue{}, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.expectedCode {
				t.Errorf("Code got %d, want %d (%s)", rec.Code, tt.expectedCode, rec.Body.String())
			}
		})
	}

	t.Run("List_Body", func(t *testing.T) {
		rec := serve(t, svc, &MockQueue{}, httptest.NewRequest(http.MethodGet, "/documents", nil))
		res := decode[api.DocumentsResponse](t, rec)
		if res.Total != 1 || res.Documents[0].DocumentId != "doc-1" || res.Documents[0].Status != "ready" {
			t.Errorf("unexpected list %+v", res)
		}
	})

	t.Run("Status_CarriesJobState", func(t *testing.T) {
		queue := &MockQueue{Jobs: []jobModel.IngestJob{{Id: "doc-1", Status: jobModel.JobStatusComplete}}}
		rec := serve(t, svc, queue, httptest.NewRequest(http.MethodGet, "/documents/doc-1/status", nil))
		res := decode[api.DocumentStatusResponse](t, rec)
		if res.Status != "ready" || res.JobStatus != "COMPLETE" {
			t.Errorf("unexpected status %+v", res)
		}
	})

	t.Run("Status_WithoutJob", func(t *testing.T) {
		rec := serve(t, svc, &MockQueue{}, httptest.NewRequest(http.MethodGet, "/documents/doc-1/status", nil))
		if strings.Contains(rec.Body.String(), "job_status") {
			t.Errorf("job_status should be omitted: %s", rec.Body.String())
		}
	})
}

func TestClearSessionHandler_Failure(t *testing.T) {
	svc := &MockService{OnClearSession: func(ctx context.Context, id string) error {
		return errors.New("redis down")
	}}
	rec := serve(t, svc, &MockQueue{}, httptest.NewRequest(http.MethodDelete, "/sessions/s1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Code got %d, want 500", rec.Code)
	}
}

func TestHealthHandler_Flags(t *testing.T) {
	svc := &MockService{HasDocs: true}
	rec := serve(t, svc, &MockQueue{}, httptest.NewRequest(http.MethodGet, "/health", nil))
	res := decode[api.HealthResponse](t, rec)
	if !res.HasDocuments || res.HasLLM || !res.RagInitialized {
		t.Errorf("unexpected health %+v", res)
	}
}
