package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/PolicyRAG/internal/adapter"
	"github.com/akolanti/PolicyRAG/internal/adapter/utils"
	"github.com/akolanti/PolicyRAG/internal/api"
	"github.com/akolanti/PolicyRAG/internal/config"
)

const defaultSessionID = "default"

// RootHandler godoc
// @Summary      Liveness message
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.RootResponse
// @Router       / [get]
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.RootResponse{
		Message:   "Insurance Policy Q&A API is running",
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HealthHandler godoc
// @Summary      Detailed health check
// @Description  Reports whether documents are indexed, a language model is configured and the index finished loading.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:         "healthy",
		Service:        "RAG API",
		Version:        "1.0.0",
		Timestamp:      time.Now().Format(time.RFC3339),
		HasDocuments:   h.service.HasDocuments(),
		HasLLM:         h.service.HasLanguageModel(),
		RagInitialized: h.service.IsInitialized(),
	})
}

// PingHandler godoc
// @Summary      Quick ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.PingResponse
// @Router       /ping [get]
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.PingResponse{
		Message:        "pong",
		RagInitialized: h.service.IsInitialized(),
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}

// ChatHandler godoc
// @Summary      Ask a question about the uploaded policies
// @Description  Runs reformulation, retrieval and grounded generation for the session and returns the answer with its sources.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest    true  "Question and optional session id"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty or malformed question"
// @Failure      424      {object}  api.ErrorResponse  "No documents indexed or no language model configured"
// @Failure      500      {object}  api.ErrorResponse  "Answer generation failed"
// @Router       /chat [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !h.validateContext(request.Context()) {
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			h.logger.Error("Couldn't close the chat request body", "error", err)
		}
	}(request.Body)

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		h.logger.Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, traceId(request.Context()), "Malformed request body")
		return
	}
	if strings.TrimSpace(requestData.Message) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, traceId(request.Context()), "Empty query not allowed.")
		return
	}
	sessionID := requestData.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	answer, err := h.service.GenerateAnswer(request.Context(), requestData.Message, sessionID)
	if err != nil {
		h.writeServiceError(w, request, "Chat processing failed", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(answer))
}

// ClearSessionHandler godoc
// @Summary      Clear a conversation
// @Description  Forgets the history of the session; the next question starts a fresh conversation.
// @Tags         Messaging
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *Handler) ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, traceId(r.Context()), "session id is required")
		return
	}
	if err := h.service.ClearSession(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "Failed to clear session", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Session %s cleared", id)})
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentsResponse
// @Router       /documents [get]
func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentsResponse(h.service.GetDocumentsInfo()))
}

// DocumentStatusHandler godoc
// @Summary      Get document processing status
// @Description  Returns the document record together with the state of its ingestion job, when one was queued.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentStatusResponse
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Router       /documents/{id}/status [get]
func (h *Handler) DocumentStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	info, err := h.service.GetDocument(id)
	if err != nil {
		h.writeServiceError(w, r, "Failed to get document status", err)
		return
	}
	res := adapter.ToDocumentStatus(info)
	if job, ok := h.jobs.GetJob(r.Context(), id); ok {
		res.JobStatus = string(job.Status)
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document and rebuilds the index from the remaining documents.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func (h *Handler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	log := h.logger.WithTrace(r.Context(), config.TRACE_ID_KEY).With("documentId", id)
	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "Failed to delete document", err)
		return
	}
	log.Info("Document deleted")
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Document deleted successfully"})
}
