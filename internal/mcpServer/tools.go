package mcpServer

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSessionID = "mcp"

type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about the uploaded insurance policies"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue, follow-up questions resolve against its history"`
}

type SourceOutput struct {
	DocumentName   string  `json:"document_name"`
	Content        string  `json:"content"`
	Page           *int    `json:"page,omitempty"`
	RelevanceScore float32 `json:"relevance_score"`
}

type AskOutput struct {
	Answer    string         `json:"answer"`
	SessionID string         `json:"session_id"`
	Sources   []SourceOutput `json:"sources"`
}

type ListInput struct{}

type DocumentOutput struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	ChunksCount int    `json:"chunks_count"`
	Error       string `json:"error,omitempty"`
}

type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Total     int              `json:"total"`
}

type ClearInput struct {
	SessionID string `json:"session_id" jsonschema:"conversation to forget"`
}

type ClearOutput struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_policy_question",
		Description: "Answer a question using only the uploaded insurance policy documents. Returns the answer with the passages it is grounded on.",
	}, s.askTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_policy_documents",
		Description: "List the uploaded policy documents with their processing status.",
	}, s.listTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_session",
		Description: "Forget the conversation history of a session.",
	}, s.clearTool)
}

func (s *Server) askTool(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required")
	}
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	answer, err := s.service.GenerateAnswer(ctx, input.Question, sessionID)
	if err != nil {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("MCP question failed", "sessionId", sessionID, "error", err)
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:    answer.Answer,
		SessionID: sessionID,
		Sources:   make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		out.Sources[i] = SourceOutput{
			DocumentName:   src.DocumentName,
			Content:        src.ContentPreview,
			Page:           src.Page,
			RelevanceScore: src.RelevanceScore,
		}
	}
	return nil, out, nil
}

func (s *Server) listTool(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	infos := s.service.GetDocumentsInfo()
	out := ListOutput{Documents: make([]DocumentOutput, len(infos)), Total: len(infos)}
	for i, info := range infos {
		out.Documents[i] = DocumentOutput{
			DocumentID:  info.DocumentID,
			Filename:    info.Filename,
			Status:      string(info.Status),
			ChunksCount: info.ChunksCount,
			Error:       info.Error,
		}
	}
	return nil, out, nil
}

func (s *Server) clearTool(ctx context.Context, _ *mcp.CallToolRequest, input ClearInput) (*mcp.CallToolResult, ClearOutput, error) {
	if input.SessionID == "" {
		return nil, ClearOutput{}, fmt.Errorf("session_id is required")
	}
	if err := s.service.ClearSession(ctx, input.SessionID); err != nil {
		return nil, ClearOutput{}, fmt.Errorf("clearing session %s: %w", input.SessionID, err)
	}
	return nil, ClearOutput{SessionID: input.SessionID, Cleared: true}, nil
}
