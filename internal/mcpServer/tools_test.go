package mcpServer

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/internal/rag"
)

// stubService implements rag.Service; only the methods the tools call do anything.
type stubService struct {
	rag.Service
	onAnswer  func(ctx context.Context, q, s string) (chatModel.Answer, error)
	docs      []commonModels.DocumentInfo
	clearErr  error
	cleared   []string
	sessionOf string
}

func (s *stubService) GenerateAnswer(ctx context.Context, q, session string) (chatModel.Answer, error) {
	s.sessionOf = session
	return s.onAnswer(ctx, q, session)
}

func (s *stubService) GetDocumentsInfo() []commonModels.DocumentInfo { return s.docs }

func (s *stubService) ClearSession(ctx context.Context, id string) error {
	s.cleared = append(s.cleared, id)
	return s.clearErr
}

func TestAskTool(t *testing.T) {
	page := 1
	tests := []struct {
		name        string
		input       AskInput
		answer      func(ctx context.Context, q, s string) (chatModel.Answer, error)
		wantSession string
		wantErr     error
	}{
		{
			name:    "Empty_Question",
			input:   AskInput{Question: " "},
			wantErr: errors.New("question is required"),
		},
		{
			name:  "Not_Ready",
			input: AskInput{Question: "deductible?"},
			answer: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{}, ragErrors.ErrNoDocuments
			},
			wantErr: ragErrors.ErrNotReady,
		},
		{
			name:  "Default_Session",
			input: AskInput{Question: "deductible?"},
			answer: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{Answer: "$500", Sources: []chatModel.Source{{DocumentName: "auto.pdf", ContentPreview: "deductible $500", Page: &page}}}, nil
			},
			wantSession: defaultSessionID,
		},
		{
			name:  "Named_Session",
			input: AskInput{Question: "deductible?", SessionID: "desk-1"},
			answer: func(ctx context.Context, q, s string) (chatModel.Answer, error) {
				return chatModel.Answer{Answer: "$500"}, nil
			},
			wantSession: "desk-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{onAnswer: tt.answer}
			s := NewServer(svc)

			_, out, err := s.askTool(context.Background(), nil, tt.input)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v", tt.wantErr)
				}
				if errors.Is(tt.wantErr, ragErrors.ErrNotReady) && !errors.Is(err, ragErrors.ErrNotReady) {
					t.Errorf("error got %v, want NotReady", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.sessionOf != tt.wantSession || out.SessionID != tt.wantSession {
				t.Errorf("session got %q / %q, want %q", svc.sessionOf, out.SessionID, tt.wantSession)
			}
			if out.Answer != "$500" || out.Sources == nil {
				t.Errorf("unexpected output %+v", out)
			}
		})
	}
}

func TestListTool(t *testing.T) {
	svc := &stubService{docs: []commonModels.DocumentInfo{
		{DocumentID: "1", Filename: "a.pdf", Status: commonModels.StatusReady, ChunksCount: 4},
		{DocumentID: "2", Filename: "b.txt", Status: commonModels.StatusError, Error: "no text"},
	}}
	s := NewServer(svc)

	_, out, err := s.listTool(context.Background(), nil, ListInput{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 || out.Documents[0].ChunksCount != 4 || out.Documents[1].Error != "no text" {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestClearTool(t *testing.T) {
	tests := []struct {
		name     string
		input    ClearInput
		clearErr error
		wantErr  bool
	}{
		{"Missing_Id", ClearInput{}, nil, true},
		{"Cleared", ClearInput{SessionID: "s1"}, nil, false},
		{"Store_Failure", ClearInput{SessionID: "s1"}, errors.New("redis down"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{clearErr: tt.clearErr}
			_, out, err := NewServer(svc).clearTool(context.Background(), nil, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (!out.Cleared || svc.cleared[0] != "s1") {
				t.Errorf("unexpected output %+v", out)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	if NewServer(&stubService{}).Handler() == nil {
		t.Fatal("nil handler")
	}
}
