package chatModel

import "github.com/akolanti/PolicyRAG/internal/domain/commonModels"

// Turn is one (human, ai) exchange in a session.
type Turn struct {
	Human string `json:"human"`
	AI    string `json:"ai"`
}

// ConversationState is the per-turn workflow state.
type ConversationState struct {
	Question         string
	ChatHistory      []Turn
	RetrievedContext []commonModels.Chunk
	RelevanceScores  []float32
	Answer           string
}

type Source struct {
	ID             string  `json:"id"`
	DocumentName   string  `json:"document_name"`
	ContentPreview string  `json:"content_preview"`
	Page           *int    `json:"page,omitempty"`
	RelevanceScore float32 `json:"relevance_score"`
}

type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// CachedAnswer is a generated answer kept together with the context it was grounded on.
type CachedAnswer struct {
	Answer  string               `json:"answer"`
	Context []commonModels.Chunk `json:"context"`
	Scores  []float32            `json:"scores"`
}
