package ragErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady means no language model is configured or nothing is indexed yet.
	ErrNotReady = errors.New("service not ready")
	// ErrNoDocuments is the NotReady flavour callers show as "upload a document first".
	ErrNoDocuments = fmt.Errorf("%w: no documents indexed", ErrNotReady)
	// ErrNoLanguageModel is the NotReady flavour for a misconfigured service.
	ErrNoLanguageModel = fmt.Errorf("%w: no language model configured", ErrNotReady)

	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("document not found")
	ErrIngestion           = errors.New("ingestion failed")
	ErrPersistence         = errors.New("persisting vector store failed")
	ErrGeneration          = errors.New("answer generation failed")
	ErrNoProviderAvailable = errors.New("no language model provider available")
)

// IngestionError names the file and the stage that failed.
type IngestionError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingesting %s failed at %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() []error {
	return []error{ErrIngestion, e.Err}
}

func NewIngestionError(filename, stage string, err error) error {
	return &IngestionError{Filename: filename, Stage: stage, Err: err}
}
