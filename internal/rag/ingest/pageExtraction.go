package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// rawPage is the text of one page. Number is 1-based; 0 means the format has
// no pages.
type rawPage struct {
	Number  int
	Content string
}

func extractPDF(ctx context.Context, path string, pageTimeout time.Duration) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	logger.Debug("extractPDF", "path", path, "pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "skipping null page", i)
			continue
		}

		content, err := protectExtract(ctx, page, pageTimeout)
		if err != nil {
			// keep going, one bad page should not sink the document
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractTxt lets cat sniff the content; text it does not recognise is
// accepted as long as it is valid UTF-8.
func extractTxt(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err == nil {
		return []rawPage{{Content: text}}, nil
	}
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read text file: %w", readErr)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return []rawPage{{Content: string(raw)}}, nil
}

// protectExtract bounds GetPlainText, which can spin on malformed content streams.
func protectExtract(ctx context.Context, page pdf.Page, timeout time.Duration) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errors.New("page extraction timed out")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
