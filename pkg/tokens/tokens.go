package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const encodingName = "cl100k_base"

var (
	encoding *tiktoken.Tiktoken
	once     sync.Once
)

func getEncoding() *tiktoken.Tiktoken {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			logger_i.NewLogger("Tokens").Error("Loading encoding failed, estimating by length", "encoding", encodingName, "error", err)
			return
		}
		encoding = enc
	})
	return encoding
}

// Count returns the number of model tokens in text. Without an encoding it
// falls back to one token per four runes.
func Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := getEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}
