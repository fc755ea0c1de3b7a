package workflow

import (
	"strings"

	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
)

const contextualizePrompt = "Given a chat history and the latest user question which might reference context in the chat history, formulate a standalone question which can be understood without the chat history. Do NOT answer the question, just reformulate it."

const qaPromptPrefix = "You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.\n\n"

func qaPrompt(chunks []commonModels.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return qaPromptPrefix + strings.Join(texts, "\n\n")
}
