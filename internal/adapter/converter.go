package adapter

import (
	"github.com/akolanti/PolicyRAG/internal/api"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
)

func ToChatResponse(answer chatModel.Answer) api.ChatResponse {
	sources := make([]api.DocumentSource, len(answer.Sources))
	for i, s := range answer.Sources {
		sources[i] = api.DocumentSource{
			Id:             s.ID,
			DocumentName:   s.DocumentName,
			Content:        s.ContentPreview,
			Page:           s.Page,
			RelevanceScore: s.RelevanceScore,
		}
	}
	return api.ChatResponse{
		Success: true,
		Answer:  answer.Answer,
		Sources: sources,
	}
}

func ToDocumentStatus(info commonModels.DocumentInfo) api.DocumentStatusResponse {
	return api.DocumentStatusResponse{
		DocumentId:  info.DocumentID,
		Filename:    info.Filename,
		Status:      string(info.Status),
		ChunksCount: info.ChunksCount,
		Error:       info.Error,
		UploadedAt:  info.UploadedAt,
		Size:        info.Size,
	}
}

func ToDocumentsResponse(infos []commonModels.DocumentInfo) api.DocumentsResponse {
	docs := make([]api.DocumentStatusResponse, len(infos))
	for i, info := range infos {
		docs[i] = ToDocumentStatus(info)
	}
	return api.DocumentsResponse{Documents: docs, Total: len(docs)}
}

func ToUploadResponse(message string, uploaded []api.UploadedDocument) api.UploadResponse {
	if uploaded == nil {
		uploaded = []api.UploadedDocument{}
	}
	ids := make([]string, len(uploaded))
	for i, d := range uploaded {
		ids[i] = d.Id
	}
	return api.UploadResponse{
		Success:     true,
		Message:     message,
		DocumentIds: ids,
		Documents:   uploaded,
	}
}

func BadRequest(traceId string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Success: false,
		Code:    code,
		Error:   message,
		TraceId: traceId,
	}
}
