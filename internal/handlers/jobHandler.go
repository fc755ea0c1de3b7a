package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/PolicyRAG/internal/adapter"
	"github.com/akolanti/PolicyRAG/internal/adapter/utils"
	"github.com/akolanti/PolicyRAG/internal/api"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/commonModels"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/akolanti/PolicyRAG/internal/rag/ingest"
)

const uploadField = "files"

// UploadHandler godoc
// @Summary      Upload policy documents
// @Description  Accepts one or more PDF or TXT files, registers each as a document and queues it for background ingestion. Poll /documents/{id}/status for progress.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "PDF or TXT files, 10MB each at most"
// @Success      200  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse  "Unsupported file type, file too large or no files"
// @Failure      500  {object}  api.ErrorResponse  "Storage error"
// @Router       /upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}
	trace := traceId(r.Context())
	log := h.logger.WithTrace(r.Context(), config.TRACE_ID_KEY)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(config.MultipartMemory); err != nil {
		log.Warn("Bad upload request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, trace, "Files too large or bad request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("Could not remove multipart temp files", "error", err)
		}
	}()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, trace, "No files uploaded")
		return
	}
	// reject the whole batch before anything is stored
	for _, fh := range files {
		if msg := validateUpload(fh); msg != "" {
			WriteErrorResponse(w, http.StatusBadRequest, trace, msg)
			return
		}
	}

	targetDir, errString := h.getTargetDirectory()
	if errString != "" {
		log.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, trace, errString)
		return
	}

	uploaded := make([]api.UploadedDocument, 0, len(files))
	for _, fh := range files {
		doc, err := h.acceptFile(r.Context(), targetDir, fh)
		if err != nil {
			log.Error("Upload failed", "file", fh.Filename, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, trace, fmt.Sprintf("Upload failed: %s", fh.Filename))
			return
		}
		uploaded = append(uploaded, doc)
	}

	msg := fmt.Sprintf("Successfully uploaded %d document(s). Processing in background.", len(uploaded))
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(msg, uploaded))
}

func validateUpload(fh *multipart.FileHeader) string {
	name := filepath.Base(fh.Filename)
	if ingest.GetDocType(name) == commonModels.ERR {
		return fmt.Sprintf("Unsupported file type: %s. Only PDF and TXT files are allowed.", name)
	}
	if fh.Size > config.MaxFileSize {
		return fmt.Sprintf("File too large: %s. Maximum size is %dMB.", name, config.MaxFileSize>>20)
	}
	return ""
}

// acceptFile stores one upload, registers its document record and queues
// the ingestion job.
func (h *Handler) acceptFile(ctx context.Context, targetDir string, fh *multipart.FileHeader) (api.UploadedDocument, error) {
	id := utils.GetNewUUID()
	filename := filepath.Base(fh.Filename)
	path := filepath.Join(targetDir, id+"_"+filename)

	if err := saveUpload(fh, path); err != nil {
		return api.UploadedDocument{}, err
	}
	h.service.RegisterUpload(id, filename, fh.Size)

	// the job outlives the request
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.EnqueueTimeout)
	defer cancel()
	err := h.jobs.Enqueue(enqueueCtx, jobModel.IngestJob{
		Id:          id,
		TraceId:     traceId(ctx),
		FileName:    filename,
		FilePath:    path,
		Size:        fh.Size,
		CreatedTime: time.Now(),
	})
	if err != nil {
		h.service.MarkFailed(id, err)
		_ = os.Remove(path)
		return api.UploadedDocument{}, err
	}
	return api.UploadedDocument{Id: id, Filename: filename, Size: fh.Size}, nil
}

func saveUpload(fh *multipart.FileHeader, path string) (err error) {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing upload: %w", err)
	}
	return nil
}
