package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	appRAG "github.com/tourassist/backend/internal/application/rag"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

// IngestHandler document upload
type IngestHandler struct {
	tenants   *appTenant.Service
	ingestion *appRAG.IngestionService
	maxBytes  int64
	logger    *slog.Logger
}

// NewIngestHandler creates the ingest handler
func NewIngestHandler(tenants *appTenant.Service, ingestion *appRAG.IngestionService, cfg *config.RAGConfig) *IngestHandler {
	return &IngestHandler{
		tenants:   tenants,
		ingestion: ingestion,
		maxBytes:  cfg.MaxFileSizeBytes(),
		logger:    log.NewModuleLogger("http", "ingest"),
	}
}

// IngestFileResult is one file of a folder upload
type IngestFileResult struct {
	Filename      string `json:"filename"`
	DocumentID    string `json:"document_id,omitempty"`
	Status        string `json:"status,omitempty"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Error         string `json:"error,omitempty"`
}

// IngestBatchResponse folder upload result
type IngestBatchResponse struct {
	FilesTotal    int                `json:"files_total"`
	FilesIngested int                `json:"files_ingested"`
	ChunksIndexed int                `json:"chunks_indexed"`
	Results       []IngestFileResult `json:"results"`
}

// uploadError is a per-file validation failure
type uploadError struct {
	status  int
	code    int
	message string
}

func (e *uploadError) Error() string { return e.message }

// Ingest indexes one uploaded document
// @Summary Ingest document
// @Description Uploads a .pdf, .txt or .md file for the tenant. Re-uploading identical bytes returns the existing document.
// @Tags Ingestion
// @Accept multipart/form-data
// @Produce json
// @Param X-API-Key header string true "Tenant API key"
// @Param tenant_id formData string true "Tenant ID"
// @Param file formData file true "Document"
// @Success 200 {object} appRAG.IngestResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Router /ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	tenantID, ok := h.authorize(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "Missing file")
		return
	}

	raw, err := h.readUpload(fh)
	if err != nil {
		var uerr *uploadError
		if errors.As(err, &uerr) {
			response.Error(c, uerr.status, uerr.code, uerr.message)
			return
		}
		writeServiceError(c, h.logger, err)
		return
	}

	result, err := h.ingestion.Ingest(c.Request.Context(), tenantID, fh.Filename, raw)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Success(c, result)
}

// IngestFolder indexes several uploaded documents
// @Summary Ingest folder
// @Description Uploads several files at once. Files that fail validation are reported in results and skipped.
// @Tags Ingestion
// @Accept multipart/form-data
// @Produce json
// @Param X-API-Key header string true "Tenant API key"
// @Param tenant_id formData string true "Tenant ID"
// @Param files formData file true "Documents"
// @Success 200 {object} IngestBatchResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /ingest/folder [post]
func (h *IngestHandler) IngestFolder(c *gin.Context) {
	tenantID, ok := h.authorize(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "No files uploaded")
		return
	}
	// browsers post multiple files as "files[]"
	files := slices.Concat(form.File["files"], form.File["files[]"])
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "No files uploaded")
		return
	}

	batch := IngestBatchResponse{
		FilesTotal: len(files),
		Results:    make([]IngestFileResult, 0, len(files)),
	}
	for _, fh := range files {
		raw, err := h.readUpload(fh)
		if err != nil {
			batch.Results = append(batch.Results, IngestFileResult{Filename: fh.Filename, Error: err.Error()})
			continue
		}

		result, err := h.ingestion.Ingest(c.Request.Context(), tenantID, fh.Filename, raw)
		if errors.Is(err, domainRAG.ErrReindexConflict) {
			writeServiceError(c, h.logger, err)
			return
		}
		if err != nil {
			log.FromContext(c.Request.Context(), h.logger).Error("Folder file ingestion failed",
				"filename", fh.Filename,
				"error", err,
			)
			batch.Results = append(batch.Results, IngestFileResult{Filename: fh.Filename, Error: "Ingestion failed"})
			continue
		}

		batch.Results = append(batch.Results, IngestFileResult{
			Filename:      fh.Filename,
			DocumentID:    result.DocumentID,
			Status:        result.Status,
			ChunksIndexed: result.ChunksIndexed,
		})
		batch.ChunksIndexed += result.ChunksIndexed
		batch.FilesIngested++
	}

	response.Success(c, batch)
}

// authorize checks the API key for the form's tenant_id
func (h *IngestHandler) authorize(c *gin.Context) (string, bool) {
	tenantID := c.PostForm("tenant_id")
	if err := h.tenants.Verify(c.Request.Context(), tenantID, c.GetHeader(APIKeyHeader)); err != nil {
		writeAuthError(c, h.logger, err)
		return "", false
	}
	if len(strings.TrimSpace(tenantID)) < 2 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid tenant ID")
		return "", false
	}
	c.Request = c.Request.WithContext(log.WithTenantID(c.Request.Context(), tenantID))
	return tenantID, true
}

// readUpload validates the file type and size, then reads the content
func (h *IngestHandler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Filename == "" {
		return nil, &uploadError{http.StatusBadRequest, response.CodeInvalidRequest, "Missing filename"}
	}
	if !domainRAG.IsSupportedFile(fh.Filename) {
		return nil, &uploadError{http.StatusBadRequest, response.CodeUnsupportedFile, "Unsupported file type"}
	}
	if fh.Size > h.maxBytes {
		return nil, &uploadError{http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "File too large"}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > h.maxBytes {
		return nil, &uploadError{http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "File too large"}
	}
	return raw, nil
}
