package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/RishiKendai/overlap/internal/config"
	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/plagiarism"
	"github.com/RishiKendai/overlap/internal/preprocess"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxImportSize caps uploaded seed files.
const maxImportSize = 32 << 20

// Checker scores candidate texts.
type Checker interface {
	Check(ctx context.Context, req models.CheckRequest) (*models.Report, error)
	Submit(ctx context.Context, req models.CheckRequest) (string, error)
	Status(ctx context.Context, id string) (models.Step, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// Corpus manages the reference documents.
type Corpus interface {
	ProcessSubmission(ctx context.Context, submission *models.DocumentSubmission) (*models.Document, error)
	ImportSeed(ctx context.Context, docs []models.DocumentSubmission) (imported, skipped int, err error)
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	checker      Checker
	corpus       Corpus
	checkSem     chan struct{} // Semaphore for bounded concurrency
	checkTimeout time.Duration
}

func NewHandler(cfg *config.Config, checker Checker, corpus Corpus) *Handler {
	return &Handler{
		checker:      checker,
		corpus:       corpus,
		checkSem:     make(chan struct{}, max(1, cfg.MaxConcurrentChecks)),
		checkTimeout: cfg.CheckTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func (h *Handler) Algorithms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"algorithms": matcher.Kinds(),
	})
}

// Check scores a candidate synchronously.
func (h *Handler) Check(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.checkSem <- struct{}{}:
		defer func() { <-h.checkSem }()
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	if h.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.checkTimeout)
		defer cancel()
	}

	report, err := h.checker.Check(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SubmitCheck queues a candidate and returns 202 with the report id.
func (h *Handler) SubmitCheck(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	id, err := h.checker.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, models.CheckAccepted{
		ReportID: id,
		Step:     models.StepIdle,
	})
}

func (h *Handler) CheckStatus(c *gin.Context) {
	id := c.Param("id")
	step, err := h.checker.Status(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckAccepted{
		ReportID: id,
		Step:     step,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.checker.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Report not found",
			Code:  "NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) AddDocument(c *gin.Context) {
	var req models.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	doc, err := h.corpus.ProcessSubmission(c.Request.Context(), &models.DocumentSubmission{
		ID:     req.ID,
		Title:  req.Title,
		Text:   req.Text,
		Source: models.SourceAPI,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ImportDocuments stores the multipart field "file": a .txt upload becomes one
// document, a JSON or YAML mapping of id to text is imported as a seed.
func (h *Handler) ImportDocuments(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Multipart field \"file\" is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: fmt.Sprintf("File exceeds %d bytes", maxImportSize),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, err)
		return
	}

	// A plain text file is one document; anything else is a seed mapping.
	if strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
		doc, err := h.corpus.ProcessSubmission(c.Request.Context(), &models.DocumentSubmission{
			Title:  strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename)),
			Text:   string(data),
			Source: models.SourceUpload,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
		return
	}

	docs, err := repository.ParseSeed(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}
	for i := range docs {
		docs[i].Source = models.SourceUpload
	}

	imported, skipped, err := h.corpus.ImportSeed(c.Request.Context(), docs)
	if err != nil {
		writeError(c, err)
		return
	}

	log.Info().Str("file", header.Filename).Int("imported", imported).Int("skipped", skipped).Msg("Corpus import finished")
	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.corpus.ListDocuments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"count":     len(docs),
	})
}

// writeError maps domain errors to their HTTP status and code.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"

	switch {
	case errors.Is(err, matcher.ErrInvalidPattern):
		status, code = http.StatusBadRequest, "INVALID_PATTERN"
	case errors.Is(err, matcher.ErrUnknownKind):
		status, code = http.StatusBadRequest, "UNKNOWN_ALGORITHM"
	case errors.Is(err, preprocess.ErrEmptyDocument):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, plagiarism.ErrEmptyShingleSet):
		status, code = http.StatusUnprocessableEntity, "EMPTY_SHINGLE_SET"
	case errors.Is(err, plagiarism.ErrCorpusUnavailable):
		status, code = http.StatusServiceUnavailable, "CORPUS_UNAVAILABLE"
	case errors.Is(err, repository.ErrDocumentExists):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, repository.ErrDocumentNotFound), errors.Is(err, plagiarism.ErrStatusNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "REQUEST_TIMEOUT"
	case errors.Is(err, context.Canceled):
		status, code = http.StatusRequestTimeout, "REQUEST_CANCELLED"
	}

	switch {
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		// 5xx causes carry driver and network details
		c.JSON(status, models.ErrorResponse{Error: serverErrorMessages[code], Code: code})
		return
	case code == "REQUEST_CANCELLED":
		log.Debug().Err(err).Str("path", c.FullPath()).Msg("Request cancelled by client")
		c.JSON(status, models.ErrorResponse{Error: "Request cancelled", Code: code})
		return
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error(), Code: code})
}

var serverErrorMessages = map[string]string{
	"INTERNAL_ERROR":     "Internal server error",
	"CORPUS_UNAVAILABLE": "Corpus is unavailable",
	"REQUEST_TIMEOUT":    "Check timed out",
}
