package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	DocumentID         string   `json:"document_id"`
	Filename           string   `json:"filename"`
	ChunkCount         int      `json:"chunk_count"`
	Message            string   `json:"message"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

type documentsResponse struct {
	Documents []domain.Document `json:"documents"`
	Count     int               `json:"count"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    s.config.Name,
		"version": s.config.Version,
		"endpoints": gin.H{
			"upload":    "POST /api/upload",
			"ask":       "POST /api/ask",
			"extract":   "POST /api/extract",
			"documents": "GET /api/documents",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithDetail(c, http.StatusRequestEntityTooLarge, s.tooLargeDetail())
			return
		}
		abortWithDetail(c, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	if header.Size > s.config.MaxUploadBytes {
		abortWithDetail(c, http.StatusRequestEntityTooLarge, s.tooLargeDetail())
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}

	result, err := s.ports.Document.Upload(c.Request.Context(), filepath.Base(header.Filename), data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	questions := result.SuggestedQuestions
	if questions == nil {
		questions = []string{}
	}
	c.JSON(http.StatusOK, uploadResponse{
		DocumentID: result.DocumentID,
		Filename:   result.Filename,
		ChunkCount: result.ChunkCount,
		Message: fmt.Sprintf("Document uploaded and processed successfully. %d chunks created.",
			result.ChunkCount),
		SuggestedQuestions: questions,
	})
}

func (s *Server) tooLargeDetail() string {
	return fmt.Sprintf("file exceeds the %d MB upload limit", s.config.MaxUploadBytes>>20)
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if !bindJSON(c, &req) {
		return
	}
	if s.ports.Ask == nil {
		abortWithError(c, domain.ErrLLMUnavailable)
		return
	}

	answer, err := s.ports.Ask.Ask(c.Request.Context(), *req.DocumentID, *req.Question)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if answer.Sources == nil {
		answer.Sources = []domain.Source{}
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if !bindJSON(c, &req) {
		return
	}
	if s.ports.Extraction == nil {
		abortWithError(c, domain.ErrLLMUnavailable)
		return
	}

	result, err := s.ports.Extraction.Extract(c.Request.Context(), *req.DocumentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.ports.Document.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	c.JSON(http.StatusOK, documentsResponse{Documents: docs, Count: len(docs)})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	doc, err := s.ports.Document.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// bindJSON decodes and validates the body, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	if err := validateRequest(req); err != nil {
		var verr *validationError
		if errors.As(err, &verr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Detail: verr.Error(), Fields: verr.fields})
			return false
		}
		abortWithDetail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
