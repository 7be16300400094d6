package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/ingest"
	"github.com/complydesk/arbiter/pkg/retrieval"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/vector"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse acknowledges an accepted document upload.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// CheckRequest is the compliance check payload.
type CheckRequest struct {
	Query string `json:"query"`
}

// SearchResult is one hit returned by the search endpoint.
type SearchResult struct {
	Content        string  `json:"content"`
	Similarity     float64 `json:"similarity"`
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	DocumentType   string  `json:"document_type"`
	SectionTitle   string  `json:"section_title,omitempty"`
	ClauseNumber   string  `json:"clause_number,omitempty"`
	CircularNumber string  `json:"circular_number,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUploadDocument stages the uploaded file, records the document,
// and queues it for asynchronous ingestion.
func (s *Server) handleUploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "file is required"})
	}

	docType := strings.TrimSpace(c.FormValue("document_type"))
	if docType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document_type is required"})
	}

	name := strings.TrimSpace(c.FormValue("document_name"))
	if name == "" {
		name = file.Filename
	}

	documentID := uuid.NewString()
	path := filepath.Join(s.config.UploadDir, fmt.Sprintf("%s%s", documentID, filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, path); err != nil {
		s.logger.Error("saving upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save file"})
	}

	doc := &storage.Document{
		ID:             documentID,
		Name:           name,
		Type:           docType,
		Source:         c.FormValue("source"),
		CircularNumber: c.FormValue("circular_number"),
		FilePath:       path,
	}
	if err := s.store.PutDocument(c.Context(), doc); err != nil {
		s.logger.Error("storing document record", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to record document"})
	}

	queued := s.pool.Enqueue(ingest.Job{
		DocumentID: documentID,
		Path:       path,
		Meta: vector.DocumentMeta{
			DocumentType:   doc.Type,
			DocumentName:   doc.Name,
			Source:         doc.Source,
			CircularNumber: doc.CircularNumber,
		},
	})
	if !queued {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "ingestion queue full, try again later"})
	}

	return c.Status(fiber.StatusAccepted).JSON(UploadResponse{
		DocumentID: documentID,
		Status:     "queued",
	})
}

// handleListDocuments returns all document records.
func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.store.ListDocuments(c.Context())
	if err != nil {
		s.logger.Error("listing documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list documents"})
	}
	if docs == nil {
		docs = []*storage.Document{}
	}
	return c.JSON(docs)
}

// handleGetDocument returns a single document record by ID.
func (s *Server) handleGetDocument(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, err := s.store.GetDocument(c.Context(), id)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		s.logger.Error("getting document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get document"})
	}

	return c.JSON(doc)
}

// handleDeleteDocument removes a document's chunks and its metadata record.
func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, err := s.store.GetDocument(c.Context(), id)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		s.logger.Error("getting document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get document"})
	}

	if err := s.vectors.DeleteByDocument(c.Context(), id); err != nil {
		s.logger.Error("deleting document chunks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete document chunks"})
	}
	if err := s.store.DeleteDocument(c.Context(), id); err != nil {
		s.logger.Error("deleting document record", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete document"})
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing staged file", zap.String("path", doc.FilePath), zap.Error(err))
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleReprocessDocument re-runs ingestion for an existing document from
// its staged file. The document keeps its ID, so its previous chunks are
// replaced rather than duplicated.
func (s *Server) handleReprocessDocument(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, err := s.store.GetDocument(c.Context(), id)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		s.logger.Error("getting document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get document"})
	}
	if doc.FilePath == "" {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "document has no staged file to reprocess"})
	}

	queued := s.pool.Enqueue(ingest.Job{
		DocumentID: doc.ID,
		Path:       doc.FilePath,
		Meta: vector.DocumentMeta{
			DocumentType:   doc.Type,
			DocumentName:   doc.Name,
			Source:         doc.Source,
			CircularNumber: doc.CircularNumber,
		},
	})
	if !queued {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "ingestion queue full, try again later"})
	}

	return c.Status(fiber.StatusAccepted).JSON(UploadResponse{
		DocumentID: doc.ID,
		Status:     "queued",
	})
}

// handleCheck runs a compliance check. The response is always a verdict,
// degraded when a pipeline stage failed.
func (s *Server) handleCheck(c *fiber.Ctx) error {
	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	verdict := s.checker.Check(c.Context(), req.Query)
	return c.JSON(verdict)
}

// handleSearch runs a raw similarity search without the verdict pipeline.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}
	limit := c.QueryInt("limit", 5)

	queryVec, err := s.embedder.EmbedQuery(c.Context(), query)
	if err != nil {
		s.logger.Error("embedding search query", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to embed query"})
	}

	filter := vector.Filter{DocumentType: c.Query("document_type")}
	raw, err := s.vectors.Search(c.Context(), queryVec, limit*2, filter)
	if err != nil {
		s.logger.Error("searching index", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "search failed"})
	}
	ranked := retrieval.Rank(raw, 0, limit, s.authority)

	results := make([]SearchResult, len(ranked))
	for i, r := range ranked {
		results[i] = SearchResult{
			Content:        r.Content,
			Similarity:     r.Similarity,
			DocumentID:     r.DocumentID,
			DocumentName:   r.Meta.DocumentName,
			DocumentType:   r.Meta.DocumentType,
			SectionTitle:   r.SectionTitle,
			ClauseNumber:   r.ClauseNumber,
			CircularNumber: r.Meta.CircularNumber,
		}
	}

	return c.JSON(results)
}

// handleListAudits returns recent compliance check audit records.
func (s *Server) handleListAudits(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	recs, err := s.store.ListAudits(c.Context(), limit)
	if err != nil {
		s.logger.Error("listing audits", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list audits"})
	}
	if recs == nil {
		recs = []*storage.AuditRecord{}
	}
	return c.JSON(recs)
}
