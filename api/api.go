package api

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/compliance"
	"github.com/complydesk/arbiter/pkg/embeddings"
	"github.com/complydesk/arbiter/pkg/ingest"
	"github.com/complydesk/arbiter/pkg/retrieval"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/vector"
)

// Server is the API server for ingesting documents and running
// compliance checks.
type Server struct {
	config    Config
	store     storage.Driver
	vectors   vector.Driver
	embedder  embeddings.Embedder
	authority *retrieval.Authority
	checker   *compliance.Checker
	pool      *ingest.Pool
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. Collaborators are injected so they
// can be shared with the CLI entrypoints.
func NewServer(
	config Config,
	store storage.Driver,
	vectors vector.Driver,
	embedder embeddings.Embedder,
	authority *retrieval.Authority,
	checker *compliance.Checker,
	pool *ingest.Pool,
	logger *zap.Logger,
) *Server {
	if config.UploadDir == "" {
		config.UploadDir = os.TempDir()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             50 * 1024 * 1024,
	})

	s := &Server{
		config:    config,
		store:     store,
		vectors:   vectors,
		embedder:  embedder,
		authority: authority,
		checker:   checker,
		pool:      pool,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/documents", s.handleUploadDocument)
	app.Get("/v1/documents", s.handleListDocuments)
	app.Get("/v1/documents/:id", s.handleGetDocument)
	app.Delete("/v1/documents/:id", s.handleDeleteDocument)
	app.Post("/v1/documents/:id/reprocess", s.handleReprocessDocument)
	app.Post("/v1/check", s.handleCheck)
	app.Get("/v1/search", s.handleSearch)
	app.Get("/v1/audits", s.handleListAudits)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
