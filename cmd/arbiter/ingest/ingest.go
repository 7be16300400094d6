// Package ingestcmder provides the ingest command for loading documents
// from the command line.
package ingestcmder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/app"
	"github.com/complydesk/arbiter/pkg/config"
	"github.com/complydesk/arbiter/pkg/logger"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/vector"
)

type ingestCommander struct {
	documentID     string
	docType        string
	docName        string
	source         string
	circularNumber string
	configDir      string
	debug          bool
	logger         *zap.Logger
}

const ingestLongDesc string = `Ingest documents into the compliance knowledge base.

Each file is extracted, chunked, embedded, and stored in the vector index.
Pass --id with an existing document ID to re-ingest under that ID, which
replaces the document's previous chunks instead of adding a new document.

Examples:
  arbiter ingest --type SBP_CIRCULAR --circular "BPRD-01-2024" circular.md
  arbiter ingest --type INTERNAL_POLICY policy.txt handbook.md
  arbiter ingest --type SBP_CIRCULAR --id 3f1c9a2e-... circular-rev2.md`

const ingestShortDesc string = "Ingest documents into the knowledge base"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			if cmder.documentID != "" && len(args) > 1 {
				return fmt.Errorf("--id re-ingests a single document, got %d files", len(args))
			}

			return cmder.run(args)
		},
	}

	cmd.Flags().StringVarP(&cmder.docType, "type", "t", "", "Document type (e.g. SBP_CIRCULAR, INTERNAL_POLICY)")
	cmd.Flags().StringVarP(&cmder.docName, "name", "n", "", "Document name (default: file name)")
	cmd.Flags().StringVarP(&cmder.source, "source", "s", "", "Document source")
	cmd.Flags().StringVar(&cmder.circularNumber, "circular", "", "Circular number, if any")
	cmd.Flags().StringVar(&cmder.documentID, "id", "", "Existing document ID to re-ingest, replacing its chunks")
	cmd.MarkFlagRequired("type")

	return cmd
}

func (c *ingestCommander) run(paths []string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range paths {
		if err := c.ingestOne(ctx, a, path); err != nil {
			return err
		}
	}
	return nil
}

func (c *ingestCommander) ingestOne(ctx context.Context, a *app.App, path string) error {
	name := c.docName
	if name == "" {
		name = filepath.Base(path)
	}

	documentID := c.documentID
	if documentID == "" {
		documentID = uuid.NewString()
	} else if _, err := a.Store.GetDocument(ctx, documentID); err != nil {
		return fmt.Errorf("looking up document %s: %w", documentID, err)
	}

	doc := &storage.Document{
		ID:             documentID,
		Name:           name,
		Type:           c.docType,
		Source:         c.source,
		CircularNumber: c.circularNumber,
		FilePath:       path,
	}
	if err := a.Store.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("recording document: %w", err)
	}

	meta := vector.DocumentMeta{
		DocumentType:   c.docType,
		DocumentName:   name,
		Source:         c.source,
		CircularNumber: c.circularNumber,
	}
	if err := a.Pipeline.Ingest(ctx, documentID, path, meta); err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	stored, err := a.Store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s\n  document_id: %s\n  chunks: %d\n", path, documentID, stored.ChunkCount)
	return nil
}
