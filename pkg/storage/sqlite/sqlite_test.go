package sqlite_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/storage/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *sqlite.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = sqlite.NewDriver(filepath.Join(GinkgoT().TempDir(), "arbiter.db"), zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("documents", func() {
		doc := func(id string) *storage.Document {
			return &storage.Document{
				ID:             id,
				Name:           "prudential-regulations.txt",
				Type:           "SBP_CIRCULAR",
				Source:         "SBP",
				CircularNumber: "BPRD-2024-01",
				FilePath:       "/var/lib/arbiter/uploads/" + id + ".txt",
			}
		}

		It("stores and retrieves a document", func() {
			Expect(driver.PutDocument(ctx, doc("doc-1"))).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("prudential-regulations.txt"))
			Expect(got.Type).To(Equal("SBP_CIRCULAR"))
			Expect(got.CircularNumber).To(Equal("BPRD-2024-01"))
			Expect(got.FilePath).To(Equal("/var/lib/arbiter/uploads/doc-1.txt"))
			Expect(got.IsProcessed).To(BeFalse())
			Expect(got.CreatedAt).NotTo(BeZero())
		})

		It("rejects a nil document", func() {
			Expect(driver.PutDocument(ctx, nil)).To(HaveOccurred())
		})

		It("replaces an existing document on re-put", func() {
			Expect(driver.PutDocument(ctx, doc("doc-1"))).To(Succeed())

			updated := doc("doc-1")
			updated.Name = "renamed.txt"
			Expect(driver.PutDocument(ctx, updated)).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("renamed.txt"))

			docs, err := driver.ListDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
		})

		It("returns ErrNotFound for a missing document", func() {
			_, err := driver.GetDocument(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})

		It("lists documents in creation order", func() {
			first := doc("doc-1")
			first.CreatedAt = time.Now().UTC().Add(-time.Hour)
			second := doc("doc-2")

			Expect(driver.PutDocument(ctx, first)).To(Succeed())
			Expect(driver.PutDocument(ctx, second)).To(Succeed())

			docs, err := driver.ListDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].ID).To(Equal("doc-1"))
			Expect(docs[1].ID).To(Equal("doc-2"))
		})

		It("deletes a document", func() {
			Expect(driver.PutDocument(ctx, doc("doc-1"))).To(Succeed())
			Expect(driver.DeleteDocument(ctx, "doc-1")).To(Succeed())

			_, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "doc-1"}))
		})

		It("returns ErrNotFound when deleting a missing document", func() {
			Expect(driver.DeleteDocument(ctx, "missing")).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})

		It("marks a document processed", func() {
			Expect(driver.PutDocument(ctx, doc("doc-1"))).To(Succeed())
			Expect(driver.MarkProcessed(ctx, "doc-1", 12)).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsProcessed).To(BeTrue())
			Expect(got.ChunkCount).To(Equal(12))
			Expect(got.ProcessingError).To(BeEmpty())
		})

		It("marks a document failed with the error message", func() {
			Expect(driver.PutDocument(ctx, doc("doc-1"))).To(Succeed())
			Expect(driver.MarkFailed(ctx, "doc-1", "document text too short")).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsProcessed).To(BeFalse())
			Expect(got.ChunkCount).To(BeZero())
			Expect(got.ProcessingError).To(Equal("document text too short"))
		})

		It("returns ErrNotFound when marking a missing document", func() {
			Expect(driver.MarkProcessed(ctx, "missing", 1)).To(MatchError(storage.ErrNotFound{ID: "missing"}))
			Expect(driver.MarkFailed(ctx, "missing", "boom")).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})
	})

	Describe("audits", func() {
		audit := func(id string, createdAt time.Time) *storage.AuditRecord {
			return &storage.AuditRecord{
				ID:                  id,
				Query:               "Can we extend a 30% exposure?",
				Status:              "NON_COMPLIANT",
				ConfidenceScore:     0.85,
				RetrievalConfidence: 0.84,
				SourceCount:         3,
				CreatedAt:           createdAt,
			}
		}

		It("stores and lists audit records newest first", func() {
			now := time.Now().UTC()
			Expect(driver.PutAudit(ctx, audit("a-1", now.Add(-time.Minute)))).To(Succeed())
			Expect(driver.PutAudit(ctx, audit("a-2", now))).To(Succeed())

			recs, err := driver.ListAudits(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].ID).To(Equal("a-2"))
			Expect(recs[1].ID).To(Equal("a-1"))
			Expect(recs[0].ConfidenceScore).To(Equal(0.85))
		})

		It("honors the list limit", func() {
			now := time.Now().UTC()
			Expect(driver.PutAudit(ctx, audit("a-1", now.Add(-time.Minute)))).To(Succeed())
			Expect(driver.PutAudit(ctx, audit("a-2", now))).To(Succeed())

			recs, err := driver.ListAudits(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].ID).To(Equal("a-2"))
		})

		It("rejects a nil audit record", func() {
			Expect(driver.PutAudit(ctx, nil)).To(HaveOccurred())
		})
	})
})
