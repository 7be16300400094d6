package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	It("stores value copies, not caller pointers", func() {
		doc := &storage.Document{ID: "doc-1", Name: "original.txt", Type: "SBP_CIRCULAR"}
		Expect(driver.PutDocument(ctx, doc)).To(Succeed())

		doc.Name = "mutated.txt"

		got, err := driver.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("original.txt"))
	})

	It("returns copies callers cannot mutate through", func() {
		Expect(driver.PutDocument(ctx, &storage.Document{ID: "doc-1", Name: "a.txt"})).To(Succeed())

		got, err := driver.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		got.Name = "mutated.txt"

		again, err := driver.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Name).To(Equal("a.txt"))
	})

	It("returns ErrNotFound for missing documents", func() {
		_, err := driver.GetDocument(ctx, "missing")
		Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))

		Expect(driver.DeleteDocument(ctx, "missing")).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		Expect(driver.MarkProcessed(ctx, "missing", 1)).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		Expect(driver.MarkFailed(ctx, "missing", "boom")).To(MatchError(storage.ErrNotFound{ID: "missing"}))
	})

	It("lists documents ordered by creation time", func() {
		older := &storage.Document{ID: "doc-1", CreatedAt: time.Now().UTC().Add(-time.Hour)}
		newer := &storage.Document{ID: "doc-2"}

		Expect(driver.PutDocument(ctx, newer)).To(Succeed())
		Expect(driver.PutDocument(ctx, older)).To(Succeed())

		docs, err := driver.ListDocuments(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
		Expect(docs[0].ID).To(Equal("doc-1"))
		Expect(docs[1].ID).To(Equal("doc-2"))
	})

	It("tracks processing state transitions", func() {
		Expect(driver.PutDocument(ctx, &storage.Document{ID: "doc-1"})).To(Succeed())

		Expect(driver.MarkFailed(ctx, "doc-1", "embedding failed")).To(Succeed())
		doc, err := driver.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.ProcessingError).To(Equal("embedding failed"))

		Expect(driver.MarkProcessed(ctx, "doc-1", 7)).To(Succeed())
		doc, err = driver.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.IsProcessed).To(BeTrue())
		Expect(doc.ChunkCount).To(Equal(7))
		Expect(doc.ProcessingError).To(BeEmpty())
	})

	It("lists audits newest first with a limit", func() {
		now := time.Now().UTC()
		Expect(driver.PutAudit(ctx, &storage.AuditRecord{ID: "a-1", CreatedAt: now.Add(-time.Minute)})).To(Succeed())
		Expect(driver.PutAudit(ctx, &storage.AuditRecord{ID: "a-2", CreatedAt: now})).To(Succeed())

		recs, err := driver.ListAudits(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].ID).To(Equal("a-2"))

		limited, err := driver.ListAudits(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(limited).To(HaveLen(1))
	})
})
