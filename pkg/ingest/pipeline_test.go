package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/chunk"
	"github.com/complydesk/arbiter/pkg/eventstream/nop"
	"github.com/complydesk/arbiter/pkg/extract"
	"github.com/complydesk/arbiter/pkg/ingest"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/storage/inmemory"
	testutils "github.com/complydesk/arbiter/pkg/utils/test"
	"github.com/complydesk/arbiter/pkg/vector"
)

const circularText = `Section 1: Exposure Limits
Total exposure to any single person shall not exceed 25% of the bank's equity.
Section 2: Reporting
Banks shall report all large exposures to the State Bank on a quarterly basis.
`

var _ = Describe("Pipeline", func() {
	var (
		ctx      context.Context
		dir      string
		store    *inmemory.Driver
		vectors  *testutils.MockVectorDriver
		embedder *testutils.MockEmbedder
		pipeline *ingest.Pipeline
		meta     vector.DocumentMeta
	)

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	putDocument := func(id string) {
		Expect(store.PutDocument(ctx, &storage.Document{
			ID:   id,
			Name: "circular.txt",
			Type: "SBP_CIRCULAR",
		})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		store = inmemory.NewDriver()
		vectors = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder(8)
		meta = vector.DocumentMeta{
			DocumentType: "SBP_CIRCULAR",
			DocumentName: "circular.txt",
		}

		pipeline = ingest.NewPipeline(
			extract.NewPlainText(),
			chunk.New(chunk.Config{}, zap.NewNop()),
			embedder,
			vectors,
			store,
			nop.NewPublisher(),
			zap.NewNop(),
		)
	})

	It("extracts, chunks, embeds, and stores a document", func() {
		putDocument("doc-1")
		path := writeFile("circular.txt", circularText)

		Expect(pipeline.Ingest(ctx, "doc-1", path, meta)).To(Succeed())

		Expect(vectors.Inserted).To(HaveKey("doc-1"))
		Expect(vectors.Inserted["doc-1"]).NotTo(BeEmpty())

		doc, err := store.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.IsProcessed).To(BeTrue())
		Expect(doc.ChunkCount).To(Equal(len(vectors.Inserted["doc-1"])))
		Expect(doc.ProcessingError).To(BeEmpty())
	})

	It("deletes previous chunks before inserting new ones", func() {
		putDocument("doc-1")
		path := writeFile("circular.txt", circularText)

		Expect(pipeline.Ingest(ctx, "doc-1", path, meta)).To(Succeed())
		Expect(pipeline.Ingest(ctx, "doc-1", path, meta)).To(Succeed())

		Expect(vectors.Deleted).To(Equal([]string{"doc-1", "doc-1"}))
		Expect(vectors.Inserted).To(HaveKey("doc-1"))
	})

	It("rejects documents with too little text", func() {
		putDocument("doc-1")
		path := writeFile("stub.txt", "too short")

		err := pipeline.Ingest(ctx, "doc-1", path, meta)

		Expect(err).To(MatchError(ContainSubstring("too short")))
		Expect(vectors.Deleted).To(BeEmpty())

		doc, getErr := store.GetDocument(ctx, "doc-1")
		Expect(getErr).NotTo(HaveOccurred())
		Expect(doc.IsProcessed).To(BeFalse())
		Expect(doc.ProcessingError).To(ContainSubstring("too short"))
	})

	It("rejects unsupported file types", func() {
		putDocument("doc-1")
		path := writeFile("image.png", strings.Repeat("x", 100))

		err := pipeline.Ingest(ctx, "doc-1", path, meta)

		Expect(err).To(MatchError(extract.ErrUnsupported))
	})

	It("marks the document failed when embedding fails", func() {
		putDocument("doc-1")
		text := "A single section of regulatory text that comfortably exceeds the length floor."
		path := writeFile("circular.txt", text)
		embedder.FailOn = text

		err := pipeline.Ingest(ctx, "doc-1", path, meta)

		Expect(err).To(MatchError(ContainSubstring("embedding chunks")))
		Expect(vectors.Deleted).To(BeEmpty())

		doc, getErr := store.GetDocument(ctx, "doc-1")
		Expect(getErr).NotTo(HaveOccurred())
		Expect(doc.ProcessingError).To(ContainSubstring("embedding chunks"))
	})

	It("marks the document failed when the vector store rejects the insert", func() {
		putDocument("doc-1")
		path := writeFile("circular.txt", circularText)
		vectors.FailInsert = true

		err := pipeline.Ingest(ctx, "doc-1", path, meta)

		Expect(err).To(MatchError(ContainSubstring("storing chunks")))

		doc, getErr := store.GetDocument(ctx, "doc-1")
		Expect(getErr).NotTo(HaveOccurred())
		Expect(doc.IsProcessed).To(BeFalse())
	})

	It("does not delete existing chunks when the context is already cancelled", func() {
		putDocument("doc-1")
		path := writeFile("circular.txt", circularText)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := pipeline.Ingest(cancelled, "doc-1", path, meta)

		Expect(err).To(MatchError(context.Canceled))
		Expect(vectors.Deleted).To(BeEmpty())
		Expect(vectors.Inserted).NotTo(HaveKey("doc-1"))
	})
})
