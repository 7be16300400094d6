package ingest_test

import (
	"context"
	"os"
	"path/filepath"

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

// blockingExtractor parks every Extract call until released, so tests can
// hold a worker busy while they fill the queue.
type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingExtractor) Extract(string) (string, *chunk.Hints, error) {
	b.started <- struct{}{}
	<-b.release
	return circularText, nil, nil
}

var _ = Describe("Pool", func() {
	var (
		ctx     context.Context
		store   *inmemory.Driver
		vectors *testutils.MockVectorDriver
	)

	newPipeline := func(extractor extract.Extractor) *ingest.Pipeline {
		return ingest.NewPipeline(
			extractor,
			chunk.New(chunk.Config{}, zap.NewNop()),
			testutils.NewMockEmbedder(8),
			vectors,
			store,
			nop.NewPublisher(),
			zap.NewNop(),
		)
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
		vectors = testutils.NewMockVectorDriver()
	})

	It("processes enqueued jobs before Close returns", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "circular.txt")
		Expect(os.WriteFile(path, []byte(circularText), 0o644)).To(Succeed())
		Expect(store.PutDocument(ctx, &storage.Document{ID: "doc-1", Name: "circular.txt"})).To(Succeed())

		pool, err := ingest.NewPool(&ingest.PoolConfig{
			Pipeline: newPipeline(extract.NewPlainText()),
			Logger:   zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ok := pool.Enqueue(ingest.Job{
			DocumentID: "doc-1",
			Path:       path,
			Meta:       vector.DocumentMeta{DocumentName: "circular.txt"},
		})
		Expect(ok).To(BeTrue())

		pool.Close()

		doc, err := store.GetDocument(ctx, "doc-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.IsProcessed).To(BeTrue())
	})

	It("drops jobs when the queue is full", func() {
		extractor := &blockingExtractor{
			started: make(chan struct{}, 1),
			release: make(chan struct{}),
		}

		pool, err := ingest.NewPool(&ingest.PoolConfig{
			Pipeline:   newPipeline(extractor),
			NumWorkers: 1,
			QueueSize:  1,
			Logger:     zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		// First job occupies the single worker, second fills the queue,
		// third has nowhere to go.
		Expect(pool.Enqueue(ingest.Job{DocumentID: "doc-1"})).To(BeTrue())
		Eventually(extractor.started).Should(Receive())

		Expect(pool.Enqueue(ingest.Job{DocumentID: "doc-2"})).To(BeTrue())
		Expect(pool.Enqueue(ingest.Job{DocumentID: "doc-3"})).To(BeFalse())

		close(extractor.release)
		Eventually(extractor.started).Should(Receive())
		pool.Close()
	})
})
