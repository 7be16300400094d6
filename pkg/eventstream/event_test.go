package eventstream_test

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/complydesk/arbiter/pkg/eventstream"
	"github.com/complydesk/arbiter/pkg/eventstream/nop"
)

var _ = Describe("event payloads", func() {
	It("serializes document ingested events with snake_case keys", func() {
		event := &eventstream.DocumentIngestedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeDocumentIngested,
			EventID:       "evt-1",
			EmittedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			DocumentID:    "doc-1",
			DocumentName:  "circular.txt",
			DocumentType:  "SBP_CIRCULAR",
			ChunkCount:    12,
			DurationMs:    340,
		}

		raw, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded["schema_version"]).To(BeEquivalentTo(1))
		Expect(decoded["event_type"]).To(Equal("arbiter.document.ingested"))
		Expect(decoded["document_id"]).To(Equal("doc-1"))
		Expect(decoded["chunk_count"]).To(BeEquivalentTo(12))
		Expect(decoded["duration_ms"]).To(BeEquivalentTo(340))
	})

	It("serializes verdict issued events with snake_case keys", func() {
		event := &eventstream.VerdictIssuedEvent{
			SchemaVersion:       eventstream.SchemaVersionV1,
			EventType:           eventstream.EventTypeVerdictIssued,
			EventID:             "evt-2",
			Query:               "Can we extend a 30% exposure?",
			Status:              "NON_COMPLIANT",
			ConfidenceScore:     0.85,
			RetrievalConfidence: 0.84,
			SourceCount:         3,
		}

		raw, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded["event_type"]).To(Equal("arbiter.verdict.issued"))
		Expect(decoded["status"]).To(Equal("NON_COMPLIANT"))
		Expect(decoded["confidence_score"]).To(BeEquivalentTo(0.85))
		Expect(decoded["retrieval_confidence"]).To(BeEquivalentTo(0.84))
	})
})

var _ = Describe("nop publisher", func() {
	publisher := nop.NewPublisher()
	ctx := context.Background()

	It("accepts events and does nothing", func() {
		Expect(publisher.PublishDocumentIngested(ctx, &eventstream.DocumentIngestedEvent{})).To(Succeed())
		Expect(publisher.PublishVerdictIssued(ctx, &eventstream.VerdictIssuedEvent{})).To(Succeed())
		Expect(publisher.Close()).To(Succeed())
	})

	It("rejects nil events", func() {
		Expect(publisher.PublishDocumentIngested(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(publisher.PublishVerdictIssued(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})
