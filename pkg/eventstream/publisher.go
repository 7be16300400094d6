package eventstream

import "context"

// Publisher publishes ingestion and verdict events to an event stream
// backend.
type Publisher interface {
	PublishDocumentIngested(ctx context.Context, event *DocumentIngestedEvent) error
	PublishVerdictIssued(ctx context.Context, event *VerdictIssuedEvent) error
	Close() error
}
