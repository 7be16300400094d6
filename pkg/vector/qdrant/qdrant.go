// Package qdrant provides a Qdrant-backed vector driver over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/complydesk/arbiter/pkg/vector"
)

// Driver implements vector.Driver using Qdrant.
type Driver struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dimensions  int
	logger      *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Addr is the Qdrant gRPC address (host:port).
	Addr string

	// Collection is the collection name.
	Collection string

	// Dimensions is the embedding vector dimension. Required.
	Dimensions int
}

// NewDriver connects to Qdrant and ensures the collection exists with a
// cosine distance index, so scores come back as similarities directly.
func NewDriver(ctx context.Context, c Config, logger *zap.Logger) (*Driver, error) {
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be configured")
	}

	conn, err := grpc.NewClient(c.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant connect: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  c.Collection,
		dimensions:  c.Dimensions,
		logger:      logger,
	}

	if err := d.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("connected to qdrant",
		zap.String("addr", c.Addr),
		zap.String("collection", c.Collection),
		zap.Int("dimensions", c.Dimensions),
	)

	return d, nil
}

func (d *Driver) ensureCollection(ctx context.Context) error {
	_, err := d.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(d.dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("%w: creating collection %q: %v", vector.ErrConnection, d.collection, err)
	}
	return nil
}

// Insert stores the embedded chunks of one document and returns the number
// stored.
func (d *Driver) Insert(ctx context.Context, documentID string, chunks []vector.EmbeddedChunk, meta vector.DocumentMeta) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	points := make([]*pb.PointStruct, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != d.dimensions {
			return 0, fmt.Errorf("%w: got %d, want %d", vector.ErrDimension, len(c.Embedding), d.dimensions)
		}

		payload := map[string]*pb.Value{
			"content":         stringValue(c.Chunk.Content),
			"document_id":     stringValue(documentID),
			"chunk_index":     {Kind: &pb.Value_IntegerValue{IntegerValue: int64(c.Chunk.Index)}},
			"section_title":   stringValue(c.Chunk.SectionTitle),
			"clause_number":   stringValue(c.Chunk.ClauseNumber),
			"document_type":   stringValue(meta.DocumentType),
			"document_name":   stringValue(meta.DocumentName),
			"source":          stringValue(meta.Source),
			"circular_number": stringValue(meta.CircularNumber),
		}

		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: uuid.NewString()}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: c.Embedding}}},
			Payload: payload,
		}
	}

	_, err := d.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("inserted chunks",
		zap.String("document_id", documentID),
		zap.Int("count", len(points)),
	)

	return len(points), nil
}

// Search returns up to limit nearest chunks for the query embedding.
func (d *Driver) Search(ctx context.Context, embedding []float32, limit int, filter vector.Filter) ([]vector.Result, error) {
	if len(embedding) != d.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", vector.ErrDimension, len(embedding), d.dimensions)
	}
	if limit <= 0 {
		limit = 10
	}

	resp, err := d.points.Search(ctx, &pb.SearchPoints{
		CollectionName: d.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         buildFilter(filter),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	results := make([]vector.Result, len(resp.Result))
	for i, pt := range resp.Result {
		r := vector.Result{
			ChunkID:    pt.Id.GetUuid(),
			Similarity: float64(pt.Score),
		}
		for k, v := range pt.Payload {
			switch k {
			case "content":
				r.Content = v.GetStringValue()
			case "document_id":
				r.DocumentID = v.GetStringValue()
			case "chunk_index":
				r.ChunkIndex = int(v.GetIntegerValue())
			case "section_title":
				r.SectionTitle = v.GetStringValue()
			case "clause_number":
				r.ClauseNumber = v.GetStringValue()
			case "document_type":
				r.Meta.DocumentType = v.GetStringValue()
			case "document_name":
				r.Meta.DocumentName = v.GetStringValue()
			case "source":
				r.Meta.Source = v.GetStringValue()
			case "circular_number":
				r.Meta.CircularNumber = v.GetStringValue()
			}
		}
		results[i] = r
	}

	d.logger.Debug("queried qdrant", zap.Int("results", len(results)))

	return results, nil
}

// DeleteByDocument removes all chunks stored for the given document via a
// payload filter delete.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := d.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: d.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{matchKeyword("document_id", documentID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}

	d.logger.Debug("deleted document chunks", zap.String("document_id", documentID))

	return nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

func buildFilter(filter vector.Filter) *pb.Filter {
	var must []*pb.Condition

	if filter.DocumentType != "" {
		must = append(must, matchKeyword("document_type", filter.DocumentType))
	}
	if len(filter.DocumentIDs) > 0 {
		must = append(must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: "document_id",
					Match: &pb.Match{
						MatchValue: &pb.Match_Keywords{
							Keywords: &pb.RepeatedStrings{Strings: filter.DocumentIDs},
						},
					},
				},
			},
		})
	}

	if len(must) == 0 {
		return nil
	}
	return &pb.Filter{Must: must}
}

func matchKeyword(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

var _ vector.Driver = (*Driver)(nil)
