package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/vector"
	"github.com/complydesk/arbiter/pkg/vector/qdrant"
	"github.com/complydesk/arbiter/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	Target       string
	Collection   string
	Dimensions   int
	Logger       *zap.Logger
}

// NewVectorDriver constructs the configured vector store driver.
func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Addr:       o.Target,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
