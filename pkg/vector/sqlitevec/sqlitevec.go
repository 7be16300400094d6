// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db         *sql.DB
	dimensions int
	logger     *zap.Logger
}

// Config holds configuration for the sqlite-vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the embedding vector dimension. Required.
	Dimensions int
}

// NewDriver creates a SQLite vector driver backed by sqlite-vec. The vec0
// virtual table is declared with the cosine distance metric, so query
// distances are cosine distances and similarity is 1 minus distance.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Chunk metadata lives in a plain table keyed by the same rowid as the
	// vec0 virtual table, which only holds the embeddings.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			section_title TEXT NOT NULL DEFAULT '',
			clause_number TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			document_name TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			circular_number TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating document index: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Int("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Driver{
		db:         db,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to the little-endian BLOB format
// sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Insert stores the embedded chunks of one document and returns the number
// stored. The whole insert is one transaction.
func (d *Driver) Insert(ctx context.Context, documentID string, chunks []vector.EmbeddedChunk, meta vector.DocumentMeta) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	for _, c := range chunks {
		if len(c.Embedding) != d.dimensions {
			return 0, fmt.Errorf("%w: got %d, want %d", vector.ErrDimension, len(c.Embedding), d.dimensions)
		}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range chunks {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO chunks(
				chunk_id, document_id, chunk_index, content,
				section_title, clause_number,
				document_type, document_name, source, circular_number
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), documentID, c.Chunk.Index, c.Chunk.Content,
			c.Chunk.SectionTitle, c.Chunk.ClauseNumber,
			meta.DocumentType, meta.DocumentName, meta.Source, meta.CircularNumber,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting chunk %d of document %s: %w", c.Chunk.Index, documentID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("getting rowid for chunk %d: %w", c.Chunk.Index, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunk_embeddings(rowid, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(c.Embedding),
		); err != nil {
			return 0, fmt.Errorf("inserting embedding for chunk %d: %w", c.Chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("inserted chunks",
		zap.String("document_id", documentID),
		zap.Int("count", len(chunks)),
	)

	return len(chunks), nil
}

// Search returns up to limit nearest chunks for the query embedding.
// Filters apply after the KNN pass, which is why callers over-fetch.
func (d *Driver) Search(ctx context.Context, embedding []float32, limit int, filter vector.Filter) ([]vector.Result, error) {
	if len(embedding) != d.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", vector.ErrDimension, len(embedding), d.dimensions)
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			c.chunk_id, c.document_id, c.chunk_index, c.content,
			c.section_title, c.clause_number,
			c.document_type, c.document_name, c.source, c.circular_number,
			ve.distance
		FROM chunk_embeddings ve
		INNER JOIN chunks c ON c.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?`
	args := []any{serializeFloat32(embedding), limit}

	if filter.DocumentType != "" {
		query += ` AND c.document_type = ?`
		args = append(args, filter.DocumentType)
	}
	if len(filter.DocumentIDs) > 0 {
		placeholders := make([]string, len(filter.DocumentIDs))
		for i, id := range filter.DocumentIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += fmt.Sprintf(` AND c.document_id IN (%s)`, strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ve.distance`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.Result
	for rows.Next() {
		var r vector.Result
		var distance float64
		if err := rows.Scan(
			&r.ChunkID, &r.DocumentID, &r.ChunkIndex, &r.Content,
			&r.SectionTitle, &r.ClauseNumber,
			&r.Meta.DocumentType, &r.Meta.DocumentName, &r.Meta.Source, &r.Meta.CircularNumber,
			&distance,
		); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		r.Similarity = 1 - distance
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", zap.Int("results", len(results)))

	return results, nil
}

// DeleteByDocument removes all chunks stored for the given document.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT rowid FROM chunks WHERE document_id = ?`, documentID,
	)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chunk_embeddings WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_id = ?`, documentID,
	); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted document chunks",
		zap.String("document_id", documentID),
		zap.Int("count", len(rowIDs)),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
