package store

import (
	"context"
	"database/sql"
	"fmt"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/models"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string            `bun:"id,pk"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     []float32         `bun:"embedding,notnull,type:vector(768)"`
}

// PGStore is a pgvector backed passage store. Queries are embedded with the
// same embedder used at indexing time.
type PGStore struct {
	db       *bun.DB
	embedder *embeddings.EmbedderImpl
}

func NewPGStore(cfg *config.StoreConfig, embedder *embeddings.EmbedderImpl) (*PGStore, error) {
	dsn := cfg.PostgresURL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.PostgresKey)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PGStore{db: db, embedder: embedder}, nil
}

func (s *PGStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *PGStore) Reset(ctx context.Context) error {
	_, err := s.db.NewDropTable().Model((*document)(nil)).IfExists().Exec(ctx)
	return err
}

func (s *PGStore) Close() error {
	return s.db.Close()
}

// Index embeds and inserts chunks one row at a time, capturing failures per
// item so a bad chunk never aborts the batch.
func (s *PGStore) Index(ctx context.Context, chunks []models.Chunk) []IndexFailure {
	var failures []IndexFailure
	for _, chunk := range chunks {
		if err := s.indexOne(ctx, chunk); err != nil {
			failures = append(failures, IndexFailure{
				ID:   chunk.ID,
				Name: chunk.Name(),
				Err:  fmt.Errorf("%w: %v", models.ErrIndexing, err),
			})
		}
	}
	return failures
}

func (s *PGStore) indexOne(ctx context.Context, chunk models.Chunk) error {
	vector, err := s.embedder.EmbedQuery(ctx, chunk.Content)
	if err != nil {
		return err
	}
	doc := &document{
		ID:        chunk.ID,
		Content:   chunk.Content,
		Metadata:  chunk.Metadata,
		Embedding: vector,
	}
	_, err = s.db.NewInsert().Model(doc).Exec(ctx)
	return err
}

func (s *PGStore) Search(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var docs []document
	err = s.db.NewSelect().
		Model(&docs).
		Column("id", "content", "metadata").
		OrderExpr("embedding <-> ?", vector).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, len(docs))
	for i, doc := range docs {
		chunks[i] = models.Chunk{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		}
	}
	return chunks, nil
}
