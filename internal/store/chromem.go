package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"knowledge-rag/internal/models"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

const compress = false

// ChromemStore is a chromem-go backed passage store. The embedder is wired
// in as the collection embedding func, so both indexing and text queries go
// through the same model.
type ChromemStore struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	encryptionKey string
	filePath      string
}

func NewChromemStore(dbPath, collectionName string, inMemory bool, encryptionKey string, embedder *embeddings.EmbedderImpl) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	s := &ChromemStore{
		db:            db,
		dbPath:        dbPath,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}

	// An in-memory database starts empty; restore the previous export if one
	// exists so indexed documents survive across runs.
	if inMemory && encryptionKey != "" {
		if _, err := os.Stat(s.filePath); err == nil {
			if err := s.Import(context.Background()); err != nil {
				return nil, err
			}
			log.Debug().Str("file", s.filePath).Msg("Imported collection")
		}
	}

	embedFunc := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	})

	collection, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	s.collection = collection

	return s, nil
}

// Index adds chunks in one batch; if the batch fails it falls back to adding
// documents one by one so failures are still reported per item.
func (s *ChromemStore) Index(ctx context.Context, chunks []models.Chunk) []IndexFailure {
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:       chunk.ID,
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		}
	}

	err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU())
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Msg("Batch indexing failed, retrying per document")

	var failures []IndexFailure
	for i, doc := range docs {
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			failures = append(failures, IndexFailure{
				ID:   doc.ID,
				Name: chunks[i].Name(),
				Err:  fmt.Errorf("%w: %v", models.ErrIndexing, err),
			})
		}
	}
	return failures
}

// Search returns up to topK chunks ranked by descending similarity.
// chromem rejects result counts above the collection size, so topK is
// clamped first.
func (s *ChromemStore) Search(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	n := topK
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	chunks := make([]models.Chunk, len(results))
	for i, res := range results {
		chunks[i] = models.Chunk{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: res.Metadata,
		}
	}
	return chunks, nil
}

// Export writes the collection to an encrypted file. Used with in-memory
// databases that would otherwise lose the index on exit.
func (s *ChromemStore) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("collection", s.collection.Name).Str("file", s.filePath).Msg("Exporting collection")
	if err := os.MkdirAll(s.dbPath, 0o755); err != nil {
		return err
	}
	if err := s.db.ExportToFile(s.filePath, compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

func (s *ChromemStore) Import(ctx context.Context) error {
	if err := s.db.ImportFromFile(s.filePath, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	return nil
}
