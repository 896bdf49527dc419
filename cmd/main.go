package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/embedding"
	"knowledge-rag/internal/helper"
	"knowledge-rag/internal/ingest"
	"knowledge-rag/internal/ledger"
	"knowledge-rag/internal/llmservice"
	"knowledge-rag/internal/models"
	"knowledge-rag/internal/parser"
	"knowledge-rag/internal/rag"
	"knowledge-rag/internal/store"
)

const (
	defaultConfigPath = "./configs/config.yaml"
	defaultLedgerPath = "./ledger.db"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	dataset := flag.String("dataset", "", "Path or URL of a JSON dataset to index")
	filePath := flag.String("file", "", "Path to a document file to index")
	query := flag.String("query", "", "Question to answer")
	dryRun := flag.Bool("dry-run", false, "Parse and split only, do not index")
	reset := flag.Bool("reset", false, "Drop existing documents before indexing (postgres backend)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	switch {
	case *dataset != "":
		ingestDataset(ctx, cfg, *dataset, *dryRun, *reset)
	case *filePath != "":
		ingestFile(ctx, cfg, *filePath, *dryRun, *reset)
	case *query != "":
		answer(ctx, cfg, *query)
	default:
		log.Fatal().Msg("Please provide a dataset using -dataset, a document file using -file, or a question using -query")
	}
}

func ingestDataset(ctx context.Context, cfg *config.Config, dataset string, dryRun, reset bool) {
	path := dataset
	if strings.HasPrefix(dataset, "http://") || strings.HasPrefix(dataset, "https://") {
		tmp, err := ingest.FetchDataset(ctx, dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Error downloading dataset")
		}
		defer os.Remove(tmp)
		path = tmp
	}

	records, err := ingest.LoadRecords(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading dataset")
	}

	chunks, failures := ingest.Chunks(records, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	log.Info().Int("records", len(records)).Int("chunks", len(chunks)).Int("invalid", len(failures)).Msg("Split dataset")

	if dryRun {
		helper.PrettyPrint(chunks)
		return
	}

	ldg := openLedger(cfg)
	defer ldg.Close()
	for _, failure := range failures {
		log.Error().Err(failure.Err).Str("name", failure.Key()).Msg("Record failed validation")
		if err := ldg.Record(failure.Key(), failure.Err); err != nil {
			log.Error().Err(err).Msg("Error updating ledger")
		}
	}

	indexChunks(ctx, cfg, ldg, chunks, reset)
}

func ingestFile(ctx context.Context, cfg *config.Config, filePath string, dryRun, reset bool) {
	chunks, err := parser.ParseFile(filePath, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}
	log.Info().Int("chunks", len(chunks)).Msg("Split document")

	if dryRun {
		helper.PrettyPrint(chunks)
		return
	}

	ldg := openLedger(cfg)
	defer ldg.Close()

	indexChunks(ctx, cfg, ldg, chunks, reset)
}

// indexChunks stores chunks in the configured backend, recording per-document
// outcomes in the ledger. Individual failures are logged; the batch continues.
func indexChunks(ctx context.Context, cfg *config.Config, ldg *ledger.Ledger, chunks []models.Chunk, reset bool) {
	st, closeStore := buildStore(ctx, cfg, reset)
	defer closeStore()

	failures := st.Index(ctx, chunks)
	failedIDs := make(map[string]error, len(failures))
	for _, failure := range failures {
		log.Error().Err(failure.Err).Str("name", failure.Name).Str("id", failure.ID).Msg("Error indexing chunk")
		failedIDs[failure.ID] = failure.Err
	}

	for _, chunk := range chunks {
		if err := ldg.Record(chunk.Name(), failedIDs[chunk.ID]); err != nil {
			log.Error().Err(err).Msg("Error updating ledger")
		}
	}

	log.Info().Int("indexed", len(chunks)-len(failures)).Int("failed", len(failures)).Msg("Indexing done")
}

func answer(ctx context.Context, cfg *config.Config, query string) {
	st, closeStore := buildStore(ctx, cfg, false)
	defer closeStore()

	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	pipeline := rag.NewRAG(st, llm, cfg)
	response, err := pipeline.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func buildStore(ctx context.Context, cfg *config.Config, reset bool) (store.Store, func()) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	switch cfg.Store.Backend {
	case "postgres":
		pg, err := store.NewPGStore(&cfg.Store, embedder)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		if reset {
			if err := pg.Reset(ctx); err != nil {
				log.Fatal().Err(err).Msg("Error clearing documents")
			}
		}
		if err := pg.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		return pg, func() { pg.Close() }
	case "chromem", "":
		if !cfg.Store.InMemory {
			if err := helper.CreateFolder(cfg.Store.Path); err != nil {
				log.Fatal().Err(err).Msg("Error creating folder")
			}
		}
		cs, err := store.NewChromemStore(cfg.Store.Path, cfg.Store.Collection, cfg.Store.InMemory, cfg.RAG.EncryptionKey, embedder)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating vector database manager")
		}
		// An in-memory collection only survives the process through its
		// encrypted export.
		return cs, func() {
			if !cfg.Store.InMemory {
				return
			}
			if err := cs.Export(ctx); err != nil {
				log.Error().Err(err).Msg("Error exporting collection")
			}
		}
	default:
		log.Fatal().Str("backend", cfg.Store.Backend).Msg("Unknown store backend")
		return nil, nil
	}
}

func openLedger(cfg *config.Config) *ledger.Ledger {
	path := cfg.LedgerPath
	if path == "" {
		path = defaultLedgerPath
	}
	ldg, err := ledger.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening ledger")
	}
	return ldg
}
