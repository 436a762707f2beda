// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/arxiv"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/catalog"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/chunk"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/extract"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/indexer"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/ingest"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/locate"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/retrieve"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/store"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "arxiv-chatbot/0.1"
)

func init() {
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("locator.max_results", 5)
	viper.SetDefault("fetch.pdf_dir", "pdfs")
	viper.SetDefault("fetch.download_delay", time.Second)
	viper.SetDefault("extract.strategy", string(types.StrategyFastLocal))
	viper.SetDefault("extract.grobid_url", "http://localhost:8070")
	viper.SetDefault("extract.output_dir", "output")
	viper.SetDefault("chunk.size", 1024)
	viper.SetDefault("chunk.overlap", 100)
	viper.SetDefault("store.url", "http://localhost:8000")
	viper.SetDefault("store.collection", "arxiv")
	viper.SetDefault("store.embedding_model", "embed-english-v3.0")
	viper.SetDefault("retrieve.k", 3)
	viper.SetDefault("retrieve.fetch_k", 10)
	viper.SetDefault("retrieve.max_queries", 3)
	viper.SetDefault("retrieve.expansion_model", "command-r")
	viper.SetDefault("catalog.dir", "index")
}

// pipelineConfig assembles stage configuration from viper, env, and
// loaded secrets.
func pipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: defaultUserAgent,
	}
	return types.PipelineConfig{
		Locator: types.LocatorConfig{
			HTTPConfig:     httpCfg,
			APIKey:         secretOrEnv("google-api-key", "GOOGLE_API_KEY"),
			SearchEngineID: secretOrEnv("google-cse-id", "GOOGLE_CSE_ID"),
			MaxResults:     viper.GetInt("locator.max_results"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig:    httpCfg,
			PDFDir:        viper.GetString("fetch.pdf_dir"),
			DownloadDelay: viper.GetDuration("fetch.download_delay"),
		},
		Extract: types.ExtractConfig{
			HTTPConfig: httpCfg,
			Strategy:   types.ParserStrategy(viper.GetString("extract.strategy")),
			GrobidURL:  viper.GetString("extract.grobid_url"),
			OutputDir:  viper.GetString("extract.output_dir"),
		},
		Chunk: types.ChunkConfig{
			Size:    viper.GetInt("chunk.size"),
			Overlap: viper.GetInt("chunk.overlap"),
		},
		Store: types.StoreConfig{
			HTTPConfig:     httpCfg,
			URL:            viper.GetString("store.url"),
			Collection:     viper.GetString("store.collection"),
			EmbeddingModel: viper.GetString("store.embedding_model"),
			CohereAPIKey:   secretOrEnv("cohere-api-key", "COHERE_API_KEY"),
		},
		Retrieve: types.RetrieveConfig{
			K:              viper.GetInt("retrieve.k"),
			FetchK:         viper.GetInt("retrieve.fetch_k"),
			MaxQueries:     viper.GetInt("retrieve.max_queries"),
			ExpansionModel: viper.GetString("retrieve.expansion_model"),
		},
		Catalog: types.CatalogConfig{
			Dir: viper.GetString("catalog.dir"),
		},
	}
}

func newHTTPClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// newStore connects to Chroma with a Cohere embeddings provider.
func newStore(ctx context.Context, cfg types.PipelineConfig) (*store.Store, error) {
	client := newHTTPClient(cfg.Store.HTTPConfig)
	embedder := store.NewCohereEmbeddings(client, cfg.Store.CohereAPIKey, cfg.Store.EmbeddingModel)
	return store.New(ctx, client, cfg.Store, embedder)
}

// newIngestPipeline builds the extract-chunk-store-catalog pipeline. The
// caller owns closing the returned catalog store.
func newIngestPipeline(cfg types.PipelineConfig, st *store.Store) (*ingest.Pipeline, *catalog.Store, error) {
	extractor, err := extract.New(newHTTPClient(cfg.Extract.HTTPConfig), cfg.Extract)
	if err != nil {
		return nil, nil, err
	}
	splitter, err := chunk.New(cfg.Chunk)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return ingest.New(extractor, splitter, st, cat), cat, nil
}

// newIndexer wires the full locate-fetch-ingest orchestrator.
func newIndexer(cfg types.PipelineConfig, st *store.Store, pipeline *ingest.Pipeline) *indexer.Indexer {
	locator := locate.New(newHTTPClient(cfg.Locator.HTTPConfig), cfg.Locator)
	fetcher := arxiv.NewClient(newHTTPClient(cfg.Fetch.HTTPConfig), cfg.Fetch)
	return indexer.New(locator, st, fetcher, pipeline)
}

// newRetriever builds the query-expansion retriever.
func newRetriever(cfg types.PipelineConfig, st *store.Store) *retrieve.Retriever {
	expander := retrieve.NewCohereExpander(
		newHTTPClient(cfg.Store.HTTPConfig), cfg.Store.CohereAPIKey, cfg.Retrieve.ExpansionModel)
	return retrieve.New(expander, st, cfg.Retrieve)
}
