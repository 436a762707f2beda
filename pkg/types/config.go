package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-chatbot/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LocatorConfig holds settings for the web-search paper locator.
type LocatorConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Google Custom Search API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// SearchEngineID is the Google programmable search engine identifier.
	SearchEngineID string `json:"search_engine_id,omitempty" yaml:"search_engine_id,omitempty"`

	// MaxResults is the number of web search results to request (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// FetchConfig holds settings for the arXiv paper fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PDFDir is the staging directory for downloaded PDFs (default "pdfs").
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// PollInterval is the interval between checks for materialized PDFs
	// (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// PollTimeout bounds the wait for PDFs to appear on disk (default 2m).
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
}

// ParserStrategy selects the text/metadata extraction strategy.
type ParserStrategy string

const (
	// StrategyFastLocal reads PDF text in-process and trims it between
	// section headings. Faster, less accurate.
	StrategyFastLocal ParserStrategy = "fast-local"

	// StrategyGrobid submits PDFs to a GROBID service and parses the TEI
	// output. Slower, more accurate.
	StrategyGrobid ParserStrategy = "grobid"
)

// ExtractConfig holds settings for the format extractor.
type ExtractConfig struct {
	HTTPConfig `yaml:",inline"`

	// Strategy selects the parser: fast-local or grobid.
	Strategy ParserStrategy `json:"strategy" yaml:"strategy"`

	// GrobidURL is the base URL of the GROBID service
	// (e.g. "http://localhost:8070").
	GrobidURL string `json:"grobid_url" yaml:"grobid_url"`

	// OutputDir is the staging directory for TEI artifacts (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PollInterval is the interval between checks for TEI artifacts
	// (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// PollTimeout bounds the wait for TEI artifacts (default 2m).
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
}

// ChunkConfig holds settings for the text chunker.
type ChunkConfig struct {
	// Size is the target maximum chunk length in characters (default 1024).
	Size int `json:"size" yaml:"size"`

	// Overlap is the shared span between consecutive chunks (default 100).
	// Must be smaller than Size.
	Overlap int `json:"overlap" yaml:"overlap"`
}

// StoreConfig holds settings for the Chroma vector store.
type StoreConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the base URL of the Chroma server (e.g. "http://localhost:8000").
	URL string `json:"url" yaml:"url"`

	// Collection is the Chroma collection name (default "arxiv").
	Collection string `json:"collection" yaml:"collection"`

	// EmbeddingModel is the embedding model identifier
	// (default "embed-english-v3.0").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// CohereAPIKey authenticates the embeddings provider.
	CohereAPIKey string `json:"cohere_api_key,omitempty" yaml:"cohere_api_key,omitempty"`
}

// RetrieveConfig holds settings for the retrieval tools.
type RetrieveConfig struct {
	// K is the number of documents returned per query (default 3).
	K int `json:"k" yaml:"k"`

	// FetchK is the number of candidates fetched before diversity
	// re-ranking (default 10).
	FetchK int `json:"fetch_k" yaml:"fetch_k"`

	// MaxQueries is the number of paraphrased sub-queries generated by
	// query expansion, including the original (default 3).
	MaxQueries int `json:"max_queries" yaml:"max_queries"`

	// ExpansionModel is the chat model used for query expansion
	// (default "command-r").
	ExpansionModel string `json:"expansion_model" yaml:"expansion_model"`
}

// CatalogConfig holds settings for the SQLite paper catalog.
type CatalogConfig struct {
	// Dir is the directory holding the catalog database (default "index").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Locator  LocatorConfig  `json:"locator" yaml:"locator"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Chunk    ChunkConfig    `json:"chunk" yaml:"chunk"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Retrieve RetrieveConfig `json:"retrieve" yaml:"retrieve"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
}
