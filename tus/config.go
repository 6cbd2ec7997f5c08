package tus

import (
	"net/http"
	"runtime"
	"time"
)

// ChecksumScope selects whether Upload-Checksum is computed once over the
// whole file (sent identically on every PATCH) or freshly over each chunk
// actually being sent. See the design notes on this tradeoff: per-chunk is
// the more robust choice and is the default here; whole-file mode remains
// available for servers that expect the historical behavior.
type ChecksumScope string

const (
	ChecksumScopeChunk ChecksumScope = "chunk"
	ChecksumScopeFile  ChecksumScope = "file"
)

// Config holds everything the client needs beyond the per-upload
// parameters: where the server lives, how to authenticate/checksum/retry,
// and how big a single PATCH body may be.
type Config struct {
	// BaseURL is the scheme+host (and optional path prefix) the transport
	// resolves apiPath-relative URLs against, e.g. "https://uploads.example.com".
	BaseURL string

	// APIPath is the fixed URL path segment under which uploads are
	// created and addressed, e.g. "/files".
	APIPath string

	// Algorithm is the checksum algorithm used when the caller doesn't
	// request one explicitly. Defaults to DefaultAlgorithm ("sha256").
	Algorithm string

	// ChecksumScope selects per-chunk vs whole-file checksumming. Defaults
	// to ChecksumScopeChunk.
	ChecksumScope ChecksumScope

	// ChunkSize bounds a single PATCH body, in bytes. It is an
	// implementation choice, not protocol-bound. Defaults to 8 MiB.
	ChunkSize int64

	// MaxRetries, RetryWaitMin, RetryWaitMax configure the default
	// retryablehttp-backed transport's backoff.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestTimeout bounds a single HTTP round-trip.
	RequestTimeout time.Duration

	// ExtraHeaders are merged into every request the Client sends (HEAD,
	// POST, PATCH, DELETE). Any key that collides with a protocol-owned
	// header (§4.3) is dropped rather than allowed to override it.
	ExtraHeaders http.Header

	// Concurrency, MaxRetryPerChunk, and HungThreshold configure the
	// optional multi-chunk parallel uploader (tus/chunked) once it's
	// dispatched; the single-stream STREAMING loop never reads them.
	Concurrency      int
	MaxRetryPerChunk int
	HungThreshold    time.Duration

	// ParallelChunks opts an Upload into the multi-chunk parallel uploader
	// (C7b): Upload dispatches to it automatically when set above 1 and
	// the server's creation response advertises more than one chunk, and
	// Upload.UploadParallel uses it regardless of advertisement. A value
	// <= 1 turns off the automatic dispatch from Upload; UploadParallel
	// still uses the parallel uploader (with a single chunk when the value
	// is 1).
	ParallelChunks int
}

// DefaultConfig returns a Config with sane defaults for every field the
// caller doesn't care to set.
func DefaultConfig() Config {
	return Config{
		Algorithm:        DefaultAlgorithm,
		ChecksumScope:    ChecksumScopeChunk,
		ChunkSize:        8 * 1024 * 1024,
		MaxRetries:       3,
		RetryWaitMin:     1 * time.Second,
		RetryWaitMax:     30 * time.Second,
		RequestTimeout:   defaultConnectTimeout,
		Concurrency:      defaultConcurrency(),
		MaxRetryPerChunk: 3,
		HungThreshold:    30 * time.Second,
		ParallelChunks:   1,
	}
}

// validate checks the configuration before any network call is made.
func (c Config) validate() error {
	if c.BaseURL == "" {
		return &ConfigurationError{Reason: "BaseURL is required"}
	}
	if c.APIPath == "" {
		return &ConfigurationError{Reason: "APIPath is required"}
	}
	if c.Algorithm == "" {
		return &ConfigurationError{Reason: "Algorithm is required"}
	}
	if _, err := newHash(c.Algorithm); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return &ConfigurationError{Reason: "ChunkSize must be positive"}
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Algorithm == "" {
		c.Algorithm = d.Algorithm
	}
	if c.ChecksumScope == "" {
		c.ChecksumScope = d.ChecksumScope
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryWaitMin == 0 {
		c.RetryWaitMin = d.RetryWaitMin
	}
	if c.RetryWaitMax == 0 {
		c.RetryWaitMax = d.RetryWaitMax
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.MaxRetryPerChunk == 0 {
		c.MaxRetryPerChunk = d.MaxRetryPerChunk
	}
	if c.HungThreshold == 0 {
		c.HungThreshold = d.HungThreshold
	}
	if c.ParallelChunks == 0 {
		c.ParallelChunks = d.ParallelChunks
	}
	return c
}

// defaultConcurrency mirrors chunkuploader.DefaultConcurrency: bounded
// between 2 and 20, scaled off the host's CPU count.
func defaultConcurrency() int {
	c := runtime.NumCPU() * 3
	if c > 20 {
		c = 20
	}
	if c < 2 {
		c = 2
	}
	return c
}
