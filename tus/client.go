package tus

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/google/uuid"
	"github.com/tusclient/go-tus/internal"
)

// partialKeySeparator is the fixed ASCII separator reserved by the
// protocol to distinguish a partial upload's client key from its parent's.
const partialKeySeparator = "+"

// Client is the entry point: it holds the shared collaborators (transport,
// cache, logger, config) that individual Uploads are created from. One
// Client may drive many Uploads; Uploads it creates do not share mutable
// state with each other beyond the Client's own collaborators.
type Client struct {
	config    Config
	logger    log.Logger
	cache     Cache
	transport Transport
	reader    *fileWindowReader
	checksum  *checksumEngine
}

// NewClient validates config and assembles a Client. If logger is nil, a
// default log.Logger is used. If cache is nil, an in-process map-backed
// cache is used (see also the memorystore package for a standalone,
// independently testable version of the same default).
func NewClient(config Config, logger log.Logger, cache Cache) (*Client, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.NewLogger()
	}
	if cache == nil {
		cache = newMapCache()
	}

	osProxy := internal.RealOS{}

	return &Client{
		config:    config,
		logger:    logger,
		cache:     cache,
		transport: newRetryableTransport(config.BaseURL, config, logger),
		reader:    newFileWindowReader(osProxy),
		checksum:  newChecksumEngine(osProxy),
	}, nil
}

// NewUpload creates an Upload for the local file at path, under the given
// client key. name defaults to filepath.Base(path) when empty. The file
// must exist and be readable; its size is read once and is thereafter
// immutable for the Upload's lifetime.
func (c *Client) NewUpload(path, key, name string) (*Upload, error) {
	if key == "" {
		return nil, &ConfigurationError{Reason: "key is required"}
	}

	size, err := c.reader.size(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Reason: "file not found: " + path}
		}
		return nil, err
	}

	if name == "" {
		name = filepath.Base(path)
	}

	return &Upload{
		client:    c,
		path:      path,
		clientKey: key,
		filename:  name,
		length:    size,
		algorithm: c.config.Algorithm,
		offset:    0,
	}, nil
}

// headerSet starts every request with Tus-Resumable set and the caller's
// Config.ExtraHeaders merged in, so HEAD/POST/PATCH/DELETE all carry the
// same user-supplied headers without ever letting one override a
// protocol-owned header (§4.3).
func (c *Client) headerSet() http.Header {
	h := http.Header{}
	h.Set(headerResumable, protocolVersion)
	mergeUserHeaders(h, c.config.ExtraHeaders)
	return h
}

// mapCache is the zero-configuration default Cache: a mutex-guarded map,
// equivalent in behavior to memorystore.Store but kept private here to
// avoid an import cycle between this package and memorystore.
type mapCache struct {
	mu      sync.Mutex
	records map[string]Record
}

func newMapCache() *mapCache {
	return &mapCache{records: make(map[string]Record)}
}

func (m *mapCache) Get(key string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	return rec, ok
}

func (m *mapCache) Put(key string, record Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = record
}

func (m *mapCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
}

// newPartialSuffix generates a unique-within-process suffix for a partial
// upload's client key. A version-4 UUID is used (see SPEC_FULL.md §11,
// decision 1) in
// place of a hand-rolled counter+timestamp scheme.
func newPartialSuffix() string {
	return uuid.NewString()
}
