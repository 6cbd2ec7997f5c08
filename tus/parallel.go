package tus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tusclient/go-tus/tus/chunked"
)

// creationAdvertisement is the optional JSON body a creation response may
// carry alongside its 201 Created + Location, telling the client it may
// address the upload as several independently-PATCHable chunks instead of
// one offset-serial stream. A server that doesn't support the multi-chunk
// uploader simply omits the body, and create() leaves every field at zero.
type creationAdvertisement struct {
	ChunkCount         int   `json:"chunk_count"`
	ChunkSizeBytes     int64 `json:"chunk_size_bytes"`
	LastChunkSizeBytes int64 `json:"last_chunk_size_bytes"`
}

// useParallel reports whether this upload is eligible for the multi-chunk
// parallel uploader: the caller opted in via Config.ParallelChunks > 1, and
// the server advertised more than one chunk on creation. Without an
// advertisement it reports false; only UploadParallel picks its own chunk
// count.
func (u *Upload) useParallel() bool {
	return u.client.config.ParallelChunks > 1 && u.serverChunkCount > 1
}

// UploadParallel is the explicit C7b entry point: it drives the upload to
// completion through the multi-chunk parallel uploader (tus/chunked)
// regardless of whether the server advertised a chunk count, picking its
// own chunk boundaries from Config.ParallelChunks when it didn't. It
// requires a fresh upload (local offset 0) and returns a
// *ConfigurationError otherwise, since the single-stream offset doesn't map
// onto independent chunk boundaries. If its HEAD finds the upload already
// advanced on the server, the remainder is sent through the single-stream
// loop instead.
func (u *Upload) UploadParallel(ctx context.Context) (int64, error) {
	if u.state == stateFailed {
		return u.offset, fmt.Errorf("tus: upload %q is in a failed state: %w", u.clientKey, u.lastErr)
	}
	if u.offset != 0 {
		return u.offset, &ConfigurationError{Reason: "UploadParallel requires a fresh upload (offset 0)"}
	}

	if u.serverKey == "" {
		if err := u.discoverOrCreate(ctx); err != nil {
			u.fail(err)
			return u.offset, err
		}
	}
	if u.offset != 0 {
		// discoverOrCreate found an existing, already-advanced upload via
		// HEAD: parallel mode no longer applies, fall back to the
		// single-stream loop for the remainder.
		if err := u.stream(ctx, u.length-u.offset); err != nil {
			u.fail(err)
			return u.offset, err
		}
		return u.offset, nil
	}
	if u.offset >= u.length {
		u.state = stateDone
		return u.offset, nil
	}

	if err := u.streamParallel(ctx); err != nil {
		u.fail(err)
		return u.offset, err
	}
	return u.offset, nil
}

// streamParallel drives the multi-chunk parallel uploader (C7b) to
// completion against the server key create() already assigned. Chunk
// boundaries come from the server's creation advertisement when present,
// or are computed locally from Config.ParallelChunks otherwise.
func (u *Upload) streamParallel(ctx context.Context) error {
	u.state = stateStreaming

	numChunks := u.serverChunkCount
	chunkSize := u.serverChunkSize
	lastChunkSize := u.serverLastChunkSize

	if numChunks < 1 {
		numChunks = u.client.config.ParallelChunks
		if numChunks < 1 {
			numChunks = 2
		}
		chunkSize = chunked.OptimalChunkSizeBytes(u.length, numChunks)
		numChunks = int((u.length + chunkSize - 1) / chunkSize)
		if numChunks < 1 {
			numChunks = 1
		}
		lastChunkSize = u.length - chunkSize*int64(numChunks-1)
	}

	provider, err := chunked.NewFileChunkProvider(u.path, chunkSize, lastChunkSize, numChunks)
	if err != nil {
		return &IOFailure{Path: u.path, Err: err}
	}
	defer provider.Close() //nolint:errcheck

	targets := make([]chunked.ChunkTarget, numChunks)
	offset := int64(0)
	for i := 0; i < numChunks; i++ {
		targets[i] = chunked.ChunkTarget{URLSuffix: u.serverKey, StartOffset: offset, Length: provider.ChunkSize(i)}
		offset += provider.ChunkSize(i)
	}

	cfg := chunked.DefaultConfig()
	cfg.Algorithm = u.algorithm
	if u.client.config.Concurrency > 0 {
		cfg.Concurrency = u.client.config.Concurrency
	}
	if u.client.config.MaxRetryPerChunk > 0 {
		cfg.MaxRetryPerChunk = u.client.config.MaxRetryPerChunk
	}
	if u.client.config.HungThreshold > 0 {
		cfg.HungThreshold = u.client.config.HungThreshold
	}

	uploader := chunked.New(cfg, &chunkTransportAdapter{client: u.client}, u.client.config.APIPath)

	result, err := uploader.Upload(ctx, provider, targets, u.partial)
	if err != nil {
		return convertChunkedErr(err)
	}

	u.offset = result.FinalOffset
	u.client.cache.Put(u.clientKey, Record{Offset: u.offset, ServerKey: u.serverKey})
	if u.offset >= u.length {
		u.state = stateDone
	}
	return nil
}

// chunkTransportAdapter satisfies chunked.Transport on top of the core
// package's Transport, so the parallel uploader reuses the same
// retryablehttp-backed client (and its Config.ExtraHeaders) instead of
// needing a transport of its own.
type chunkTransportAdapter struct {
	client *Client
}

func (a *chunkTransportAdapter) Do(ctx context.Context, method, urlSuffix string, header http.Header, body io.Reader, contentLength int64) (*chunked.Response, error) {
	merged := a.client.headerSet()
	for k, vs := range header {
		for _, v := range vs {
			merged.Set(k, v)
		}
	}

	resp, err := a.client.transport.Do(ctx, method, urlSuffix, merged, body, contentLength)
	if err != nil {
		return nil, err
	}

	bodyStr := resp.BodyStr
	if bodyStr == "" && resp.Body != nil {
		b, _ := io.ReadAll(resp.Body)
		bodyStr = string(b)
	}
	return &chunked.Response{Status: resp.Status, Header: resp.Header, BodyStr: bodyStr}, nil
}

// convertChunkedErr maps an error returned by the chunked uploader back
// onto the core package's own error taxonomy (§7), so callers never need
// to know the parallel path exists to handle its errors.
func convertChunkedErr(err error) error {
	var corrupt *chunked.CorruptUploadError
	if errors.As(err, &corrupt) {
		return &CorruptUploadError{Key: corrupt.URLSuffix}
	}
	var proto *chunked.ProtocolError
	if errors.As(err, &proto) {
		return &ProtocolError{Status: proto.Status, Body: proto.Body, Reason: proto.Reason}
	}
	return &ConnectionError{Err: err}
}

// parseCreationAdvertisement tolerates an empty or non-JSON body: the
// absence of an advertisement just means the server doesn't support the
// multi-chunk uploader, not a protocol error.
func parseCreationAdvertisement(body string) creationAdvertisement {
	var adv creationAdvertisement
	if body == "" {
		return adv
	}
	_ = json.Unmarshal([]byte(body), &adv)
	return adv
}
