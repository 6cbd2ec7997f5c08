package tus

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
)

type uploadState int

const (
	stateInit uploadState = iota
	stateDiscovering
	stateCreating
	stateStreaming
	stateDone
	stateFailed
)

// Upload is the central entity: a client key, an optional server key, the
// local file it streams from, and the offset the server has durably
// accepted so far. The state machine exclusively owns it; callers drive it
// only through Upload, UploadParallel, Seek, and the Client-level
// Concat/Delete operations.
type Upload struct {
	client *Client

	path      string
	clientKey string
	serverKey string
	filename  string
	length    int64
	algorithm string
	partial   bool
	offset    int64

	cachedChecksum string // whole-file digest, memoized once computed
	state          uploadState
	lastErr        error

	// serverChunkCount, serverChunkSize, and serverLastChunkSize come from
	// an optional JSON advertisement in the creation response, telling the
	// client it may PATCH this upload as several independently-addressed
	// chunks (C7b) instead of one offset-serial stream. serverChunkCount
	// stays 0 when the server doesn't advertise one.
	serverChunkCount    int
	serverChunkSize     int64
	serverLastChunkSize int64
}

// ClientKey returns the upload's client-chosen identifier (which, for a
// partial upload, includes the parent+separator+suffix).
func (u *Upload) ClientKey() string { return u.clientKey }

// ServerKey returns the identifier the server assigned on creation, or
// empty if the upload has not been created or discovered yet.
func (u *Upload) ServerKey() string { return u.serverKey }

// Offset returns the number of bytes the server has durably accepted.
func (u *Upload) Offset() int64 { return u.offset }

// GetOffset mirrors the core's getOffset() operation: it returns the last
// known offset and whether the upload has been discovered/created at all.
func (u *Upload) GetOffset() (int64, bool) {
	return u.offset, u.serverKey != ""
}

// Seek validates offset, stores it as the upload's offset, and marks the
// upload as a Partial Upload: its client key becomes
// "<parent><SEP><unique-suffix>" and every subsequent create/PATCH carries
// Upload-Concat: partial. Seek must be called before the first Upload call;
// calling it again is a no-op beyond updating the offset, since the key is
// only rewritten once. The stored offset does not decide where streaming
// starts: the first Upload call replaces it with the offset a HEAD reports,
// or with 0 when the upload is created.
func (u *Upload) Seek(offset int64) error {
	if offset < 0 || offset > u.length {
		return &ConfigurationError{Reason: fmt.Sprintf("seek offset %d out of range [0,%d]", offset, u.length)}
	}
	if !u.partial {
		u.partial = true
		u.clientKey = u.clientKey + partialKeySeparator + newPartialSuffix()
	}
	u.offset = offset
	return nil
}

// Upload drives the protocol: discover → create-or-resume → stream.
// bytes == -1 means "to completion". It returns the offset reached, which
// equals length when bytes == -1 and the call succeeds.
func (u *Upload) Upload(ctx context.Context, bytes int64) (int64, error) {
	if u.state == stateFailed {
		return u.offset, fmt.Errorf("tus: upload %q is in a failed state: %w", u.clientKey, u.lastErr)
	}
	if u.state == stateDone {
		return u.offset, nil
	}

	if u.serverKey == "" {
		if err := u.discoverOrCreate(ctx); err != nil {
			u.fail(err)
			return u.offset, err
		}
	}

	if u.offset >= u.length {
		u.state = stateDone
		return u.offset, nil
	}

	if bytes < 0 && u.offset == 0 && u.useParallel() {
		if err := u.streamParallel(ctx); err != nil {
			u.fail(err)
			return u.offset, err
		}
		return u.offset, nil
	}

	budget := bytes
	if budget < 0 {
		budget = u.length - u.offset
	}

	if err := u.stream(ctx, budget); err != nil {
		u.fail(err)
		return u.offset, err
	}

	return u.offset, nil
}

func (u *Upload) fail(err error) {
	u.state = stateFailed
	u.lastErr = err
}

// discoverOrCreate implements transitions 1 and 2 of §4.6: HEAD first, and
// only fall through to POST when the resource isn't found (or the HEAD
// itself errored in a way that doesn't prove the resource exists).
func (u *Upload) discoverOrCreate(ctx context.Context) error {
	u.state = stateDiscovering

	headKey := u.clientKey
	if rec, ok := u.client.cache.Get(u.clientKey); ok && rec.ServerKey != "" {
		headKey = rec.ServerKey
	}

	resp, err := u.client.transport.Do(ctx, http.MethodHead, u.client.config.APIPath+"/"+headKey, u.client.headerSet(), nil, 0)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	switch {
	case resp.Status == http.StatusOK:
		if err := requireResumableHeader(resp.Header); err != nil {
			return err
		}
		offset, ok := parseOffsetHeader(resp.Header)
		if !ok {
			return &ProtocolError{Status: resp.Status, Reason: "HEAD response missing Upload-Offset"}
		}
		u.serverKey = headKey
		u.offset = offset
		u.client.cache.Put(u.clientKey, Record{Offset: offset, ServerKey: headKey})
		u.state = stateStreaming
		u.client.logger.Debugf("tus: discovered existing upload %s at offset %d", headKey, offset)
		return nil
	default:
		u.client.logger.Debugf("tus: HEAD %s returned %d, creating new upload", headKey, resp.Status)
		return u.create(ctx)
	}
}

// create implements transition 2: POST to apiPath with the full creation
// header set.
func (u *Upload) create(ctx context.Context) error {
	u.state = stateCreating

	header := u.client.headerSet()
	header.Set(headerLength, strconv.FormatInt(u.length, 10))
	header.Set(headerKey, u.clientKey)
	header.Set(headerMetadata, encodeMetadata([2]string{"filename", u.filename}))
	if u.partial {
		header.Set(headerConcat, concatPartial)
	}

	resp, err := u.client.transport.Do(ctx, http.MethodPost, u.client.config.APIPath, header, nil, 0)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	if resp.Status != http.StatusCreated || resp.Header.Get(headerLocation) == "" {
		return &ResourceCreateError{Status: resp.Status, Body: resp.BodyStr}
	}

	u.serverKey = parseLocation(resp.Header.Get(headerLocation))
	u.offset = 0
	u.client.cache.Put(u.clientKey, Record{Offset: 0, ServerKey: u.serverKey})
	u.client.logger.Debugf("tus: created upload %s -> server key %s", u.clientKey, u.serverKey)

	adv := parseCreationAdvertisement(resp.BodyStr)
	if adv.ChunkCount > 1 {
		u.serverChunkCount = adv.ChunkCount
		u.serverChunkSize = adv.ChunkSizeBytes
		u.serverLastChunkSize = adv.LastChunkSizeBytes
		u.client.logger.Debugf("tus: server advertised %d chunks for upload %s", adv.ChunkCount, u.serverKey)
	}

	u.state = stateStreaming
	return nil
}

// stream implements transition 3: the offset-serial PATCH loop, stopping
// once budget bytes have been sent or the upload reaches length, whichever
// comes first.
func (u *Upload) stream(ctx context.Context, budget int64) error {
	u.state = stateStreaming
	sent := int64(0)

	if budget == 0 {
		// A zero budget still sends one PATCH, with an empty body, and
		// expects the server's offset back unchanged.
		if _, err := u.patchOnce(ctx, 0); err != nil {
			return err
		}
	}

	for sent < budget && u.offset < u.length {
		remaining := budget - sent
		chunkLen := remaining
		if remainingInFile := u.length - u.offset; chunkLen > remainingInFile {
			chunkLen = remainingInFile
		}
		if chunkLen > u.client.config.ChunkSize {
			chunkLen = u.client.config.ChunkSize
		}

		n, err := u.patchOnce(ctx, chunkLen)
		if err != nil {
			return err
		}
		sent += n
	}

	if u.offset >= u.length {
		u.state = stateDone
	}
	return nil
}

// patchOnce sends a single PATCH carrying a window of up to chunkLen bytes
// starting at the current offset, and returns the number of bytes the
// server acknowledged as newly accepted.
func (u *Upload) patchOnce(ctx context.Context, chunkLen int64) (int64, error) {
	body, err := u.client.reader.read(u.path, u.offset, chunkLen)
	if err != nil {
		return 0, err
	}

	checksum, err := u.checksumForChunk(body)
	if err != nil {
		return 0, err
	}

	header := u.client.headerSet()
	header.Set(headerOffset, strconv.FormatInt(u.offset, 10))
	header.Set(headerContentTy, patchContentType)
	header.Set(headerChecksum, checksum)
	if u.partial {
		header.Set(headerConcat, concatPartial)
	}

	offsetBefore := u.offset

	resp, err := u.client.transport.Do(ctx, http.MethodPatch, u.client.config.APIPath+"/"+u.serverKey, header, bytesReader(body), int64(len(body)))
	if err != nil {
		return 0, &ConnectionError{Err: err}
	}

	switch {
	case resp.Status == http.StatusRequestedRangeNotSatisfiable:
		return 0, &CorruptUploadError{Key: u.serverKey}
	case resp.Status == 100:
		// Non-standard: some transports surface a stalled "100 Continue" as
		// a client error. Treated as an aborted connection (see design notes).
		return 0, &ConnectionError{Err: fmt.Errorf("aborted: got 100 Continue")}
	case resp.Status < 200 || resp.Status >= 300:
		return 0, &ProtocolError{Status: resp.Status, Body: resp.BodyStr}
	}

	if err := requireResumableHeader(resp.Header); err != nil {
		return 0, err
	}

	newOffset, ok := parseOffsetHeader(resp.Header)
	if !ok {
		return 0, &ProtocolError{Status: resp.Status, Reason: "PATCH response missing Upload-Offset"}
	}
	if newOffset <= offsetBefore && !(chunkLen == 0 && newOffset == offsetBefore) {
		return 0, &ProtocolError{Status: resp.Status, Reason: "server returned a non-advancing offset"}
	}

	u.offset = newOffset
	u.client.cache.Put(u.clientKey, Record{Offset: newOffset, ServerKey: u.serverKey})

	return newOffset - offsetBefore, nil
}

// checksumForChunk computes Upload-Checksum according to the configured
// scope: per-chunk (default) over the bytes actually being sent, or
// whole-file (legacy) by memoizing the digest on first use.
func (u *Upload) checksumForChunk(body []byte) (string, error) {
	if u.client.config.ChecksumScope == ChecksumScopeFile {
		if u.cachedChecksum == "" {
			digest, err := u.client.checksum.digestFile(u.path, u.algorithm)
			if err != nil {
				return "", err
			}
			u.cachedChecksum = digest
		}
		return encodeChecksum(u.algorithm, u.cachedChecksum), nil
	}

	digest, err := digestBytes(u.algorithm, body)
	if err != nil {
		return "", err
	}
	return encodeChecksum(u.algorithm, digest), nil
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
