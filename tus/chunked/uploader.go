package chunked

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Uploader drives the Multi-Chunk Parallel Uploader (C7b): it PATCHes
// disjoint byte ranges of the same tus resource concurrently, bounded by
// Config.Concurrency, retries each range independently, and cancels and
// retries a chunk whose elapsed time has drifted too far past the running
// average (Config.HungThreshold). Every chunk PATCHes the same
// <apiPath>/<serverKey> resource, carrying its own Upload-Offset and
// Upload-Checksum, instead of a distinct signed URL per chunk.
type Uploader struct {
	config    Config
	transport Transport
	apiPath   string
	logger    log.Logger
	stats     *Stats
}

// New creates an Uploader that issues requests through transport against
// apiPath (the same base the core Client PATCHes against).
func New(config Config, transport Transport, apiPath string) *Uploader {
	if config.Algorithm == "" {
		config.Algorithm = "sha256"
	}
	return &Uploader{
		config:    config,
		transport: transport,
		apiPath:   apiPath,
		logger:    log.NewLogger(),
		stats:     NewStats(),
	}
}

// Upload PATCHes every chunk the provider exposes against its matching
// target concurrently, and returns once every chunk has either succeeded
// or the whole call is abandoned after exhausting retries on one chunk.
// partial marks every PATCH as belonging to a Partial Upload (Upload-Concat:
// partial), the same way the single-stream STREAMING transition does.
func (u *Uploader) Upload(ctx context.Context, provider ChunkProvider, targets []ChunkTarget, partial bool) (*Result, error) {
	numChunks := provider.NumChunks()
	if numChunks != len(targets) {
		return nil, fmt.Errorf("chunk count mismatch: provider has %d chunks, but %d targets given", numChunks, len(targets))
	}
	if numChunks == 0 {
		return &Result{}, nil
	}

	resultChan := make(chan ChunkResult, numChunks)
	semaphore := make(chan struct{}, u.config.Concurrency)

	for i := 0; i < numChunks; i++ {
		go func(index int, target ChunkTarget) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			newOffset, err := u.uploadChunkWithRetry(ctx, provider, target, index, numChunks, partial)
			resultChan <- ChunkResult{Index: index, NewOffset: newOffset, Err: err}
		}(i, targets[i])
	}

	var finalOffset int64
	completed := 0
	for completed < numChunks {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("upload cancelled while waiting for chunks: %w", ctx.Err())
		case result := <-resultChan:
			completed++
			if result.Err != nil {
				return nil, fmt.Errorf("chunk %d failed after %d attempts: %w",
					result.Index+1, u.config.MaxRetryPerChunk, result.Err)
			}
			finalOffset += result.NewOffset - targets[result.Index].StartOffset
		}
	}

	return &Result{FinalOffset: finalOffset}, nil
}

// Stats returns the upload statistics used for hung detection.
func (u *Uploader) Stats() *Stats { return u.stats }

func (u *Uploader) uploadChunkWithRetry(ctx context.Context, provider ChunkProvider, target ChunkTarget, index, totalChunks int, partial bool) (int64, error) {
	var newOffset int64
	var uploadErr error

	for attempt := 0; attempt < u.config.MaxRetryPerChunk; attempt++ {
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("chunk %d upload cancelled: %w", index+1, ctx.Err())
		default:
		}

		u.logger.Debugf("tus/chunked: uploading chunk %d/%d (attempt %d/%d) [finished=%d] [avg=%v]",
			index+1, totalChunks, attempt+1, u.config.MaxRetryPerChunk,
			u.stats.FinishedCount(), u.stats.Average().Round(time.Second))

		start := time.Now()
		chunkCtx, cancelChunk := context.WithCancel(ctx)

		if attempt < u.config.MaxRetryPerChunk-1 && u.config.HungThreshold > 0 {
			go u.detectHungUpload(chunkCtx, cancelChunk, start, index)
		}

		newOffset, uploadErr = u.uploadChunk(chunkCtx, provider, target, index, partial)
		cancelChunk()

		if uploadErr == nil {
			took := time.Since(start)
			u.stats.Update(took)
			u.logger.Infof("tus/chunked: chunk %d uploaded successfully in %v, new offset %d",
				index+1, took.Round(time.Second), newOffset)
			return newOffset, nil
		}

		u.logger.Warnf("tus/chunked: chunk %d attempt %d failed: %v", index+1, attempt+1, uploadErr)

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("chunk %d upload cancelled: %w", index+1, ctx.Err())
		default:
			if chunkCtx.Err() == context.Canceled {
				backoff := time.Duration(attempt+1) * 2 * time.Second
				u.logger.Warnf("tus/chunked: chunk %d attempt %d cancelled (hung), retrying after %v", index+1, attempt+1, backoff)
				time.Sleep(backoff)
				continue
			}
		}
	}

	return 0, fmt.Errorf("upload chunk %d: %w", index+1, uploadErr)
}

func (u *Uploader) detectHungUpload(ctx context.Context, cancel context.CancelFunc, start time.Time, index int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if u.stats.FinishedCount() > 0 {
				elapsed := time.Since(start)
				avg := u.stats.Average()
				if elapsed-avg > u.config.HungThreshold {
					u.logger.Warnf("tus/chunked: found hung chunk upload (chunk %d); cancelling after %s (avg %s)",
						index+1, elapsed.Round(time.Second), avg.Round(time.Second))
					cancel()
					return
				}
			}
		}
	}
}

// uploadChunk PATCHes a single chunk and returns the offset the server
// acknowledges, mirroring the single-stream patchOnce transition but
// addressed at target.StartOffset instead of the upload's running offset.
func (u *Uploader) uploadChunk(ctx context.Context, provider ChunkProvider, target ChunkTarget, index int, partial bool) (int64, error) {
	reader, err := provider.GetChunk(index)
	if err != nil {
		return 0, fmt.Errorf("get chunk %d: %w", index+1, err)
	}

	var data []byte
	if br, ok := reader.(*bytes.Reader); ok {
		data = make([]byte, br.Len())
		if _, err := io.ReadFull(br, data); err != nil {
			return 0, fmt.Errorf("read chunk %d: %w", index+1, err)
		}
	} else {
		data, err = io.ReadAll(reader)
		if err != nil {
			return 0, fmt.Errorf("read chunk %d: %w", index+1, err)
		}
	}

	checksum, err := digestBytes(u.config.Algorithm, data)
	if err != nil {
		return 0, err
	}

	header := newProtocolHeader()
	header.Set(headerOffset, strconv.FormatInt(target.StartOffset, 10))
	header.Set(headerContentType, patchContentType)
	header.Set(headerChecksum, encodeChecksum(u.config.Algorithm, checksum))
	if partial {
		header.Set(headerConcat, concatPartial)
	}

	resp, err := u.transport.Do(ctx, http.MethodPatch, u.apiPath+"/"+target.URLSuffix, header, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if ctx.Err() == context.Canceled {
			return 0, fmt.Errorf("chunk upload cancelled: %w", ctx.Err())
		}
		return 0, err
	}

	switch {
	case resp.Status == http.StatusRequestedRangeNotSatisfiable:
		return 0, &CorruptUploadError{URLSuffix: target.URLSuffix}
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
	if newOffset <= target.StartOffset {
		return 0, &ProtocolError{Status: resp.Status, Reason: "server returned a non-advancing offset"}
	}

	return newOffset, nil
}
