package tus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-retryablehttp"
)

// retryableTransport is the default Transport (C5), built on
// hashicorp/go-retryablehttp: bounded retries with exponential backoff,
// and request/response header dumping (bodies omitted) at debug level.
type retryableTransport struct {
	client  *retryablehttp.Client
	baseURL string
	logger  log.Logger
}

func newRetryableTransport(baseURL string, cfg Config, logger log.Logger) *retryableTransport {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.RequestTimeout
	client.Logger = nil // our own logger is used for dumps instead of retryablehttp's built-in one
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, checkErr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		logger.Debugf("tus: CheckRetry: retry=%v err=%+v", retry, checkErr)
		return retry, checkErr
	}

	return &retryableTransport{client: client, baseURL: baseURL, logger: logger}
}

func (t *retryableTransport) Do(ctx context.Context, method, urlSuffix string, header http.Header, body io.Reader, contentLength int64) (*Response, error) {
	url := t.baseURL + urlSuffix

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentLength >= 0 {
		req.ContentLength = contentLength
	}

	dumpReq := req.Request.Clone(ctx)
	if dumpReq.Header.Get("Authorization") != "" {
		dumpReq.Header.Set("Authorization", "[REDACTED]")
	}
	if dump, err := httputil.DumpRequest(dumpReq, false); err == nil {
		t.logger.Debugf("tus: request dump: %s", string(dump))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ConnectionError{Err: ctx.Err()}
		}
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if dump, err := httputil.DumpResponse(resp, false); err == nil {
		t.logger.Debugf("tus: response dump: %s", string(dump))
	}

	return &Response{
		Status:  resp.StatusCode,
		Header:  resp.Header,
		BodyStr: string(bodyBytes),
	}, nil
}

// defaultConnectTimeout is DefaultConfig's RequestTimeout: it bounds a whole
// HTTP round trip (set as the HTTP client's Timeout), not the connect phase
// alone.
const defaultConnectTimeout = 30 * time.Second
