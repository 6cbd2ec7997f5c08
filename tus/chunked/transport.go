package chunked

import (
	"context"
	"io"
	"net/http"
)

// Response is the terminal outcome of a Transport call. It mirrors the
// core tus package's Response so a single underlying HTTP client can back
// both the single-stream STREAMING loop and this package, via a thin
// adapter at the call site.
type Response struct {
	Status  int
	Header  http.Header
	BodyStr string
}

// Transport issues a single chunk PATCH. Implementations are expected to
// be safe for concurrent use, since this package drives many of them at
// once.
type Transport interface {
	Do(ctx context.Context, method, urlSuffix string, header http.Header, body io.Reader, contentLength int64) (*Response, error)
}
