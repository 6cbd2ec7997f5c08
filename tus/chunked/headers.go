package chunked

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"
	"hash/crc32"
	"net/http"
	"strconv"
)

// These mirror the corresponding names in the core tus package's header
// codec (C3): this package only ever needs the handful of headers a PATCH
// carries, so it keeps its own copy rather than importing the core
// package, which would create an import cycle since the core package
// dispatches into this one for the C7b entry point.
const (
	headerResumable   = "Tus-Resumable"
	headerOffset      = "Upload-Offset"
	headerContentType = "Content-Type"
	headerChecksum    = "Upload-Checksum"
	headerConcat      = "Upload-Concat"

	protocolVersion  = "1.0.0"
	patchContentType = "application/offset+octet-stream"
	concatPartial    = "partial"
)

var hashConstructors = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
	"md5":    md5.New,
	"crc32":  func() hash.Hash { return crc32.NewIEEE() },
}

func newProtocolHeader() http.Header {
	h := http.Header{}
	h.Set(headerResumable, protocolVersion)
	return h
}

func encodeChecksum(algorithm, digest string) string {
	return algorithm + " " + digest
}

func requireResumableHeader(h http.Header) error {
	if h.Get(headerResumable) == "" {
		return &ProtocolError{Reason: "missing Tus-Resumable header"}
	}
	return nil
}

func parseOffsetHeader(h http.Header) (int64, bool) {
	raw := h.Get(headerOffset)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// digestBytes computes the base64-encoded digest of an in-memory chunk,
// the same encoding the core checksum engine (C2) uses.
func digestBytes(algorithm string, data []byte) (string, error) {
	constructor, ok := hashConstructors[algorithm]
	if !ok {
		return "", &ProtocolError{Reason: "unsupported checksum algorithm: " + algorithm}
	}
	h := constructor()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
