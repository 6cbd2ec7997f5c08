package tus

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ProtocolVersion is the Tus-Resumable value sent on every request and
// required on every HEAD/PATCH response.
const ProtocolVersion = "1.0.0"

// Protocol header names, exported so collaborators implementing their own
// Transport (or inspecting requests in tests) don't have to hardcode them.
const (
	HeaderResumable    = "Tus-Resumable"
	HeaderLength       = "Upload-Length"
	HeaderKey          = "Upload-Key"
	HeaderOffset       = "Upload-Offset"
	HeaderMetadata     = "Upload-Metadata"
	HeaderChecksum     = "Upload-Checksum"
	HeaderConcat       = "Upload-Concat"
	HeaderContentType  = "Content-Type"
	HeaderContentLen   = "Content-Length"
	HeaderLocation     = "Location"

	// PatchContentType is the fixed Content-Type value required on PATCH.
	PatchContentType = "application/offset+octet-stream"
)

// kept as unexported aliases so the rest of this package's call sites read
// the same as before the constants were exported.
const (
	protocolVersion  = ProtocolVersion
	headerResumable  = HeaderResumable
	headerLength     = HeaderLength
	headerKey        = HeaderKey
	headerOffset     = HeaderOffset
	headerMetadata   = HeaderMetadata
	headerChecksum   = HeaderChecksum
	headerConcat     = HeaderConcat
	headerContentTy  = HeaderContentType
	headerContentLn  = HeaderContentLen
	headerLocation   = HeaderLocation
	patchContentType = PatchContentType
)

// protocolHeaderNames lists every header the codec owns. User-supplied
// headers are merged in but MUST NOT override any of these.
var protocolHeaderNames = []string{
	headerResumable, headerLength, headerKey, headerOffset,
	headerMetadata, headerChecksum, headerConcat, headerContentTy, headerContentLn,
}

func isProtocolHeader(name string) bool {
	canon := http.CanonicalHeaderKey(name)
	for _, h := range protocolHeaderNames {
		if http.CanonicalHeaderKey(h) == canon {
			return true
		}
	}
	return false
}

// mergeUserHeaders copies extra into dst, skipping any key that collides
// with a protocol-owned header. Merging is idempotent: repeated merges of
// the same extra never change a protocol header's value.
func mergeUserHeaders(dst http.Header, extra http.Header) {
	for k, vs := range extra {
		if isProtocolHeader(k) {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// encodeMetadata renders Upload-Metadata: a comma-separated list of
// "<key> <base64(value)>" pairs. Key order follows the order keys is given
// in, so callers can put filename first for readability.
func encodeMetadata(pairs ...[2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv[0]+" "+base64.StdEncoding.EncodeToString([]byte(kv[1])))
	}
	return strings.Join(parts, ",")
}

// decodeMetadata parses an Upload-Metadata header value into a key→value
// map, base64-decoding each value.
func decodeMetadata(header string) (map[string]string, error) {
	result := map[string]string{}
	if strings.TrimSpace(header) == "" {
		return result, nil
	}
	for _, pair := range strings.Split(header, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		fields := strings.SplitN(pair, " ", 2)
		key := fields[0]
		var value string
		if len(fields) == 2 {
			decoded, err := base64.StdEncoding.DecodeString(fields[1])
			if err != nil {
				return nil, fmt.Errorf("tus: decode metadata key %q: %w", key, err)
			}
			value = string(decoded)
		}
		result[key] = value
	}
	return result, nil
}

// encodeChecksum renders Upload-Checksum: "<algorithm> <base64(digest)>".
// digest must already be base64-encoded.
func encodeChecksum(algorithm, digest string) string {
	return algorithm + " " + digest
}

// parseChecksum parses an Upload-Checksum header value.
func parseChecksum(header string) (algorithm, digest string, err error) {
	fields := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return "", "", fmt.Errorf("tus: malformed Upload-Checksum header: %q", header)
	}
	return fields[0], fields[1], nil
}

// encodeConcatFinal renders Upload-Concat for a final upload: ordering of
// partial keys/URLs is significant and is preserved exactly as given.
func encodeConcatFinal(partialURLs []string) string {
	return "final;" + strings.Join(partialURLs, " ")
}

// ConcatPartial is the Upload-Concat value sent on partial creations/PATCHes.
const ConcatPartial = "partial"

const concatPartial = ConcatPartial

// parseLocation extracts the server key from a POST response's Location
// header: the final path segment after stripping "<base><apiPath>/".
func parseLocation(location string) string {
	location = strings.TrimRight(location, "/")
	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return location
	}
	return location[idx+1:]
}

// requireResumableHeader rejects any HEAD/PATCH response lacking
// Tus-Resumable, per the protocol contract in §6.
func requireResumableHeader(h http.Header) error {
	if h.Get(headerResumable) == "" {
		return &ProtocolError{Reason: "missing Tus-Resumable header"}
	}
	return nil
}

// NewProtocolHeader returns an http.Header with Tus-Resumable already set,
// a starting point for callers implementing their own Transport.
func NewProtocolHeader() http.Header {
	h := http.Header{}
	h.Set(HeaderResumable, ProtocolVersion)
	return h
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
