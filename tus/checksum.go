package tus

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"
	"hash/crc32"
	"io"

	"github.com/tusclient/go-tus/internal"
)

// DefaultAlgorithm is the checksum algorithm used when the caller does not
// select one explicitly.
const DefaultAlgorithm = "sha256"

var hashConstructors = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
	"md5":    md5.New,
	"crc32":  func() hash.Hash { return crc32.NewIEEE() },
}

// SupportedAlgorithms returns the checksum algorithm names the engine can
// compute, for use by callers building their own creation header sets.
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(hashConstructors))
	for name := range hashConstructors {
		names = append(names, name)
	}
	return names
}

func newHash(algorithm string) (hash.Hash, error) {
	constructor, ok := hashConstructors[algorithm]
	if !ok {
		return nil, &ConfigurationError{Reason: "unsupported checksum algorithm: " + algorithm}
	}
	return constructor(), nil
}

// checksumEngine computes whole-file and per-chunk digests under a
// selectable algorithm. The digest value is always base64-encoded; the
// algorithm name is sent literally.
type checksumEngine struct {
	os internal.OsProxy
}

func newChecksumEngine(os internal.OsProxy) *checksumEngine {
	return &checksumEngine{os: os}
}

// digestFile computes the digest of the entire file in a streaming
// fashion, without loading it into memory.
func (c *checksumEngine) digestFile(path, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}

	f, err := c.os.Open(path)
	if err != nil {
		return "", &IOFailure{Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(h, f); err != nil {
		return "", &IOFailure{Path: path, Err: err}
	}

	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// digestBytes computes the digest of an in-memory chunk, used for
// per-chunk checksum mode.
func digestBytes(algorithm string, data []byte) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
