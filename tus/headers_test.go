package tus

import (
	"net/http"
	"testing"
)

func TestEncodeDecodeMetadata(t *testing.T) {
	header := encodeMetadata([2]string{"filename", "report.pdf"}, [2]string{"is_confidential", ""})

	decoded, err := decodeMetadata(header)
	if err != nil {
		t.Fatalf("decodeMetadata: %v", err)
	}
	if decoded["filename"] != "report.pdf" {
		t.Errorf("expected filename %q, got %q", "report.pdf", decoded["filename"])
	}
	if decoded["is_confidential"] != "" {
		t.Errorf("expected empty value, got %q", decoded["is_confidential"])
	}
}

func TestDecodeMetadata_Empty(t *testing.T) {
	decoded, err := decodeMetadata("")
	if err != nil {
		t.Fatalf("decodeMetadata: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty map, got %v", decoded)
	}
}

func TestEncodeParseChecksum(t *testing.T) {
	header := encodeChecksum("sha256", "abc123==")
	algo, digest, err := parseChecksum(header)
	if err != nil {
		t.Fatalf("parseChecksum: %v", err)
	}
	if algo != "sha256" || digest != "abc123==" {
		t.Errorf("unexpected round-trip: algo=%q digest=%q", algo, digest)
	}
}

func TestParseChecksum_Malformed(t *testing.T) {
	if _, _, err := parseChecksum("sha256"); err == nil {
		t.Error("expected error for missing digest field")
	}
	if _, _, err := parseChecksum(""); err == nil {
		t.Error("expected error for empty header")
	}
}

func TestParseLocation(t *testing.T) {
	cases := map[string]string{
		"https://example.com/files/abc123":  "abc123",
		"https://example.com/files/abc123/": "abc123",
		"abc123":                            "abc123",
	}
	for in, want := range cases {
		if got := parseLocation(in); got != want {
			t.Errorf("parseLocation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEncodeConcatFinal(t *testing.T) {
	got := encodeConcatFinal([]string{"a", "b", "c"})
	want := "final;a b c"
	if got != want {
		t.Errorf("encodeConcatFinal = %q, want %q", got, want)
	}
}

func TestIsProtocolHeader(t *testing.T) {
	if !isProtocolHeader("upload-offset") {
		t.Error("expected Upload-Offset to be recognized case-insensitively")
	}
	if isProtocolHeader("X-Custom-Header") {
		t.Error("did not expect a custom header to be recognized as protocol-owned")
	}
}

func TestMergeUserHeaders_SkipsProtocolHeaders(t *testing.T) {
	dst := http.Header{}
	dst.Set(HeaderOffset, "10")

	extra := http.Header{}
	extra.Set(HeaderOffset, "999")
	extra.Set("X-Custom", "keep-me")

	mergeUserHeaders(dst, extra)

	if dst.Get(HeaderOffset) != "10" {
		t.Errorf("expected protocol header to stay %q, got %q", "10", dst.Get(HeaderOffset))
	}
	if dst.Get("X-Custom") != "keep-me" {
		t.Error("expected custom header to be merged in")
	}
}

func TestRequireResumableHeader(t *testing.T) {
	h := http.Header{}
	if err := requireResumableHeader(h); err == nil {
		t.Error("expected error when Tus-Resumable is missing")
	}

	h.Set(HeaderResumable, ProtocolVersion)
	if err := requireResumableHeader(h); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseOffsetHeader(t *testing.T) {
	h := http.Header{}
	if _, ok := parseOffsetHeader(h); ok {
		t.Error("expected ok=false when header is absent")
	}

	h.Set(HeaderOffset, "123")
	offset, ok := parseOffsetHeader(h)
	if !ok || offset != 123 {
		t.Errorf("expected (123, true), got (%d, %v)", offset, ok)
	}

	h.Set(HeaderOffset, "not-a-number")
	if _, ok := parseOffsetHeader(h); ok {
		t.Error("expected ok=false for malformed offset")
	}
}

func TestNewProtocolHeader(t *testing.T) {
	h := NewProtocolHeader()
	if h.Get(HeaderResumable) != ProtocolVersion {
		t.Errorf("expected Tus-Resumable=%q, got %q", ProtocolVersion, h.Get(HeaderResumable))
	}
}
