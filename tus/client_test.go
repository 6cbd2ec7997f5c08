package tus

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestNewClient_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewClient(Config{}, nil, nil); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://x", APIPath: "/files"}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.logger == nil {
		t.Error("expected a default logger")
	}
	if client.cache == nil {
		t.Error("expected a default cache")
	}
}

func TestClient_NewUpload_RequiresKey(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://x", APIPath: "/files"}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.NewUpload("/tmp/whatever", "", ""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestClient_NewUpload_DefaultsNameToBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	client, err := NewClient(Config{BaseURL: "https://x", APIPath: "/files"}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	upload, err := client.NewUpload(path, "key-1", "")
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}
	if upload.filename != "report.pdf" {
		t.Errorf("expected filename %q, got %q", "report.pdf", upload.filename)
	}
	if upload.length != 4 {
		t.Errorf("expected length 4, got %d", upload.length)
	}
}

func TestMapCache(t *testing.T) {
	c := newMapCache()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put("key", Record{Offset: 10, ServerKey: "server"})
	rec, ok := c.Get("key")
	if !ok || rec.Offset != 10 || rec.ServerKey != "server" {
		t.Errorf("unexpected record: ok=%v rec=%+v", ok, rec)
	}

	c.Delete("key")
	if _, ok := c.Get("key"); ok {
		t.Error("expected miss after delete")
	}
}

func TestClient_HeaderSet_MergesExtraHeaders(t *testing.T) {
	extra := http.Header{}
	extra.Set("Authorization", "Bearer secret")
	extra.Set(HeaderResumable, "9.9.9") // must not override the protocol version

	client, err := NewClient(Config{BaseURL: "https://x", APIPath: "/files", ExtraHeaders: extra}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	header := client.headerSet()
	if got := header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("expected Authorization to be merged in, got %q", got)
	}
	if got := header.Get(HeaderResumable); got != ProtocolVersion {
		t.Errorf("expected Tus-Resumable to stay %q, got %q", ProtocolVersion, got)
	}
}

func TestNewPartialSuffix_Unique(t *testing.T) {
	a := newPartialSuffix()
	b := newPartialSuffix()
	if a == b {
		t.Error("expected distinct partial suffixes")
	}
}
