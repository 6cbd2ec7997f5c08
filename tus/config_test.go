package tus

import "testing"

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing base url", Config{APIPath: "/files", Algorithm: "sha256", ChunkSize: 1}, true},
		{"missing api path", Config{BaseURL: "https://x", Algorithm: "sha256", ChunkSize: 1}, true},
		{"missing algorithm", Config{BaseURL: "https://x", APIPath: "/files", ChunkSize: 1}, true},
		{"unsupported algorithm", Config{BaseURL: "https://x", APIPath: "/files", Algorithm: "whirlpool", ChunkSize: 1}, true},
		{"non-positive chunk size", Config{BaseURL: "https://x", APIPath: "/files", Algorithm: "sha256", ChunkSize: 0}, true},
		{"valid", Config{BaseURL: "https://x", APIPath: "/files", Algorithm: "sha256", ChunkSize: 1024}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{BaseURL: "https://x", APIPath: "/files"}.withDefaults()

	if cfg.Algorithm != DefaultAlgorithm {
		t.Errorf("expected default algorithm %q, got %q", DefaultAlgorithm, cfg.Algorithm)
	}
	if cfg.ChecksumScope != ChecksumScopeChunk {
		t.Errorf("expected default checksum scope %q, got %q", ChecksumScopeChunk, cfg.ChecksumScope)
	}
	if cfg.ChunkSize <= 0 {
		t.Error("expected a positive default chunk size")
	}
	if cfg.Concurrency < 2 || cfg.Concurrency > 20 {
		t.Errorf("expected default concurrency within [2,20], got %d", cfg.Concurrency)
	}
}

func TestConfig_WithDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		BaseURL:   "https://x",
		APIPath:   "/files",
		Algorithm: "md5",
		ChunkSize: 99,
	}.withDefaults()

	if cfg.Algorithm != "md5" {
		t.Errorf("expected explicit algorithm to survive withDefaults, got %q", cfg.Algorithm)
	}
	if cfg.ChunkSize != 99 {
		t.Errorf("expected explicit chunk size to survive withDefaults, got %d", cfg.ChunkSize)
	}
}
