package chunked

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestByteSliceChunkProvider(t *testing.T) {
	chunks := [][]byte{
		[]byte("first chunk"),
		[]byte("second chunk with more data"),
		[]byte("third"),
	}

	provider := NewByteSliceChunkProvider(chunks)

	if provider.NumChunks() != 3 {
		t.Errorf("expected 3 chunks, got %d", provider.NumChunks())
	}

	expectedSizes := []int64{11, 27, 5}
	for i, expected := range expectedSizes {
		if provider.ChunkSize(i) != expected {
			t.Errorf("chunk %d: expected size %d, got %d", i, expected, provider.ChunkSize(i))
		}
	}

	for i, expectedData := range chunks {
		reader, err := provider.GetChunk(i)
		if err != nil {
			t.Fatalf("GetChunk(%d) error: %v", i, err)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll error: %v", err)
		}
		if string(data) != string(expectedData) {
			t.Errorf("chunk %d: expected %q, got %q", i, expectedData, data)
		}
	}

	if _, err := provider.GetChunk(-1); err == nil {
		t.Error("expected error for negative index")
	}
	if _, err := provider.GetChunk(3); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestFileChunkProvider(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bin")

	testData := make([]byte, 100)
	for i := range testData {
		testData[i] = byte(i)
	}
	if err := os.WriteFile(testFile, testData, 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	// 30+30+30+10 = 100
	provider, err := NewFileChunkProvider(testFile, 30, 10, 4)
	if err != nil {
		t.Fatalf("NewFileChunkProvider error: %v", err)
	}
	defer provider.Close()

	if provider.NumChunks() != 4 {
		t.Errorf("expected 4 chunks, got %d", provider.NumChunks())
	}
	for i := 0; i < 3; i++ {
		if provider.ChunkSize(i) != 30 {
			t.Errorf("chunk %d: expected size 30, got %d", i, provider.ChunkSize(i))
		}
	}
	if provider.ChunkSize(3) != 10 {
		t.Errorf("last chunk: expected size 10, got %d", provider.ChunkSize(3))
	}

	var readData []byte
	for i := 0; i < 4; i++ {
		reader, err := provider.GetChunk(i)
		if err != nil {
			t.Fatalf("GetChunk(%d) error: %v", i, err)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll error: %v", err)
		}
		readData = append(readData, data...)
	}

	if string(readData) != string(testData) {
		t.Error("read data doesn't match original")
	}
}
