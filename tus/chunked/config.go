package chunked

import (
	"runtime"
	"time"
)

// Config holds configuration for the parallel chunk uploader.
type Config struct {
	// Concurrency is the maximum number of parallel chunk PATCHes.
	// Default: min(NumCPU * 3, 20), minimum 2.
	Concurrency int

	// MaxRetryPerChunk is the maximum number of attempts per chunk, the
	// first attempt included. Default: 3.
	MaxRetryPerChunk int

	// HungThreshold is the duration by which a chunk's elapsed time may
	// exceed the running average before it is cancelled and retried.
	// Default: 30 seconds.
	HungThreshold time.Duration

	// Algorithm is the checksum algorithm used for each chunk's
	// Upload-Checksum header.
	Algorithm string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:      DefaultConcurrency(),
		MaxRetryPerChunk: 3,
		HungThreshold:    30 * time.Second,
	}
}

// DefaultConcurrency calculates the default concurrency based on CPU count,
// the same bound the core Config's Concurrency default uses.
func DefaultConcurrency() int {
	c := runtime.NumCPU() * 3
	if c > 20 {
		c = 20
	}
	if c < 2 {
		c = 2
	}
	return c
}

// OptimalChunkSizeBytes picks a chunk size that keeps every worker in
// Concurrency busy without shrinking chunks below 8 MiB or growing them
// past 100 MiB.
func OptimalChunkSizeBytes(totalSize int64, concurrency int) int64 {
	return int64(optimalChunkSizeBytes(uint64(totalSize), 8*1024*1024, 100*1024*1024, uint64(concurrency)))
}

func optimalChunkSizeBytes(totalSize, min, max, concurrency uint64) uint64 {
	if concurrency == 0 {
		concurrency = 1
	}
	cs := totalSize / concurrency

	if cs >= 100*1024*1024 {
		cs = cs / 2
	}
	if cs < min {
		cs = min
	}
	if max > 0 && cs > max {
		cs = max
	}
	return cs
}
