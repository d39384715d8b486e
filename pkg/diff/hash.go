package diff

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/evan70/fscommander/pkg/fsys"
)

// Algorithm selects the content hash used for verification
type Algorithm string

const (
	// XXHash is a fast non-cryptographic hash, the default for content
	// comparison
	XXHash Algorithm = "xxhash"
	// SHA256 is the cryptographic option
	SHA256 Algorithm = "sha256"
)

const hashBufferSize = 64 * 1024

// Hasher computes streaming content hashes. File handles are held only
// for the duration of a single Sum call.
type Hasher struct {
	algo Algorithm
	pool *sync.Pool
}

// NewHasher creates a hasher for the given algorithm
func NewHasher(algo Algorithm) *Hasher {
	if algo == "" {
		algo = XXHash
	}
	return &Hasher{
		algo: algo,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, hashBufferSize)
				return &buf
			},
		},
	}
}

// Sum computes the content hash of a file, checking for cancellation
// between reads.
func (h *Hasher) Sum(ctx context.Context, fsx fsys.FS, path string) (string, error) {
	reader, err := fsx.Open(path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var digest hash.Hash
	if h.algo == SHA256 {
		digest = sha256.New()
	} else {
		digest = xxhash.New()
	}

	bufPtr := h.pool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.pool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			digest.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}
