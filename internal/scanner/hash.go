package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const hashChunkSize = 64 * 1024

// Hasher computes content hashes with an in-process cache keyed by path,
// size, and modification time, so unchanged files are not re-read across
// repeated scans in the same run.
type Hasher struct {
	cache *gocache.Cache
}

// NewHasher builds a hasher with a bounded-lifetime cache.
func NewHasher() *Hasher {
	return &Hasher{cache: gocache.New(30*time.Minute, 10*time.Minute)}
}

func cacheKey(path string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())
}

// Hash returns the hex-encoded SHA-256 of the file contents.
func (h *Hasher) Hash(path string, size int64, modTime time.Time) (string, error) {
	key := cacheKey(path, size, modTime)
	if cached, ok := h.cache.Get(key); ok {
		return cached.(string), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer file.Close()

	digest := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(digest, file, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	sum := hex.EncodeToString(digest.Sum(nil))
	h.cache.Set(key, sum, gocache.DefaultExpiration)
	return sum, nil
}

// HashFile hashes a file without caching. Used where the caller already
// knows the content is fresh, such as post-copy verification.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer file.Close()

	digest := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(digest, file, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
