package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	blake2b "github.com/minio/blake2b-simd"
)

// ForFile hashes the content of the regular file at path, following
// symlinks.
func ForFile(path string, algorithm Algorithm) (Digest, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return Digest{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Digest{}, err
	}
	if !info.Mode().IsRegular() {
		return Digest{}, fmt.Errorf("unsupported file type at %s (%s)", path, info.Mode().String())
	}

	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("open file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, fmt.Errorf("hash file %s: %w", path, err)
	}

	return New(algorithm, hex.EncodeToString(h.Sum(nil)))
}

func newHash(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBlake2b:
		return blake2b.New512(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}
