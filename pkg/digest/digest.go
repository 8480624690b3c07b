package digest

import (
	"fmt"
	"strings"
)

// Algorithm names a content hash.
type Algorithm string

const (
	AlgorithmSHA256  Algorithm = "sha256"
	AlgorithmBlake2b Algorithm = "blake2b"
)

// Digest is a typed content digest, written as "<algorithm>:<hex>".
type Digest struct {
	Algorithm Algorithm
	Sum       string
}

func New(algorithm Algorithm, sum string) (Digest, error) {
	if err := ValidateAlgorithm(algorithm); err != nil {
		return Digest{}, err
	}
	if strings.TrimSpace(sum) == "" {
		return Digest{}, fmt.Errorf("digest sum is required")
	}

	return Digest{
		Algorithm: algorithm,
		Sum:       strings.ToLower(strings.TrimSpace(sum)),
	}, nil
}

func (d Digest) IsZero() bool {
	return d.Algorithm == "" && d.Sum == ""
}

// Equal reports whether both digests use the same algorithm and sum. Zero
// digests never match.
func (d Digest) Equal(other Digest) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	return d.Algorithm == other.Algorithm && d.Sum == other.Sum
}

func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%s", d.Algorithm, d.Sum)
}

// Short is the algorithm and the first 12 hex characters, for log lines.
func (d Digest) Short() string {
	if d.IsZero() {
		return ""
	}
	sum := d.Sum
	if len(sum) > 12 {
		sum = sum[:12]
	}
	return fmt.Sprintf("%s:%s", d.Algorithm, sum)
}

func Parse(raw string) (Digest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Digest{}, nil
	}

	algorithm, sum, ok := strings.Cut(raw, ":")
	if !ok {
		return Digest{}, fmt.Errorf("invalid digest %q (expected algorithm:sum)", raw)
	}

	return New(Algorithm(algorithm), sum)
}

func ValidateAlgorithm(algorithm Algorithm) error {
	switch algorithm {
	case AlgorithmSHA256, AlgorithmBlake2b:
		return nil
	default:
		return fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}
