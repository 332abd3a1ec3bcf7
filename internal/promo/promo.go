// Package promo gives a fast local verdict on promo codes before checkout
// ever reaches the backend. The campaign tooling publishes huge code drops
// (Black Friday, Black Hour); a bloom filter built by cmd/promo-ingest makes
// a definitely-unknown code a zero-round-trip rejection.
package promo

import (
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// Filter answers membership queries against the ingested code set. A false
// Check is definitive; a true Check can still be rejected by the backend
// (bloom false positives, expired codes).
type Filter struct {
	bf *bloom.BloomFilter
}

// NewFilter wraps an in-memory bloom filter, mainly for tests and tooling.
func NewFilter(bf *bloom.BloomFilter) *Filter {
	return &Filter{bf: bf}
}

// LoadFile reads a serialized bloom filter produced by promo-ingest.
func LoadFile(path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	bf := &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(f); err != nil {
		return nil, errors.Wrapf(err, "read filter %s", path)
	}
	return &Filter{bf: bf}, nil
}

// Check reports whether the code may be a valid promo code. Codes are
// compared case-insensitively; campaign drops are upper-case.
func (f *Filter) Check(code string) bool {
	return f.bf.TestString(strings.ToUpper(strings.TrimSpace(code)))
}
