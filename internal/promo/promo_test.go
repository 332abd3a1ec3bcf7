package promo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter(codes ...string) *Filter {
	bf := bloom.NewWithEstimates(1000, 0.0001)
	for _, code := range codes {
		bf.AddString(code)
	}
	return NewFilter(bf)
}

func TestCheck(t *testing.T) {
	f := newTestFilter("HAPPYHRS", "FIFTYOFF")

	assert.True(t, f.Check("HAPPYHRS"))
	assert.True(t, f.Check("FIFTYOFF"))
	assert.False(t, f.Check("DEFINITELYNOT"))
}

func TestCheck_NormalizesInput(t *testing.T) {
	f := newTestFilter("HAPPYHRS")

	assert.True(t, f.Check("happyhrs"))
	assert.True(t, f.Check("  HappyHrs  "))
}

func TestLoadFile_RoundTrip(t *testing.T) {
	bf := bloom.NewWithEstimates(1000, 0.0001)
	bf.AddString("HAPPYHRS")

	path := filepath.Join(t.TempDir(), "promo.bloom")
	out, err := os.Create(path)
	require.NoError(t, err)
	_, err = bf.WriteTo(out)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	f, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, f.Check("HAPPYHRS"))
	assert.False(t, f.Check("NOPE1234"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.bloom"))
	require.Error(t, err)
}
