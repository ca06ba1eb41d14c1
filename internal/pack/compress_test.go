package pack

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pack.sqlite")
	contents := bytes.Repeat([]byte("dictionary data "), 1024)
	require.NoError(t, os.WriteFile(src, contents, 0644))

	result, err := Compress(src)
	require.NoError(t, err)
	assert.Equal(t, src+".gz", result.Path)
	assert.Equal(t, int64(len(contents)), result.OriginalSize)
	assert.Less(t, result.Size, result.OriginalSize, "repetitive data must shrink")
	assert.InDelta(t, float64(result.Size)/float64(result.OriginalSize), result.Ratio, 1e-9)

	// Round trip gives back identical bytes.
	restored := filepath.Join(dir, "restored.sqlite")
	require.NoError(t, Decompress(result.Path, restored))
	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, contents, got)
}

func TestCompress_MissingSource(t *testing.T) {
	_, err := Compress(filepath.Join(t.TempDir(), "nope.sqlite"))
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact")
	contents := []byte("pack bytes")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	digest, err := Digest(path)
	require.NoError(t, err)

	want := sha256.Sum256(contents)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)

	// Deterministic.
	again, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}

func TestDigest_ChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	require.NoError(t, os.WriteFile(path, []byte("aaaa"), 0644))
	first, err := Digest(path)
	require.NoError(t, err)

	// Flip a single byte.
	require.NoError(t, os.WriteFile(path, []byte("aaab"), 0644))
	second, err := Digest(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
