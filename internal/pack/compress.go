package pack

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// CompressResult describes a finished compression.
type CompressResult struct {
	Path         string
	OriginalSize int64
	Size         int64
	Ratio        float64
}

// Compress gzips src to src+".gz" and verifies the output decompresses
// back to the original byte length before declaring success. A pack
// that silently lost bytes must never reach the registry.
func Compress(src string) (*CompressResult, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}

	dst := src + ".gz"
	if err := gzipFile(src, dst); err != nil {
		return nil, err
	}

	decompressed, err := decompressedLength(dst)
	if err != nil {
		return nil, err
	}
	if decompressed != info.Size() {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("compression round-trip mismatch: original %d bytes, decompressed %d", info.Size(), decompressed)
	}

	compressedInfo, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("stat compressed file: %w", err)
	}

	return &CompressResult{
		Path:         dst,
		OriginalSize: info.Size(),
		Size:         compressedInfo.Size(),
		Ratio:        float64(compressedInfo.Size()) / float64(info.Size()),
	}, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create compressed file: %w", err)
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("flush compressed file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close compressed file: %w", err)
	}
	return nil
}

func decompressedLength(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open compressed file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("read gzip header: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	n, err := io.Copy(io.Discard, zr)
	if err != nil {
		return 0, fmt.Errorf("decompress: %w", err)
	}
	return n, nil
}

// Decompress gunzips src into dst.
func Decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open compressed file: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read gzip header: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := io.Copy(out, zr); err != nil {
		_ = out.Close()
		return fmt.Errorf("decompress: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// Digest computes the SHA-256 content digest of a file as lowercase
// hex. SHA-256 is the registry's interoperability contract.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for digest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
