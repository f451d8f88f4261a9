// Package archive writes generated payloads to disk as JSON, optionally
// zstd-compressed, and reads them back.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

const compressedExt = ".zst"

// Writer encodes payloads according to the output configuration.
type Writer struct {
	cfg config.OutputConfig
}

// NewWriter creates a Writer. A zero CompressionLevel uses the zstd default.
func NewWriter(cfg config.OutputConfig) *Writer {
	return &Writer{cfg: cfg}
}

// FileName returns the name a payload is archived under.
func (w *Writer) FileName(p *location.Payload) string {
	name := fmt.Sprintf("%s-%d.json", p.Location, p.Seed)
	if w.cfg.Compress {
		name += compressedExt
	}
	return name
}

// Encode writes p to dst, compressed when the configuration asks for it.
func (w *Writer) Encode(dst io.Writer, p *location.Payload) error {
	if !w.cfg.Compress {
		return encodeJSON(dst, p)
	}
	level := zstd.SpeedDefault
	if w.cfg.CompressionLevel > 0 {
		level = zstd.EncoderLevel(w.cfg.CompressionLevel)
	}
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(level))
	if err != nil {
		return fmt.Errorf("archive: creating zstd writer: %w", err)
	}
	if err := encodeJSON(enc, p); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("archive: flushing zstd stream: %w", err)
	}
	return nil
}

// WriteFile writes p into the configured output directory.
//
// Postcondition: returns the written path or a non-nil error; no partial
// file is left behind on error.
func (w *Writer) WriteFile(p *location.Payload) (string, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: creating output directory: %w", err)
	}
	path := filepath.Join(w.cfg.Dir, w.FileName(p))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}
	if err := w.Encode(f, p); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("archive: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("archive: %w", err)
	}
	return path, nil
}

func encodeJSON(dst io.Writer, p *location.Payload) error {
	bw := bufio.NewWriterSize(dst, 64*1024)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("archive: encoding payload: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// Decode reads a payload from src.
func Decode(src io.Reader, compressed bool) (*location.Payload, error) {
	if compressed {
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("archive: creating zstd reader: %w", err)
		}
		defer dec.Close()
		src = dec
	}
	var p location.Payload
	if err := json.NewDecoder(bufio.NewReader(src)).Decode(&p); err != nil {
		return nil, fmt.Errorf("archive: decoding payload: %w", err)
	}
	return &p, nil
}

// ReadFile reads an archived payload. Files ending in .zst are decompressed.
func ReadFile(path string) (*location.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	defer f.Close()
	return Decode(f, strings.HasSuffix(path, compressedExt))
}
