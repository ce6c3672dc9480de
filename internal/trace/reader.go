package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Reader iterates the lines of one trace file.
type Reader struct {
	f       *os.File
	dec     *zstd.Decoder
	scanner *bufio.Scanner
	line    int
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd %s: %w", path, err)
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{f: f, dec: dec, scanner: sc}, nil
}

// NextRaw returns the next line as raw JSON, or io.EOF.
func (r *Reader) NextRaw() (json.RawMessage, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line+1, err)
		}
		return nil, io.EOF
	}
	r.line++
	b := r.scanner.Bytes()
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out, nil
}

// Next decodes the next line into v, or returns io.EOF.
func (r *Reader) Next(v any) error {
	raw, err := r.NextRaw()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("line %d: %w", r.line, err)
	}
	return nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// Files lists the trace files for prefix under dir, oldest first.
func Files(dir, prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
