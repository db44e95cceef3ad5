// Package ticklog writes a compact per-tick digest stream as
// zstd-compressed JSONL, rotated hourly. Post-hoc tooling reads these files
// to rebuild pressure curves without replaying the whole session.
package ticklog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pinegrove/cloudcore/internal/snapshot"
)

// #region digest

// Digest is the one-line-per-tick record.
type Digest struct {
	SimTime   float64 `json:"sim_time"`
	Level     float64 `json:"level"`
	Mood      string  `json:"mood"`
	Trend     string  `json:"trend"`
	BleedTier int     `json:"bleed_tier"`
	Events    int     `json:"events"`
}

// DigestFrom reduces a frame to its digest.
func DigestFrom(fr snapshot.Frame) Digest {
	return Digest{
		SimTime:   fr.SimTime,
		Level:     fr.Cloud.Level,
		Mood:      fr.Cloud.Mood,
		Trend:     fr.Cloud.Trend,
		BleedTier: fr.Cloud.BleedTier,
		Events:    len(fr.Events),
	}
}

// #endregion digest

// #region writer

// Writer appends zstd-compressed JSONL entries, rotating by hour.
type Writer struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewWriter creates a tick log writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, prefix: "ticks"}
}

// WriteFrame appends the frame's digest.
func (w *Writer) WriteFrame(fr snapshot.Frame) error {
	return w.write(DigestFrom(fr))
}

// Close flushes and closes the current segment.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// #endregion writer
