package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// #region archive

// WriteArchive stores a frame sequence as zstd-compressed JSONL, one frame
// per line. Used for replay fixtures and session captures.
func WriteArchive(path string, frames []Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 128*1024)
	defer bw.Flush()

	for i := range frames {
		b, err := json.Marshal(&frames[i])
		if err != nil {
			return fmt.Errorf("marshal frame %d: %w", i, err)
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// ReadArchive loads a frame sequence written by WriteArchive.
func ReadArchive(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var frames []Frame
	br := bufio.NewReaderSize(dec, 128*1024)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 1 {
			var fr Frame
			if uerr := json.Unmarshal(line, &fr); uerr != nil {
				return nil, fmt.Errorf("parse frame %d: %w", len(frames), uerr)
			}
			frames = append(frames, fr)
		}
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// #endregion archive
