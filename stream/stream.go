// Package stream implements the pluggable stream interface and
// persisted record format: arch tag, diagnostics flag, arena memory
// counters, the event array, and the property-record array, encoded
// with github.com/ugorji/go/codec.
package stream

import (
	"io"
	"os"
	"path/filepath"
)

// Stream is the host-supplied transport: opening a stream, reading or
// writing bytes (folded into the returned io.Reader/Writer), and
// flush-and-close (folded into Close).
type Stream interface {
	OpenWrite(dir string) (io.WriteCloser, error)
	OpenRead(dir string) (io.ReadCloser, error)
}

// FileStream is the default Stream: one file, "events.bin", per log
// directory.
type FileStream struct{}

const eventFileName = "events.bin"

func (FileStream) OpenWrite(dir string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, eventFileName), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (FileStream) OpenRead(dir string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(dir, eventFileName))
}
