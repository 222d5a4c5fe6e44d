package zipindex

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"

	asseterrors "github.com/holmhub/create-mcprofile/assets/errors"
)

// Compression methods supported in Java archive distributions.
const (
	MethodStored  uint16 = 0
	MethodDeflate uint16 = 8
)

// Entry is one file record inside an archive. The raw payload is a view
// into the buffer given to ParseIndex and must not outlive it.
type Entry struct {
	Name   string
	Method uint16

	raw []byte

	once sync.Once
	data []byte
	err  error
}

// IsDir reports whether the entry is a directory marker.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// CompressedSize returns the size of the entry's payload as stored in the
// archive.
func (e *Entry) CompressedSize() int64 {
	return int64(len(e.raw))
}

// Bytes returns the entry's decompressed contents. Decompression runs at
// most once; the result is cached for the lifetime of the entry.
func (e *Entry) Bytes() ([]byte, error) {
	e.once.Do(func() {
		e.data, e.err = e.decompress()
	})
	return e.data, e.err
}

// Text returns the entry's decompressed contents as a string, for peeking
// at JSON descriptors inside installer jars.
func (e *Entry) Text() (string, error) {
	data, err := e.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Entry) decompress() ([]byte, error) {
	// Empty files decompress to nothing without touching the decompressor.
	if len(e.raw) == 0 {
		return []byte{}, nil
	}

	switch e.Method {
	case MethodStored:
		data := make([]byte, len(e.raw))
		copy(data, e.raw)
		return data, nil

	case MethodDeflate:
		fr := flate.NewReader(bytes.NewReader(e.raw))
		defer fr.Close()

		data, err := io.ReadAll(fr)
		if err != nil {
			return nil, asseterrors.ErrDecompression.
				WithDetail("entry", e.Name).
				WithCause(err)
		}
		return data, nil

	default:
		return nil, asseterrors.ErrUnsupportedCompression.
			WithDetail("entry", e.Name).
			WithDetail("method", e.Method)
	}
}
