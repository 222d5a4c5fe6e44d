// Package zipindex parses the central directory of ZIP/JAR archives into an
// in-memory index of entries, covering the subset of the format found in
// Java archive distributions (stored and deflate compression, no encryption,
// no multi-volume archives).
package zipindex

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	asseterrors "github.com/holmhub/create-mcprofile/assets/errors"
	"github.com/holmhub/create-mcprofile/assets/logger"
)

// ZIP record signatures.
const (
	localHeaderSignature   = 0x04034b50
	centralHeaderSignature = 0x02014b50
	eocdSignature          = 0x06054b50
)

const (
	eocdFixedSize          = 22
	maxCommentLength       = 0xffff
	centralHeaderFixedSize = 46
	localHeaderFixedSize   = 30
)

// Index maps entry names to their records. It is built once per archive
// buffer and never mutated afterwards; entries hold views into that buffer,
// so the index must not outlive it.
type Index struct {
	entries map[string]*Entry

	// Missing is the number of entries the archive declared but that could
	// not be recovered from the central directory. A non-zero value is a
	// recoverable condition: lookups of the surviving entries still work.
	Missing int
}

// Len returns the number of recovered entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Names returns all entry names in the index, sorted.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.entries))
	for name := range idx.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry looks up one entry by its archive name.
func (idx *Index) Entry(name string) (*Entry, error) {
	entry, ok := idx.entries[name]
	if !ok {
		return nil, asseterrors.ErrEntryNotFound.WithDetail("entry", name)
	}
	return entry, nil
}

// ParseFile reads an archive from disk and parses its index.
func ParseFile(path string) (*Index, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return ParseIndex(buf)
}

// ParseIndex builds an index from an archive byte buffer. It scans backward
// for the end-of-central-directory record, then walks the central directory
// file headers sequentially. A malformed entry is logged and skipped rather
// than failing the whole parse; parsing stops once records run past the
// declared end of the central directory. Parsing is read-only and produces
// an identical index for an identical buffer.
func ParseIndex(buf []byte) (*Index, error) {
	eocd, err := findEOCD(buf)
	if err != nil {
		return nil, err
	}

	declared := int(binary.LittleEndian.Uint16(buf[eocd+10:]))
	cdSize := int(binary.LittleEndian.Uint32(buf[eocd+12:]))
	cdOffset := int(binary.LittleEndian.Uint32(buf[eocd+16:]))
	cdEnd := cdOffset + cdSize

	if cdOffset > len(buf) || cdEnd > len(buf) {
		return nil, asseterrors.ErrFormat.
			WithMessage("central directory is truncated").
			WithDetail("offset", cdOffset).
			WithDetail("size", cdSize)
	}

	idx := &Index{entries: make(map[string]*Entry, declared)}
	recovered := 0

	off := cdOffset
	for i := 0; i < declared; i++ {
		if off+centralHeaderFixedSize > cdEnd {
			logger.Warn("central directory ends after %d of %d records", i, declared)
			break
		}
		if binary.LittleEndian.Uint32(buf[off:]) != centralHeaderSignature {
			// Without a signature there is no reliable way to resync.
			logger.Warn("central directory record %d has an invalid signature", i)
			break
		}

		method := binary.LittleEndian.Uint16(buf[off+10:])
		compressedSize := int(binary.LittleEndian.Uint32(buf[off+20:]))
		nameLen := int(binary.LittleEndian.Uint16(buf[off+28:]))
		extraLen := int(binary.LittleEndian.Uint16(buf[off+30:]))
		commentLen := int(binary.LittleEndian.Uint16(buf[off+32:]))
		localOffset := int(binary.LittleEndian.Uint32(buf[off+42:]))

		recordEnd := off + centralHeaderFixedSize + nameLen + extraLen + commentLen
		if recordEnd > cdEnd {
			logger.Warn("central directory record %d overruns the directory end", i)
			break
		}

		name := string(buf[off+centralHeaderFixedSize : off+centralHeaderFixedSize+nameLen])
		off = recordEnd

		raw, err := payloadFor(buf, localOffset, compressedSize)
		if err != nil {
			logger.Warn("skipping archive entry %q: %v", name, err)
			continue
		}

		idx.entries[name] = &Entry{Name: name, Method: method, raw: raw}
		recovered++
	}

	if recovered < declared {
		idx.Missing = declared - recovered
		logger.Warn("recovered %d of %d declared archive entries", recovered, declared)
	}

	return idx, nil
}

// payloadFor locates an entry's compressed payload through its local file
// header. The local header carries its own name/extra lengths, which may
// differ from the central directory record for the same entry.
func payloadFor(buf []byte, localOffset, compressedSize int) ([]byte, error) {
	if localOffset < 0 || localOffset+localHeaderFixedSize > len(buf) {
		return nil, fmt.Errorf("local header offset %d out of range", localOffset)
	}
	if binary.LittleEndian.Uint32(buf[localOffset:]) != localHeaderSignature {
		return nil, fmt.Errorf("invalid local header signature at offset %d", localOffset)
	}

	nameLen := int(binary.LittleEndian.Uint16(buf[localOffset+26:]))
	extraLen := int(binary.LittleEndian.Uint16(buf[localOffset+28:]))

	dataStart := localOffset + localHeaderFixedSize + nameLen + extraLen
	dataEnd := dataStart + compressedSize
	if dataEnd > len(buf) {
		return nil, fmt.Errorf("compressed payload of %d bytes at offset %d out of range", compressedSize, dataStart)
	}

	return buf[dataStart:dataEnd], nil
}

// findEOCD scans backward for the end-of-central-directory signature. The
// record may be followed by a comment of up to 64KB, so the scan covers the
// last 64KB+22 bytes of the buffer.
func findEOCD(buf []byte) (int, error) {
	if len(buf) < eocdFixedSize {
		return 0, asseterrors.ErrFormat.WithMessage("buffer smaller than the end of central directory record")
	}

	lowest := len(buf) - eocdFixedSize - maxCommentLength
	if lowest < 0 {
		lowest = 0
	}

	for off := len(buf) - eocdFixedSize; off >= lowest; off-- {
		if binary.LittleEndian.Uint32(buf[off:]) == eocdSignature {
			return off, nil
		}
	}

	return 0, asseterrors.ErrFormat.WithMessage("end of central directory signature not found")
}
