package rknn

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is an opened RKNN container. Data is read-only and may be shared by
// all decoders without synchronization; nothing mutates it after Open.
type File struct {
	Data    []byte
	Header  ContainerHeader
	Layout  Layout
	mmapped bool

	record *ModelRecord
}

// Open maps an RKNN container read-only and validates its geometry.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < 0 {
		return nil, ErrTruncated
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, fmt.Errorf("%w: file too large to map", ErrTruncated)
	}
	size := int(size64)

	// Prefer mmap where available for zero-copy payload slices.
	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		rf, parseErr := ParseBytes(data)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		rf.mmapped = true
		return rf, nil
	}

	// Fallback path that does not require mmap support.
	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// OpenReaderAt loads and validates a container from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrTruncated
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes validates the header and computes the payload layout over an
// immutable byte buffer. It reads nothing beyond what the geometry requires
// and performs no decoding of either payload.
func ParseBytes(data []byte) (*File, error) {
	layout, hdr, err := computeLayout(data)
	if err != nil {
		return nil, err
	}
	return &File{
		Data:   data,
		Header: hdr,
		Layout: layout,
	}, nil
}

func computeLayout(data []byte) (Layout, ContainerHeader, error) {
	var hdr ContainerHeader

	if len(data) < 4 {
		return Layout{}, hdr, fmt.Errorf("%w: %d bytes is too short for a signature", ErrTruncated, len(data))
	}
	copy(hdr.Magic[:], data[:4])
	if string(hdr.Magic[:]) != Magic {
		return Layout{}, hdr, fmt.Errorf("%w: got %q at offset 0", ErrInvalidMagic, string(hdr.Magic[:]))
	}

	// Bytes 4..8 are reserved padding and ignored.
	if len(data) < headerSizeV1 {
		return Layout{}, hdr, fmt.Errorf("%w: %d bytes is too short for a header", ErrTruncated, len(data))
	}
	hdr.FormatVersion = binary.LittleEndian.Uint64(data[8:16])
	hdr.PayloadLength = binary.LittleEndian.Uint64(data[16:24])

	if hdr.FormatVersion > maxFormatVersion {
		return Layout{}, hdr, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.FormatVersion)
	}

	headerSize := headerSizeFor(hdr.FormatVersion)
	fileSize := uint64(len(data))
	if headerSize > fileSize {
		return Layout{}, hdr, fmt.Errorf("%w: header needs %d bytes, file has %d", ErrTruncated, headerSize, fileSize)
	}

	trailerOffset := headerSize + hdr.PayloadLength
	if trailerOffset < headerSize {
		return Layout{}, hdr, fmt.Errorf("%w: payload length overflows", ErrTruncated)
	}
	if trailerOffset+8 < trailerOffset || trailerOffset+8 > fileSize {
		return Layout{}, hdr, fmt.Errorf("%w: trailer length field at offset %d exceeds file size %d", ErrTruncated, trailerOffset, fileSize)
	}
	trailerLength := binary.LittleEndian.Uint64(data[trailerOffset : trailerOffset+8])

	// The four regions must tile the file exactly.
	if headerSize+hdr.PayloadLength+8+trailerLength != fileSize {
		return Layout{}, hdr, fmt.Errorf("%w: header %d + payload %d + 8 + trailer %d != file size %d",
			ErrTruncated, headerSize, hdr.PayloadLength, trailerLength, fileSize)
	}

	return Layout{
		FormatVersion: hdr.FormatVersion,
		HeaderSize:    headerSize,
		PayloadOffset: headerSize,
		PayloadLength: hdr.PayloadLength,
		TrailerOffset: trailerOffset,
		TrailerLength: trailerLength,
	}, hdr, nil
}

// Payload returns a zero-copy view of the tabular payload bytes.
// The caller must not retain the slice after File.Close().
func (f *File) Payload() []byte {
	if f == nil || f.Data == nil {
		return nil
	}
	start := f.Layout.PayloadOffset
	end := start + f.Layout.PayloadLength
	return f.Data[start:end]
}

// TrailerBytes returns a zero-copy view of the textual trailer bytes,
// excluding the length prefix.
func (f *File) TrailerBytes() []byte {
	if f == nil || f.Data == nil {
		return nil
	}
	start := f.Layout.TrailerOffset + 8
	end := start + f.Layout.TrailerLength
	return f.Data[start:end]
}

// Record decodes both payloads and merges them into the canonical
// ModelRecord. Decoder failures are contained: a source that cannot be
// decoded contributes an empty description, and the merge step decides
// whether the result is still usable. The record is built once and reused.
func (f *File) Record() (*ModelRecord, error) {
	if f.record != nil {
		return f.record, nil
	}

	tabular, tabErr := DecodeTabular(f.Payload())
	textual, txtErr := DecodeTrailer(f.TrailerBytes())

	rec, err := Merge(tabular, textual)
	if err != nil {
		// Promote contained decoder errors so the caller sees which
		// stage left the model empty.
		if txtErr != nil {
			return nil, fmt.Errorf("%w: %v", err, txtErr)
		}
		if tabErr != nil {
			return nil, fmt.Errorf("%w: %v", err, tabErr)
		}
		return nil, err
	}
	f.record = rec
	return rec, nil
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	if f.Data != nil && f.mmapped {
		err := unix.Munmap(f.Data)
		f.Data = nil
		f.mmapped = false
		return err
	}
	f.Data = nil
	return nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrTruncated
	}
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
