package rknn

import (
	"encoding/binary"
	"errors"
	"os"
)

// BuildContainer assembles a complete container image in memory: header,
// tabular payload, and length-prefixed trailer. It is the writing
// counterpart of ParseBytes, used by packing tools and round-trip tests.
func BuildContainer(formatVersion uint64, payload, trailer []byte) ([]byte, error) {
	if formatVersion > maxFormatVersion {
		return nil, ErrUnsupportedVersion
	}

	headerSize := headerSizeFor(formatVersion)
	total := headerSize + uint64(len(payload)) + 8 + uint64(len(trailer))
	if total > uint64(int(^uint(0)>>1)) {
		return nil, errors.New("rknn: container too large")
	}

	out := make([]byte, total)
	copy(out[0:4], Magic)
	// Bytes 4..8 stay zero (reserved).
	binary.LittleEndian.PutUint64(out[8:16], formatVersion)
	binary.LittleEndian.PutUint64(out[16:24], uint64(len(payload)))
	copy(out[headerSize:], payload)

	trailerOff := headerSize + uint64(len(payload))
	binary.LittleEndian.PutUint64(out[trailerOff:trailerOff+8], uint64(len(trailer)))
	copy(out[trailerOff+8:], trailer)
	return out, nil
}

// WriteFile writes a container to path with the given format version.
func WriteFile(path string, formatVersion uint64, payload, trailer []byte) error {
	data, err := BuildContainer(formatVersion, payload, trailer)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
