// Package rknn implements the RKNN model container format.
//
// A container is a single file holding two independent descriptions of the
// same model: a binary tabular payload directly after a fixed, versioned
// header, and a length-prefixed textual trailer at the end of the file.
// The package parses both, reconciles them into one canonical ModelRecord,
// and never implies runtime behaviour.
package rknn

// Container constants. These must never change.
const (
	// Magic is the file signature of every RKNN container.
	Magic = "RKNN"

	// headerSizeV1 is the header size for formatVersion <= 1.
	headerSizeV1 = 24

	// headerSizeV2 is the header size for formatVersion > 1; the extra
	// 40 bytes are reserved padding.
	headerSizeV2 = 64

	// maxFormatVersion is the highest header revision this package knows
	// how to lay out. Larger values are treated as unsupported rather
	// than guessed at.
	maxFormatVersion = 64
)

// ContainerHeader is the decoded fixed-format file prefix.
type ContainerHeader struct {
	Magic         [4]byte
	FormatVersion uint64
	PayloadLength uint64
}

// Layout records where the two payloads live inside the file. All offsets
// are absolute. It is computed once per file and immutable afterwards.
type Layout struct {
	FormatVersion uint64
	HeaderSize    uint64
	PayloadOffset uint64
	PayloadLength uint64
	TrailerOffset uint64
	TrailerLength uint64
}

// headerSizeFor selects the header layout variant for a format version.
// The variants form a closed set so downstream code never branches on the
// version again.
func headerSizeFor(version uint64) uint64 {
	if version <= 1 {
		return headerSizeV1
	}
	return headerSizeV2
}
