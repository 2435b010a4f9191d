package rknn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Tabular payload format (v1), little-endian. All refs are absolute offsets
// into the payload; ref 0 means absent (the header occupies offset 0).
//
// Layout:
//   [0]   table header (16 bytes): magic "RKTB", version u32, flags u32, reserved u32
//   [16]  model record (56 bytes): string/list refs, graph count, graph table offset
//   [...] string and list blobs (length-prefixed, 8-byte aligned)
//   [...] dims / id arrays
//   [...] tensor, node and quant tables per graph
//   [...] graph table ([]graphEntry)
//
// String blob encoding:
//   u32 byte_len
//   []byte (byte_len bytes, no NUL terminator)
//   (then 8-byte alignment as needed)
//
// String list encoding:
//   u32 count, u32 reserved, then count u64 string refs.

const (
	tabularMagic   = "RKTB"
	tabularVersion = 1

	tabHeaderSize  = 16
	modelFixedSize = 56
	tabularMinSize = tabHeaderSize + modelFixedSize

	graphEntrySize  = 64
	tensorEntrySize = 32
	nodeEntrySize   = 48
	quantEntrySize  = 24
)

// Tensor dtype codes used by the quant table. Keep these stable forever;
// add new values only.
const (
	tabDTypeUnknown uint32 = iota
	tabDTypeFloat32
	tabDTypeFloat16
	tabDTypeBFloat16
	tabDTypeInt8
	tabDTypeUInt8
	tabDTypeInt16
	tabDTypeInt32
	tabDTypeInt64
	tabDTypeBool
)

// Quantization kinds.
const (
	tabQuantNone uint32 = iota
	tabQuantAffine
	tabQuantDFP
)

var errBadTabular = errors.New("rknn: corrupt tabular payload")

type modelFixed struct {
	NameRef       uint64
	TargetListRef uint64
	FrameworkRef  uint64
	CompilerRef   uint64
	RuntimeRef    uint64
	GraphCount    uint32
	GraphsOff     uint64
}

type graphEntry struct {
	TensorCount uint32
	NodeCount   uint32
	TensorsOff  uint64
	NodesOff    uint64
	InputCount  uint32
	OutputCount uint32
	InputsOff   uint64
	OutputsOff  uint64
	QuantCount  uint32
	QuantOff    uint64
}

type tensorEntry struct {
	ID      uint32
	Rank    uint32
	NameRef uint64
	DimsOff uint64
	FmtRef  uint64
}

type nodeEntry struct {
	ID         uint32
	InputCount uint32
	TypeRef    uint64
	NameRef    uint64
	InputsOff  uint64
	OutCount   uint32
	OutputsOff uint64
}

type quantEntry struct {
	TensorID  uint32
	DType     uint32
	Kind      uint32
	ZeroPoint int32
	Scale     float32
}

// DecodeTabular decodes the binary tabular payload into a Document.
// A payload without a valid table root is an error; callers treat that as
// an empty source rather than a fatal condition, since legacy files carry
// their metadata only in the trailer.
func DecodeTabular(payload []byte) (*Document, error) {
	if len(payload) < tabularMinSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a table root", errBadTabular, len(payload))
	}
	if string(payload[0:4]) != tabularMagic {
		return nil, fmt.Errorf("%w: bad table root signature %q", errBadTabular, string(payload[0:4]))
	}
	version := binary.LittleEndian.Uint32(payload[4:8])
	if version != tabularVersion {
		return nil, fmt.Errorf("%w: unknown table schema version %d", errBadTabular, version)
	}

	fixed := modelFixed{
		NameRef:       binary.LittleEndian.Uint64(payload[16:24]),
		TargetListRef: binary.LittleEndian.Uint64(payload[24:32]),
		FrameworkRef:  binary.LittleEndian.Uint64(payload[32:40]),
		CompilerRef:   binary.LittleEndian.Uint64(payload[40:48]),
		RuntimeRef:    binary.LittleEndian.Uint64(payload[48:56]),
		GraphCount:    binary.LittleEndian.Uint32(payload[56:60]),
		GraphsOff:     binary.LittleEndian.Uint64(payload[64:72]),
	}

	doc := &Document{}
	var err error
	if doc.Name, err = readTabString(payload, fixed.NameRef); err != nil {
		return nil, fmt.Errorf("model name: %w", err)
	}
	if doc.TargetPlatform, err = readTabStringList(payload, fixed.TargetListRef); err != nil {
		return nil, fmt.Errorf("target platform list: %w", err)
	}
	if doc.SourceFramework, err = readTabString(payload, fixed.FrameworkRef); err != nil {
		return nil, fmt.Errorf("source framework: %w", err)
	}
	if doc.CompilerVersion, err = readTabString(payload, fixed.CompilerRef); err != nil {
		return nil, fmt.Errorf("compiler version: %w", err)
	}
	if doc.RuntimeVersion, err = readTabString(payload, fixed.RuntimeRef); err != nil {
		return nil, fmt.Errorf("runtime version: %w", err)
	}

	if fixed.GraphCount > 0 && fixed.GraphsOff == 0 {
		return nil, fmt.Errorf("%w: graph count %d with zero graph table offset", errBadTabular, fixed.GraphCount)
	}
	graphsBytes := uint64(fixed.GraphCount) * graphEntrySize
	if err := checkTabRange(payload, fixed.GraphsOff, graphsBytes); err != nil {
		return nil, fmt.Errorf("graph table: %w", err)
	}

	doc.Graphs = make([]GraphDescription, fixed.GraphCount)
	for gi := uint32(0); gi < fixed.GraphCount; gi++ {
		off := fixed.GraphsOff + uint64(gi)*graphEntrySize
		g, err := decodeGraph(payload, off)
		if err != nil {
			return nil, fmt.Errorf("graph %d: %w", gi, err)
		}
		doc.Graphs[gi] = g
	}
	return doc, nil
}

func decodeGraph(payload []byte, off uint64) (GraphDescription, error) {
	b := payload[off : off+graphEntrySize]
	e := graphEntry{
		TensorCount: binary.LittleEndian.Uint32(b[0:4]),
		NodeCount:   binary.LittleEndian.Uint32(b[4:8]),
		TensorsOff:  binary.LittleEndian.Uint64(b[8:16]),
		NodesOff:    binary.LittleEndian.Uint64(b[16:24]),
		InputCount:  binary.LittleEndian.Uint32(b[24:28]),
		OutputCount: binary.LittleEndian.Uint32(b[28:32]),
		InputsOff:   binary.LittleEndian.Uint64(b[32:40]),
		OutputsOff:  binary.LittleEndian.Uint64(b[40:48]),
		QuantCount:  binary.LittleEndian.Uint32(b[48:52]),
		QuantOff:    binary.LittleEndian.Uint64(b[56:64]),
	}

	g := GraphDescription{Tensors: make(map[uint32]TensorDescriptor, e.TensorCount)}

	// Quant table first: dtype and quantization attach to tensors by id.
	if err := checkTabRange(payload, e.QuantOff, uint64(e.QuantCount)*quantEntrySize); err != nil {
		return g, fmt.Errorf("quant table: %w", err)
	}
	quant := make(map[uint32]quantEntry, e.QuantCount)
	for i := uint32(0); i < e.QuantCount; i++ {
		qb := payload[e.QuantOff+uint64(i)*quantEntrySize:]
		q := quantEntry{
			TensorID:  binary.LittleEndian.Uint32(qb[0:4]),
			DType:     binary.LittleEndian.Uint32(qb[4:8]),
			Kind:      binary.LittleEndian.Uint32(qb[8:12]),
			ZeroPoint: int32(binary.LittleEndian.Uint32(qb[12:16])),
			Scale:     math.Float32frombits(binary.LittleEndian.Uint32(qb[16:20])),
		}
		quant[q.TensorID] = q
	}

	if err := checkTabRange(payload, e.TensorsOff, uint64(e.TensorCount)*tensorEntrySize); err != nil {
		return g, fmt.Errorf("tensor table: %w", err)
	}
	for i := uint32(0); i < e.TensorCount; i++ {
		tb := payload[e.TensorsOff+uint64(i)*tensorEntrySize:]
		te := tensorEntry{
			ID:      binary.LittleEndian.Uint32(tb[0:4]),
			Rank:    binary.LittleEndian.Uint32(tb[4:8]),
			NameRef: binary.LittleEndian.Uint64(tb[8:16]),
			DimsOff: binary.LittleEndian.Uint64(tb[16:24]),
			FmtRef:  binary.LittleEndian.Uint64(tb[24:32]),
		}
		td, err := decodeTensor(payload, te, quant)
		if err != nil {
			return g, fmt.Errorf("tensor %d: %w", te.ID, err)
		}
		g.Tensors[td.ID] = td
	}

	if err := checkTabRange(payload, e.NodesOff, uint64(e.NodeCount)*nodeEntrySize); err != nil {
		return g, fmt.Errorf("node table: %w", err)
	}
	g.Nodes = make([]OperationNode, 0, e.NodeCount)
	for i := uint32(0); i < e.NodeCount; i++ {
		nb := payload[e.NodesOff+uint64(i)*nodeEntrySize:]
		ne := nodeEntry{
			ID:         binary.LittleEndian.Uint32(nb[0:4]),
			InputCount: binary.LittleEndian.Uint32(nb[4:8]),
			TypeRef:    binary.LittleEndian.Uint64(nb[8:16]),
			NameRef:    binary.LittleEndian.Uint64(nb[16:24]),
			InputsOff:  binary.LittleEndian.Uint64(nb[24:32]),
			OutCount:   binary.LittleEndian.Uint32(nb[32:36]),
			OutputsOff: binary.LittleEndian.Uint64(nb[40:48]),
		}
		node, err := decodeNode(payload, ne)
		if err != nil {
			return g, fmt.Errorf("node %d: %w", ne.ID, err)
		}
		g.Nodes = append(g.Nodes, node)
	}

	var err error
	if g.Inputs, err = readTabIDs(payload, e.InputsOff, e.InputCount); err != nil {
		return g, fmt.Errorf("graph inputs: %w", err)
	}
	if g.Outputs, err = readTabIDs(payload, e.OutputsOff, e.OutputCount); err != nil {
		return g, fmt.Errorf("graph outputs: %w", err)
	}
	g.deriveIO()
	return g, nil
}

func decodeTensor(payload []byte, te tensorEntry, quant map[uint32]quantEntry) (TensorDescriptor, error) {
	td := TensorDescriptor{ID: te.ID}

	var err error
	if td.Name, err = readTabString(payload, te.NameRef); err != nil {
		return td, err
	}

	if te.Rank > 0 {
		if err := checkTabRange(payload, te.DimsOff, uint64(te.Rank)*8); err != nil {
			return td, fmt.Errorf("dims: %w", err)
		}
		td.Shape = make([]Dim, te.Rank)
		for d := uint32(0); d < te.Rank; d++ {
			v := binary.LittleEndian.Uint64(payload[te.DimsOff+uint64(d)*8:])
			td.Shape[d] = N(int64(v))
		}
	}

	format, err := readTabString(payload, te.FmtRef)
	if err != nil {
		return td, fmt.Errorf("format string: %w", err)
	}
	td.Layout = layoutFromFormat(format)

	if q, ok := quant[te.ID]; ok {
		td.DType = dtypeName(q.DType)
		if q.Kind != tabQuantNone {
			td.Quant = &QuantInfo{
				Kind:      quantKindName(q.Kind),
				Scale:     q.Scale,
				ZeroPoint: q.ZeroPoint,
			}
		}
	}
	return td, nil
}

func decodeNode(payload []byte, ne nodeEntry) (OperationNode, error) {
	node := OperationNode{ID: ne.ID}

	var err error
	if node.OpType, err = readTabString(payload, ne.TypeRef); err != nil {
		return node, fmt.Errorf("op type: %w", err)
	}
	if node.Name, err = readTabString(payload, ne.NameRef); err != nil {
		return node, fmt.Errorf("name: %w", err)
	}
	if node.Inputs, err = readTabIDs(payload, ne.InputsOff, ne.InputCount); err != nil {
		return node, fmt.Errorf("inputs: %w", err)
	}
	if node.Outputs, err = readTabIDs(payload, ne.OutputsOff, ne.OutCount); err != nil {
		return node, fmt.Errorf("outputs: %w", err)
	}
	return node, nil
}

// layoutFromFormat extracts a tensor axis-order code from the producer
// format string. Producers commonly embed a 4-letter code such as NCHW.
func layoutFromFormat(s string) string {
	if s == "" {
		return ""
	}
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		switch tok {
		case "NCHW", "NHWC", "NC1HWC2", "CHWN", "NCW", "NWC":
			return tok
		}
	}
	return ""
}

func dtypeName(code uint32) string {
	switch code {
	case tabDTypeFloat32:
		return "float32"
	case tabDTypeFloat16:
		return "float16"
	case tabDTypeBFloat16:
		return "bfloat16"
	case tabDTypeInt8:
		return "int8"
	case tabDTypeUInt8:
		return "uint8"
	case tabDTypeInt16:
		return "int16"
	case tabDTypeInt32:
		return "int32"
	case tabDTypeInt64:
		return "int64"
	case tabDTypeBool:
		return "bool"
	default:
		return ""
	}
}

func dtypeCode(name string) uint32 {
	switch name {
	case "float32":
		return tabDTypeFloat32
	case "float16":
		return tabDTypeFloat16
	case "bfloat16":
		return tabDTypeBFloat16
	case "int8":
		return tabDTypeInt8
	case "uint8":
		return tabDTypeUInt8
	case "int16":
		return tabDTypeInt16
	case "int32":
		return tabDTypeInt32
	case "int64":
		return tabDTypeInt64
	case "bool":
		return tabDTypeBool
	default:
		return tabDTypeUnknown
	}
}

func quantKindName(kind uint32) string {
	switch kind {
	case tabQuantAffine:
		return "affine"
	case tabQuantDFP:
		return "dfp"
	default:
		return "none"
	}
}

func quantKindCode(name string) uint32 {
	switch name {
	case "affine":
		return tabQuantAffine
	case "dfp":
		return tabQuantDFP
	default:
		return tabQuantNone
	}
}

func checkTabRange(payload []byte, off, size uint64) error {
	if size == 0 {
		return nil
	}
	end := off + size
	if end < off || end > uint64(len(payload)) {
		return fmt.Errorf("%w: range [%d,%d) exceeds payload size %d", errBadTabular, off, end, len(payload))
	}
	return nil
}

func readTabString(payload []byte, ref uint64) (string, error) {
	if ref == 0 {
		return "", nil
	}
	if err := checkTabRange(payload, ref, 4); err != nil {
		return "", err
	}
	n := uint64(binary.LittleEndian.Uint32(payload[ref:]))
	if err := checkTabRange(payload, ref+4, n); err != nil {
		return "", err
	}
	return string(payload[ref+4 : ref+4+n]), nil
}

func readTabStringList(payload []byte, ref uint64) ([]string, error) {
	if ref == 0 {
		return nil, nil
	}
	if err := checkTabRange(payload, ref, 8); err != nil {
		return nil, err
	}
	count := uint64(binary.LittleEndian.Uint32(payload[ref:]))
	if err := checkTabRange(payload, ref+8, count*8); err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		sref := binary.LittleEndian.Uint64(payload[ref+8+i*8:])
		s, err := readTabString(payload, sref)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func readTabIDs(payload []byte, off uint64, count uint32) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	if err := checkTabRange(payload, off, uint64(count)*4); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		out[i] = binary.LittleEndian.Uint32(payload[off+uint64(i)*4:])
	}
	return out, nil
}

// EncodeTabular builds a tabular payload (v1) from a Document. It is the
// encoding counterpart of DecodeTabular, used by the container writer and
// round-trip tests. Symbolic shape dimensions cannot be represented in the
// tabular schema and are rejected.
func EncodeTabular(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("rknn: nil document")
	}

	b := newTabBuilder()

	// Reserve header + model record up front; patched below.
	b.addZeros(tabularMinSize)

	var fixed modelFixed
	var err error
	if fixed.NameRef, err = b.addString(doc.Name); err != nil {
		return nil, err
	}
	if fixed.TargetListRef, err = b.addStringList(doc.TargetPlatform); err != nil {
		return nil, err
	}
	if fixed.FrameworkRef, err = b.addString(doc.SourceFramework); err != nil {
		return nil, err
	}
	if fixed.CompilerRef, err = b.addString(doc.CompilerVersion); err != nil {
		return nil, err
	}
	if fixed.RuntimeRef, err = b.addString(doc.RuntimeVersion); err != nil {
		return nil, err
	}

	entries := make([]graphEntry, 0, len(doc.Graphs))
	for gi := range doc.Graphs {
		e, err := encodeGraph(b, &doc.Graphs[gi])
		if err != nil {
			return nil, fmt.Errorf("graph %d: %w", gi, err)
		}
		entries = append(entries, e)
	}

	b.align(8)
	fixed.GraphCount = uint32(len(entries))
	fixed.GraphsOff = b.offset()
	for _, e := range entries {
		var raw [graphEntrySize]byte
		binary.LittleEndian.PutUint32(raw[0:4], e.TensorCount)
		binary.LittleEndian.PutUint32(raw[4:8], e.NodeCount)
		binary.LittleEndian.PutUint64(raw[8:16], e.TensorsOff)
		binary.LittleEndian.PutUint64(raw[16:24], e.NodesOff)
		binary.LittleEndian.PutUint32(raw[24:28], e.InputCount)
		binary.LittleEndian.PutUint32(raw[28:32], e.OutputCount)
		binary.LittleEndian.PutUint64(raw[32:40], e.InputsOff)
		binary.LittleEndian.PutUint64(raw[40:48], e.OutputsOff)
		binary.LittleEndian.PutUint32(raw[48:52], e.QuantCount)
		binary.LittleEndian.PutUint64(raw[56:64], e.QuantOff)
		b.addRaw(raw[:])
	}

	out := b.bytes()
	copy(out[0:4], tabularMagic)
	binary.LittleEndian.PutUint32(out[4:8], tabularVersion)
	binary.LittleEndian.PutUint64(out[16:24], fixed.NameRef)
	binary.LittleEndian.PutUint64(out[24:32], fixed.TargetListRef)
	binary.LittleEndian.PutUint64(out[32:40], fixed.FrameworkRef)
	binary.LittleEndian.PutUint64(out[40:48], fixed.CompilerRef)
	binary.LittleEndian.PutUint64(out[48:56], fixed.RuntimeRef)
	binary.LittleEndian.PutUint32(out[56:60], fixed.GraphCount)
	binary.LittleEndian.PutUint64(out[64:72], fixed.GraphsOff)
	return out, nil
}

func encodeGraph(b *tabBuilder, g *GraphDescription) (graphEntry, error) {
	var e graphEntry

	// Deterministic tensor order: ascending id.
	ids := make([]uint32, 0, len(g.Tensors))
	for id := range g.Tensors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	tensors := make([]tensorEntry, 0, len(ids))
	quants := make([]quantEntry, 0, len(ids))
	for _, id := range ids {
		td := g.Tensors[id]
		te := tensorEntry{ID: td.ID, Rank: uint32(len(td.Shape))}

		var err error
		if te.NameRef, err = b.addString(td.Name); err != nil {
			return e, err
		}
		if len(td.Shape) > 0 {
			b.align(8)
			te.DimsOff = b.offset()
			for _, d := range td.Shape {
				if d.IsSymbolic() {
					return e, fmt.Errorf("tensor %d: symbolic dim %q not representable", td.ID, d.Symbol)
				}
				var raw [8]byte
				binary.LittleEndian.PutUint64(raw[:], uint64(d.Value))
				b.addRaw(raw[:])
			}
		}
		if te.FmtRef, err = b.addString(td.Layout); err != nil {
			return e, err
		}
		tensors = append(tensors, te)

		if td.DType != "" || td.Quant != nil {
			q := quantEntry{TensorID: td.ID, DType: dtypeCode(td.DType)}
			if td.Quant != nil {
				q.Kind = quantKindCode(td.Quant.Kind)
				q.Scale = td.Quant.Scale
				q.ZeroPoint = td.Quant.ZeroPoint
			}
			quants = append(quants, q)
		}
	}

	nodes := make([]nodeEntry, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ne := nodeEntry{
			ID:         n.ID,
			InputCount: uint32(len(n.Inputs)),
			OutCount:   uint32(len(n.Outputs)),
		}
		var err error
		if ne.TypeRef, err = b.addString(n.OpType); err != nil {
			return e, err
		}
		if ne.NameRef, err = b.addString(n.Name); err != nil {
			return e, err
		}
		ne.InputsOff = b.addIDs(n.Inputs)
		ne.OutputsOff = b.addIDs(n.Outputs)
		nodes = append(nodes, ne)
	}

	e.InputCount = uint32(len(g.Inputs))
	e.InputsOff = b.addIDs(g.Inputs)
	e.OutputCount = uint32(len(g.Outputs))
	e.OutputsOff = b.addIDs(g.Outputs)

	b.align(8)
	e.TensorCount = uint32(len(tensors))
	e.TensorsOff = b.offset()
	for _, te := range tensors {
		var raw [tensorEntrySize]byte
		binary.LittleEndian.PutUint32(raw[0:4], te.ID)
		binary.LittleEndian.PutUint32(raw[4:8], te.Rank)
		binary.LittleEndian.PutUint64(raw[8:16], te.NameRef)
		binary.LittleEndian.PutUint64(raw[16:24], te.DimsOff)
		binary.LittleEndian.PutUint64(raw[24:32], te.FmtRef)
		b.addRaw(raw[:])
	}

	b.align(8)
	e.NodeCount = uint32(len(nodes))
	e.NodesOff = b.offset()
	for _, ne := range nodes {
		var raw [nodeEntrySize]byte
		binary.LittleEndian.PutUint32(raw[0:4], ne.ID)
		binary.LittleEndian.PutUint32(raw[4:8], ne.InputCount)
		binary.LittleEndian.PutUint64(raw[8:16], ne.TypeRef)
		binary.LittleEndian.PutUint64(raw[16:24], ne.NameRef)
		binary.LittleEndian.PutUint64(raw[24:32], ne.InputsOff)
		binary.LittleEndian.PutUint32(raw[32:36], ne.OutCount)
		binary.LittleEndian.PutUint64(raw[40:48], ne.OutputsOff)
		b.addRaw(raw[:])
	}

	b.align(8)
	e.QuantCount = uint32(len(quants))
	e.QuantOff = b.offset()
	for _, q := range quants {
		var raw [quantEntrySize]byte
		binary.LittleEndian.PutUint32(raw[0:4], q.TensorID)
		binary.LittleEndian.PutUint32(raw[4:8], q.DType)
		binary.LittleEndian.PutUint32(raw[8:12], q.Kind)
		binary.LittleEndian.PutUint32(raw[12:16], uint32(q.ZeroPoint))
		binary.LittleEndian.PutUint32(raw[16:20], math.Float32bits(q.Scale))
		b.addRaw(raw[:])
	}
	if len(quants) == 0 {
		e.QuantOff = 0
	}
	if len(tensors) == 0 {
		e.TensorsOff = 0
	}
	if len(nodes) == 0 {
		e.NodesOff = 0
	}
	return e, nil
}

type tabBuilder struct {
	buf bytes.Buffer
}

func newTabBuilder() *tabBuilder {
	return &tabBuilder{}
}

func (b *tabBuilder) bytes() []byte   { return b.buf.Bytes() }
func (b *tabBuilder) offset() uint64  { return uint64(b.buf.Len()) }
func (b *tabBuilder) addRaw(p []byte) { _, _ = b.buf.Write(p) }

func (b *tabBuilder) addZeros(n int) {
	b.addRaw(make([]byte, n))
}

func (b *tabBuilder) align(n int) {
	if n <= 1 {
		return
	}
	pad := (n - (b.buf.Len() % n)) % n
	if pad > 0 {
		b.addZeros(pad)
	}
}

func (b *tabBuilder) addString(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) > math.MaxUint32 {
		return 0, errors.New("rknn: string blob too large")
	}
	b.align(8)
	off := b.offset()
	var lenRaw [4]byte
	binary.LittleEndian.PutUint32(lenRaw[:], uint32(len(s)))
	b.addRaw(lenRaw[:])
	b.addRaw([]byte(s))
	b.align(8)
	return off, nil
}

func (b *tabBuilder) addStringList(list []string) (uint64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	refs := make([]uint64, len(list))
	for i, s := range list {
		off, err := b.addString(s)
		if err != nil {
			return 0, err
		}
		refs[i] = off
	}
	b.align(8)
	off := b.offset()
	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:4], uint32(len(refs)))
	b.addRaw(head[:])
	for _, r := range refs {
		var raw [8]byte
		binary.LittleEndian.PutUint64(raw[:], r)
		b.addRaw(raw[:])
	}
	return off, nil
}

func (b *tabBuilder) addIDs(ids []uint32) uint64 {
	if len(ids) == 0 {
		return 0
	}
	b.align(8)
	off := b.offset()
	for _, id := range ids {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], id)
		b.addRaw(raw[:])
	}
	return off
}
