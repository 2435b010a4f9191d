package rknn

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Dim is one tensor shape dimension. Legacy textual-only files may declare
// symbolic placeholders ("batch", "height") instead of numbers; those are
// preserved as opaque tokens, never coerced.
type Dim struct {
	Value  int64  `json:"value,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// N returns a numeric dimension.
func N(v int64) Dim { return Dim{Value: v} }

// Sym returns a symbolic placeholder dimension.
func Sym(s string) Dim { return Dim{Symbol: s} }

// IsSymbolic reports whether the dimension is a placeholder token.
func (d Dim) IsSymbolic() bool { return d.Symbol != "" }

func (d Dim) String() string {
	if d.IsSymbolic() {
		return d.Symbol
	}
	return strconv.FormatInt(d.Value, 10)
}

// UnmarshalJSON accepts either a JSON number or a JSON string. Strings are
// kept verbatim as symbols.
func (d *Dim) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty shape dimension")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d.Symbol = s
		d.Value = 0
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	d.Value = v
	d.Symbol = ""
	return nil
}

// MarshalJSON mirrors UnmarshalJSON: symbols as strings, numbers as numbers.
func (d Dim) MarshalJSON() ([]byte, error) {
	if d.IsSymbolic() {
		return json.Marshal(d.Symbol)
	}
	return json.Marshal(d.Value)
}

// QuantInfo describes the quantization of one tensor as recorded in the
// tabular payload.
type QuantInfo struct {
	Kind      string  `json:"kind"`
	Scale     float32 `json:"scale,omitempty"`
	ZeroPoint int32   `json:"zero_point,omitempty"`
}

// TensorDescriptor is the canonical description of one tensor.
type TensorDescriptor struct {
	ID     uint32     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Shape  []Dim      `json:"shape"`
	DType  string     `json:"dtype,omitempty"`
	Layout string     `json:"layout,omitempty"`
	Quant  *QuantInfo `json:"quant,omitempty"`
}

// OperationNode is one operation of the compute graph with its ordered
// tensor references.
type OperationNode struct {
	ID      uint32   `json:"id"`
	OpType  string   `json:"op_type"`
	Name    string   `json:"name,omitempty"`
	Inputs  []uint32 `json:"inputs"`
	Outputs []uint32 `json:"outputs"`
}

// GraphDescription is the version-independent description of one graph.
// Both decoders produce this same shape so the merge never branches on the
// source format, only on field presence.
type GraphDescription struct {
	Tensors map[uint32]TensorDescriptor `json:"tensors"`
	Nodes   []OperationNode             `json:"nodes"`
	Inputs  []uint32                    `json:"inputs"`
	Outputs []uint32                    `json:"outputs"`
}

// Empty reports whether the graph carries no tensors and no nodes.
func (g *GraphDescription) Empty() bool {
	return g == nil || (len(g.Tensors) == 0 && len(g.Nodes) == 0)
}

// deriveIO fills Inputs and Outputs when the source format does not declare
// them explicitly: inputs are tensors consumed but never produced, outputs
// are tensors produced but never consumed, both in node order.
func (g *GraphDescription) deriveIO() {
	if len(g.Inputs) > 0 || len(g.Outputs) > 0 {
		return
	}
	produced := make(map[uint32]bool)
	consumed := make(map[uint32]bool)
	for _, n := range g.Nodes {
		for _, id := range n.Outputs {
			produced[id] = true
		}
		for _, id := range n.Inputs {
			consumed[id] = true
		}
	}
	seenIn := make(map[uint32]bool)
	seenOut := make(map[uint32]bool)
	for _, n := range g.Nodes {
		for _, id := range n.Inputs {
			if !produced[id] && !seenIn[id] {
				seenIn[id] = true
				g.Inputs = append(g.Inputs, id)
			}
		}
		for _, id := range n.Outputs {
			if !consumed[id] && !seenOut[id] {
				seenOut[id] = true
				g.Outputs = append(g.Outputs, id)
			}
		}
	}
}

// Document is the decoded output of a single metadata source, before
// normalization. Absent fields stay zero-valued.
type Document struct {
	Name            string             `json:"name,omitempty"`
	TargetPlatform  []string           `json:"target_platform,omitempty"`
	SourceFramework string             `json:"source_framework,omitempty"`
	CompilerVersion string             `json:"compiler_version,omitempty"`
	RuntimeVersion  string             `json:"runtime_version,omitempty"`
	Graphs          []GraphDescription `json:"graphs"`
}

// Empty reports whether the document carries no graph data at all.
func (d *Document) Empty() bool {
	if d == nil {
		return true
	}
	for i := range d.Graphs {
		if !d.Graphs[i].Empty() {
			return false
		}
	}
	return true
}

// ModelRecord is the canonical, merged model description. It is built once
// by the normalizer and never mutated afterwards; it may be shared across
// consumers without locking.
type ModelRecord struct {
	Name            string             `json:"name,omitempty"`
	TargetPlatform  []string           `json:"target_platform,omitempty"`
	SourceFramework string             `json:"source_framework,omitempty"`
	CompilerVersion string             `json:"compiler_version,omitempty"`
	RuntimeVersion  string             `json:"runtime_version,omitempty"`
	Graphs          []GraphDescription `json:"graphs"`
}
