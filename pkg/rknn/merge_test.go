package rknn

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergeBothEmpty(t *testing.T) {
	t.Parallel()

	if _, err := Merge(nil, nil); !errors.Is(err, ErrEmptyModel) {
		t.Fatalf("nil sources: expected ErrEmptyModel, got %v", err)
	}
	if _, err := Merge(&Document{Name: "named-but-empty"}, &Document{}); !errors.Is(err, ErrEmptyModel) {
		t.Fatalf("empty graphs: expected ErrEmptyModel, got %v", err)
	}
}

func TestMergeSingleSource(t *testing.T) {
	t.Parallel()

	tab := sampleDocument()
	rec, err := Merge(tab, nil)
	if err != nil {
		t.Fatalf("tabular only: %v", err)
	}
	if rec.Name != tab.Name || len(rec.Graphs) != 1 {
		t.Fatalf("tabular only record got %+v", rec)
	}

	txt, err := DecodeTrailer([]byte(legacyTrailer))
	if err != nil {
		t.Fatalf("decode trailer: %v", err)
	}
	rec, err = Merge(nil, txt)
	if err != nil {
		t.Fatalf("textual only: %v", err)
	}
	if rec.Name != "nnbg" || len(rec.Graphs) != 1 {
		t.Fatalf("textual only record got %+v", rec)
	}
}

func TestMergeFieldPrecedence(t *testing.T) {
	t.Parallel()

	tab := &Document{
		Name:           "tab-name",
		TargetPlatform: []string{"rk3588"},
		Graphs: []GraphDescription{{
			Tensors: map[uint32]TensorDescriptor{
				0: {ID: 0, Shape: []Dim{N(1), N(3)}, DType: "int8", Layout: "NCHW"},
			},
			Nodes:   []OperationNode{{ID: 0, OpType: "Conv", Inputs: []uint32{0}, Outputs: []uint32{1}}},
			Inputs:  []uint32{0},
			Outputs: []uint32{1},
		}},
	}
	txt := &Document{
		Name:            "txt-name",
		SourceFramework: "onnx",
		Graphs: []GraphDescription{{
			Tensors: map[uint32]TensorDescriptor{
				0: {ID: 0, Name: "input.1", Shape: []Dim{N(9), N(9)}, DType: "float32"},
				1: {ID: 1, Name: "out", DType: "float32", Layout: "NHWC"},
			},
			Nodes: []OperationNode{{ID: 0, OpType: "Conv", Name: "conv_0"}},
		}},
	}

	rec, err := Merge(tab, txt)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	// Scalars: tabular wins, textual fills gaps.
	if rec.Name != "tab-name" {
		t.Fatalf("name got %q", rec.Name)
	}
	if rec.SourceFramework != "onnx" {
		t.Fatalf("source framework got %q", rec.SourceFramework)
	}
	if !reflect.DeepEqual(rec.TargetPlatform, []string{"rk3588"}) {
		t.Fatalf("target platform got %v", rec.TargetPlatform)
	}

	g := rec.Graphs[0]

	// Overlapping tensor: tabular shape and dtype win, textual name fills.
	t0 := g.Tensors[0]
	if !reflect.DeepEqual(t0.Shape, []Dim{N(1), N(3)}) {
		t.Fatalf("tensor 0 shape got %v", t0.Shape)
	}
	if t0.DType != "int8" || t0.Name != "input.1" || t0.Layout != "NCHW" {
		t.Fatalf("tensor 0 got %+v", t0)
	}

	// Textual-only tensor joins the union, but layout never comes from the
	// trailer.
	t1 := g.Tensors[1]
	if t1.Name != "out" || t1.DType != "float32" {
		t.Fatalf("tensor 1 got %+v", t1)
	}
	if t1.Layout != "" {
		t.Fatalf("tensor 1 layout must be empty, got %q", t1.Layout)
	}

	// Node list: tabular authoritative, textual fills the display name.
	if len(g.Nodes) != 1 {
		t.Fatalf("node count got %d", len(g.Nodes))
	}
	if g.Nodes[0].Name != "conv_0" || g.Nodes[0].OpType != "Conv" {
		t.Fatalf("node got %+v", g.Nodes[0])
	}
	if !reflect.DeepEqual(g.Nodes[0].Inputs, []uint32{0}) {
		t.Fatalf("node inputs got %v", g.Nodes[0].Inputs)
	}

	if !reflect.DeepEqual(g.Inputs, []uint32{0}) || !reflect.DeepEqual(g.Outputs, []uint32{1}) {
		t.Fatalf("graph boundary got in=%v out=%v", g.Inputs, g.Outputs)
	}
}

func TestMergeDisjointTensorsUnion(t *testing.T) {
	t.Parallel()

	tab := &Document{Graphs: []GraphDescription{{
		Tensors: map[uint32]TensorDescriptor{
			0: {ID: 0, Name: "weights", DType: "int8", Layout: "NCHW"},
		},
	}}}
	txt := &Document{Graphs: []GraphDescription{{
		Tensors: map[uint32]TensorDescriptor{
			5: {ID: 5, Name: "activations", DType: "float32"},
		},
	}}}

	rec, err := Merge(tab, txt)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	g := rec.Graphs[0]
	if len(g.Tensors) != 2 {
		t.Fatalf("union size got %d want 2", len(g.Tensors))
	}
	if g.Tensors[0].Name != "weights" || g.Tensors[0].Layout != "NCHW" {
		t.Fatalf("tabular tensor lost: %+v", g.Tensors[0])
	}
	if g.Tensors[5].Name != "activations" || g.Tensors[5].DType != "float32" {
		t.Fatalf("textual tensor lost: %+v", g.Tensors[5])
	}
}

func TestMergeDerivesBoundaryWhenAbsent(t *testing.T) {
	t.Parallel()

	txt := &Document{Graphs: []GraphDescription{{
		Nodes: []OperationNode{
			{ID: 0, OpType: "Conv", Inputs: []uint32{0}, Outputs: []uint32{1}},
			{ID: 1, OpType: "Relu", Inputs: []uint32{1}, Outputs: []uint32{2}},
		},
	}}}

	rec, err := Merge(nil, txt)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	g := rec.Graphs[0]
	if !reflect.DeepEqual(g.Inputs, []uint32{0}) {
		t.Fatalf("derived inputs got %v", g.Inputs)
	}
	if !reflect.DeepEqual(g.Outputs, []uint32{2}) {
		t.Fatalf("derived outputs got %v", g.Outputs)
	}
}

func TestRecordPrefersTabularOverTrailer(t *testing.T) {
	t.Parallel()

	payload, err := EncodeTabular(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := BuildContainer(6, payload, []byte(`{"name":"stale-trailer-name"}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, err := f.Record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Name != "mobilenet_v2" {
		t.Fatalf("name got %q", rec.Name)
	}

	// The record is built once.
	again, err := f.Record()
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if again != rec {
		t.Fatalf("record not memoized")
	}
}

func TestRecordSurvivesMalformedTrailer(t *testing.T) {
	t.Parallel()

	payload, err := EncodeTabular(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := BuildContainer(6, payload, []byte(`{"name": broken`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, err := f.Record()
	if err != nil {
		t.Fatalf("a corrupt trailer must not sink a valid payload: %v", err)
	}
	if rec.Name != "mobilenet_v2" {
		t.Fatalf("name got %q", rec.Name)
	}
}

func TestRecordBothSourcesUnusable(t *testing.T) {
	t.Parallel()

	data, err := BuildContainer(6, []byte("not a table"), []byte("not json"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := f.Record(); !errors.Is(err, ErrEmptyModel) {
		t.Fatalf("expected ErrEmptyModel, got %v", err)
	}
}
