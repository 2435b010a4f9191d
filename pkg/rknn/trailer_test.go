package rknn

import (
	"errors"
	"reflect"
	"testing"
)

const legacyTrailer = `{
  "name": "nnbg",
  "version": "1.7.3",
  "runtime_version": "1.7.3b2",
  "target_platform": ["rv1109", "rv1126"],
  "network_platform": "caffe",
  "nodes": [
    {"uid": 0, "op": "RKNN_OP_NNBG", "name": "nnbg_0"}
  ],
  "norm_tensor": [
    {"tensor_id": 0, "size": [1, 3, 300, 300], "dtype": "uint8", "url": "data"},
    {"tensor_id": 1, "size": [1, 5444, 4], "dtype": "float32", "url": "boxes"},
    {"tensor_id": 2, "size": [1, 5444, 21], "dtype": "float32", "url": "scores"},
    {"tensor_id": 3, "size": [1, 5444, 2], "dtype": "float32", "url": "anchors"}
  ],
  "connection": [
    {"node_id": 0, "left": "output", "left_tensor_id": 2, "right_tensor": 3},
    {"node_id": 0, "left": "input", "left_tensor_id": 0, "right_tensor": 0},
    {"node_id": 0, "left": "output", "left_tensor_id": 0, "right_tensor": 1},
    {"node_id": 0, "left": "output", "left_tensor_id": 1, "right_tensor": 2}
  ]
}`

func TestTrailerLegacyDocument(t *testing.T) {
	t.Parallel()

	doc, err := DecodeTrailer([]byte(legacyTrailer))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if doc.Name != "nnbg" {
		t.Fatalf("name got %q", doc.Name)
	}
	if doc.CompilerVersion != "1.7.3" || doc.RuntimeVersion != "1.7.3b2" {
		t.Fatalf("versions got %q / %q", doc.CompilerVersion, doc.RuntimeVersion)
	}
	if doc.SourceFramework != "caffe" {
		t.Fatalf("source framework got %q", doc.SourceFramework)
	}
	if !reflect.DeepEqual(doc.TargetPlatform, []string{"rv1109", "rv1126"}) {
		t.Fatalf("target platform got %v", doc.TargetPlatform)
	}

	if len(doc.Graphs) != 1 {
		t.Fatalf("graph count got %d", len(doc.Graphs))
	}
	g := doc.Graphs[0]
	if len(g.Tensors) != 4 {
		t.Fatalf("tensor count got %d", len(g.Tensors))
	}
	if g.Tensors[1].Name != "boxes" || g.Tensors[1].DType != "float32" {
		t.Fatalf("tensor 1 got %+v", g.Tensors[1])
	}
	if g.Tensors[0].Layout != "" {
		t.Fatalf("trailer must not produce a layout, got %q", g.Tensors[0].Layout)
	}

	if len(g.Nodes) != 1 {
		t.Fatalf("node count got %d", len(g.Nodes))
	}
	n := g.Nodes[0]
	if n.OpType != "RKNN_OP_NNBG" || n.Name != "nnbg_0" {
		t.Fatalf("node got %+v", n)
	}
	// Ports attach in index order regardless of connection order in the
	// document.
	if !reflect.DeepEqual(n.Inputs, []uint32{0}) {
		t.Fatalf("node inputs got %v", n.Inputs)
	}
	if !reflect.DeepEqual(n.Outputs, []uint32{1, 2, 3}) {
		t.Fatalf("node outputs got %v", n.Outputs)
	}

	// No explicit graph boundary in the trailer, so it is derived from the
	// connection structure.
	if !reflect.DeepEqual(g.Inputs, []uint32{0}) {
		t.Fatalf("graph inputs got %v", g.Inputs)
	}
	if !reflect.DeepEqual(g.Outputs, []uint32{1, 2, 3}) {
		t.Fatalf("graph outputs got %v", g.Outputs)
	}
}

func TestTrailerSymbolicDims(t *testing.T) {
	t.Parallel()

	doc, err := DecodeTrailer([]byte(`{
		"norm_tensor": [{"tensor_id": 7, "size": ["batch", 3, "height", "width"], "dtype": "float16"}]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	shape := doc.Graphs[0].Tensors[7].Shape
	want := []Dim{Sym("batch"), N(3), Sym("height"), Sym("width")}
	if !reflect.DeepEqual(shape, want) {
		t.Fatalf("shape got %v want %v", shape, want)
	}
	if shape[0].String() != "batch" || shape[1].String() != "3" {
		t.Fatalf("dim rendering got %q / %q", shape[0], shape[1])
	}
}

func TestTrailerEmptyIsValid(t *testing.T) {
	t.Parallel()

	doc, err := DecodeTrailer(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !doc.Empty() {
		t.Fatalf("empty trailer must yield an empty document")
	}
}

func TestTrailerMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"invalid json", `{"name": "x"`},
		{"not json at all", "\x00\x01\x02"},
		{"unknown connection side", `{
			"nodes": [{"uid": 0, "op": "Conv"}],
			"connection": [{"node_id": 0, "left": "sideways", "left_tensor_id": 0, "right_tensor": 0}]
		}`},
	}
	for _, tc := range cases {
		if _, err := DecodeTrailer([]byte(tc.in)); !errors.Is(err, ErrMalformedMetadata) {
			t.Fatalf("%s: expected ErrMalformedMetadata, got %v", tc.name, err)
		}
	}
}
