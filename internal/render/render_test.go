package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rknncli/rknncli/pkg/rknn"
)

func convGraph() rknn.GraphDescription {
	return rknn.GraphDescription{
		Tensors: map[uint32]rknn.TensorDescriptor{
			0: {ID: 0, Name: "data", Shape: []rknn.Dim{rknn.N(1), rknn.N(3), rknn.N(224), rknn.N(224)}},
			1: {ID: 1, Name: "conv_out", Shape: []rknn.Dim{rknn.N(1), rknn.N(32), rknn.N(112), rknn.N(112)}},
			2: {ID: 2, Name: "out"},
		},
		Nodes: []rknn.OperationNode{
			{ID: 0, OpType: "InputOperator", Name: "data_in", Outputs: []uint32{0}},
			{ID: 1, OpType: "Conv", Name: "conv1", Inputs: []uint32{0}, Outputs: []uint32{1}},
			{ID: 2, OpType: "OutputOperator", Name: "out_0", Inputs: []uint32{1}, Outputs: []uint32{2}},
		},
		Inputs:  []uint32{0},
		Outputs: []uint32{2},
	}
}

func TestGraphSVG(t *testing.T) {
	t.Parallel()

	g := convGraph()
	svg := string(Graph(&g))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("output is not an svg document: %.80s", svg)
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Fatalf("svg not closed")
	}

	for _, want := range []string{"data_in", "conv1", "out_0", "Conv"} {
		if !strings.Contains(svg, ">"+want+"<") {
			t.Fatalf("missing node label %q", want)
		}
	}

	// Boundary operators get their own fills; the edge carries the shape of
	// the tensor flowing over it.
	if !strings.Contains(svg, fillInput) || !strings.Contains(svg, fillOutput) {
		t.Fatalf("boundary operator fills missing")
	}
	if !strings.Contains(svg, "[1, 3, 224, 224]") {
		t.Fatalf("edge shape label missing")
	}
	if got := strings.Count(svg, "<line "); got != 2 {
		t.Fatalf("edge count got %d want 2", got)
	}
}

func TestGraphLayering(t *testing.T) {
	t.Parallel()

	g := convGraph()
	layers := assignLayers(g.Nodes)
	want := []int{0, 1, 2}
	for i := range want {
		if layers[i] != want[i] {
			t.Fatalf("layer of node %d got %d want %d", i, layers[i], want[i])
		}
	}

	// A diamond joins at the depth of its deepest branch.
	diamond := []rknn.OperationNode{
		{ID: 0, OpType: "InputOperator", Outputs: []uint32{0}},
		{ID: 1, OpType: "Conv", Inputs: []uint32{0}, Outputs: []uint32{1}},
		{ID: 2, OpType: "Conv", Inputs: []uint32{1}, Outputs: []uint32{2}},
		{ID: 3, OpType: "Add", Inputs: []uint32{0, 2}, Outputs: []uint32{3}},
	}
	layers = assignLayers(diamond)
	if layers[3] != 3 {
		t.Fatalf("join node layer got %d want 3", layers[3])
	}
}

func TestSymbolicShapeLabels(t *testing.T) {
	t.Parallel()

	g := rknn.GraphDescription{
		Tensors: map[uint32]rknn.TensorDescriptor{
			0: {ID: 0, Shape: []rknn.Dim{rknn.Sym("batch"), rknn.N(128)}},
		},
		Nodes: []rknn.OperationNode{
			{ID: 0, OpType: "InputOperator", Outputs: []uint32{0}},
			{ID: 1, OpType: "MatMul", Inputs: []uint32{0}, Outputs: []uint32{1}},
		},
	}
	svg := string(Graph(&g))
	if !strings.Contains(svg, "[batch, 128]") {
		t.Fatalf("symbolic shape label missing from:\n%s", svg)
	}
}

func TestEscapesMarkup(t *testing.T) {
	t.Parallel()

	g := rknn.GraphDescription{
		Nodes: []rknn.OperationNode{{ID: 0, Name: `a<b>&"c"`, OpType: "Conv"}},
	}
	svg := string(Graph(&g))
	if strings.Contains(svg, "a<b>") {
		t.Fatalf("markup not escaped:\n%s", svg)
	}
	if !strings.Contains(svg, "a&lt;b&gt;&amp;&quot;c&quot;") {
		t.Fatalf("expected escaped label, got:\n%s", svg)
	}
}

func TestEmptyAndMultiGraph(t *testing.T) {
	t.Parallel()

	empty := rknn.GraphDescription{}
	svg := Graph(&empty)
	if !bytes.Contains(svg, []byte("</svg>")) {
		t.Fatalf("empty graph must still render a document")
	}

	rec := &rknn.ModelRecord{Graphs: []rknn.GraphDescription{convGraph(), convGraph()}}
	multi := string(Model(rec))
	if !strings.Contains(multi, ">graph 0<") || !strings.Contains(multi, ">graph 1<") {
		t.Fatalf("multi graph headings missing:\n%.200s", multi)
	}

	// Rendering is deterministic.
	if multi != string(Model(rec)) {
		t.Fatalf("render is not deterministic")
	}
}
