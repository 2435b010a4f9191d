// Package render draws a compute graph as a standalone SVG document.
// Nodes are laid out top-to-bottom in dependency layers; edges run from
// each tensor's producer to its consumers and carry the tensor shape as a
// label.
package render

import (
	"fmt"
	"strings"

	"github.com/rknncli/rknncli/pkg/rknn"
)

const (
	nodeHeight = 44
	hGap       = 36
	vGap       = 64
	margin     = 24
	charWidth  = 8
	minWidth   = 104
)

// Operator fill colors. Boundary pseudo-operators get their own palette;
// everything else falls back by operator family.
const (
	fillDefault = "#eef2ff"
	fillInput   = "#d5f5e3"
	fillOutput  = "#fdebd0"
)

var opFills = map[string]string{
	"InputOperator":  fillInput,
	"OutputOperator": fillOutput,
	"Conv":           "#dbeafe",
	"Conv2D":         "#dbeafe",
	"Relu":           "#dcfce7",
	"MaxPool":        "#ffedd5",
	"Add":            "#fef9c3",
	"Mul":            "#fce7f3",
	"MatMul":         "#cffafe",
	"Softmax":        "#fee2e2",
	"Reshape":        "#e5e7eb",
}

// Model renders every graph of the record into one SVG document, stacked
// vertically with a heading per graph.
func Model(rec *rknn.ModelRecord) []byte {
	var b strings.Builder

	type placed struct {
		title string
		body  string
		w, h  int
	}
	sections := make([]placed, 0, len(rec.Graphs))
	width, height := 0, margin
	for gi := range rec.Graphs {
		body, w, h := layoutGraph(&rec.Graphs[gi], height+24)
		title := "graph"
		if len(rec.Graphs) > 1 {
			title = fmt.Sprintf("graph %d", gi)
		}
		sections = append(sections, placed{title: title, body: body, w: w, h: h})
		if w > width {
			width = w
		}
		height += h + 24
	}
	if width < minWidth+2*margin {
		width = minWidth + 2*margin
	}
	height += margin

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	b.WriteString(`<defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#475569"/></marker></defs>` + "\n")
	b.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")

	y := margin
	for _, s := range sections {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="13" fill="#334155">%s</text>`+"\n",
			margin, y+12, escape(s.title))
		b.WriteString(s.body)
		y += s.h + 24
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// Graph renders a single graph into one SVG document.
func Graph(g *rknn.GraphDescription) []byte {
	return Model(&rknn.ModelRecord{Graphs: []rknn.GraphDescription{*g}})
}

type box struct {
	x, y, w int
	node    rknn.OperationNode
}

// layoutGraph places nodes into layers and emits the SVG fragment for one
// graph starting at vertical offset top. Returns the fragment and its
// bounding width and height.
func layoutGraph(g *rknn.GraphDescription, top int) (string, int, int) {
	if len(g.Nodes) == 0 {
		return "", 0, nodeHeight
	}

	layers := assignLayers(g.Nodes)
	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}

	// Row-major placement: each layer is one row, nodes keep their
	// declaration order within the row.
	boxes := make([]box, len(g.Nodes))
	rowX := make([]int, maxLayer+1)
	for i := range rowX {
		rowX[i] = margin
	}
	width := 0
	for i, n := range g.Nodes {
		w := boxWidth(n)
		l := layers[i]
		boxes[i] = box{
			x:    rowX[l],
			y:    top + margin + l*(nodeHeight+vGap),
			w:    w,
			node: n,
		}
		rowX[l] += w + hGap
		if rowX[l]-hGap+margin > width {
			width = rowX[l] - hGap + margin
		}
	}
	height := margin + (maxLayer+1)*(nodeHeight+vGap) - vGap + margin

	producers := make(map[uint32]int)
	for i, n := range g.Nodes {
		for _, t := range n.Outputs {
			producers[t] = i
		}
	}

	var b strings.Builder

	// Edges first so nodes draw on top.
	for i, n := range g.Nodes {
		for _, t := range n.Inputs {
			p, ok := producers[t]
			if !ok || p == i {
				continue
			}
			from, to := boxes[p], boxes[i]
			x1, y1 := from.x+from.w/2, from.y+nodeHeight
			x2, y2 := to.x+to.w/2, to.y
			fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#475569" stroke-width="1.2" marker-end="url(#arrow)"/>`+"\n",
				x1, y1, x2, y2)
			if label := shapeLabel(g, t); label != "" {
				fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="10" fill="#64748b" text-anchor="middle">%s</text>`+"\n",
					(x1+x2)/2+4, (y1+y2)/2, escape(label))
			}
		}
	}

	for _, bx := range boxes {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="8" fill="%s" stroke="#64748b"/>`+"\n",
			bx.x, bx.y, bx.w, nodeHeight, fill(bx.node.OpType))
		name, op := nodeLabel(bx.node)
		cx := bx.x + bx.w/2
		if op == "" {
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="11" text-anchor="middle">%s</text>`+"\n",
				cx, bx.y+nodeHeight/2+4, escape(name))
		} else {
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="11" text-anchor="middle">%s</text>`+"\n",
				cx, bx.y+18, escape(name))
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="10" fill="#475569" text-anchor="middle">%s</text>`+"\n",
				cx, bx.y+33, escape(op))
		}
	}

	return b.String(), width, height
}

// assignLayers computes the dependency depth of each node: one past the
// deepest producer feeding it. Relaxation converges because the graph is
// acyclic; the pass bound guards against malformed cyclic inputs.
func assignLayers(nodes []rknn.OperationNode) []int {
	producers := make(map[uint32]int)
	for i, n := range nodes {
		for _, t := range n.Outputs {
			producers[t] = i
		}
	}
	layers := make([]int, len(nodes))
	for pass := 0; pass < len(nodes); pass++ {
		changed := false
		for i, n := range nodes {
			for _, t := range n.Inputs {
				p, ok := producers[t]
				if !ok || p == i {
					continue
				}
				if layers[i] < layers[p]+1 {
					layers[i] = layers[p] + 1
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return layers
}

func nodeLabel(n rknn.OperationNode) (string, string) {
	switch {
	case n.Name != "" && n.OpType != "":
		return n.Name, n.OpType
	case n.Name != "":
		return n.Name, ""
	case n.OpType != "":
		return n.OpType, ""
	default:
		return fmt.Sprintf("node_%d", n.ID), ""
	}
}

func boxWidth(n rknn.OperationNode) int {
	name, op := nodeLabel(n)
	chars := len(name)
	if len(op) > chars {
		chars = len(op)
	}
	w := chars*charWidth + 24
	if w < minWidth {
		w = minWidth
	}
	return w
}

func fill(opType string) string {
	if c, ok := opFills[opType]; ok {
		return c
	}
	return fillDefault
}

func shapeLabel(g *rknn.GraphDescription, tensorID uint32) string {
	td, ok := g.Tensors[tensorID]
	if !ok || len(td.Shape) == 0 {
		return ""
	}
	parts := make([]string, len(td.Shape))
	for i, d := range td.Shape {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
