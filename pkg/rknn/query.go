package rknn

import "slices"

// Read-only views over the canonical record. Everything here derives from
// the immutable ModelRecord; nothing caches or mutates.

// Tensors returns every tensor across all graphs, ordered by graph and
// ascending tensor id.
func (m *ModelRecord) Tensors() []TensorDescriptor {
	var out []TensorDescriptor
	for gi := range m.Graphs {
		g := &m.Graphs[gi]
		ids := make([]uint32, 0, len(g.Tensors))
		for id := range g.Tensors {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			out = append(out, g.Tensors[id])
		}
	}
	return out
}

// Inputs returns the graph input tensors across all graphs, in declared
// order.
func (m *ModelRecord) Inputs() []TensorDescriptor {
	return m.boundary(func(g *GraphDescription) []uint32 { return g.Inputs })
}

// Outputs returns the graph output tensors across all graphs, in declared
// order.
func (m *ModelRecord) Outputs() []TensorDescriptor {
	return m.boundary(func(g *GraphDescription) []uint32 { return g.Outputs })
}

func (m *ModelRecord) boundary(ids func(*GraphDescription) []uint32) []TensorDescriptor {
	var out []TensorDescriptor
	for gi := range m.Graphs {
		g := &m.Graphs[gi]
		for _, id := range ids(g) {
			if td, ok := g.Tensors[id]; ok {
				out = append(out, td)
			} else {
				out = append(out, TensorDescriptor{ID: id})
			}
		}
	}
	return out
}

// NodeCount returns the total number of operation nodes across all graphs.
func (m *ModelRecord) NodeCount() int {
	n := 0
	for gi := range m.Graphs {
		n += len(m.Graphs[gi].Nodes)
	}
	return n
}

// SummaryByOpType counts operation nodes per operation type across all
// graphs. Map iteration order is insignificant.
func (m *ModelRecord) SummaryByOpType() map[string]int {
	out := make(map[string]int)
	for gi := range m.Graphs {
		for _, n := range m.Graphs[gi].Nodes {
			out[n.OpType]++
		}
	}
	return out
}
