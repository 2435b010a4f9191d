package rknn

// Merge reconciles the tabular and textual documents into one ModelRecord.
//
// The policy is deterministic and field-level. The tabular source is the
// richer, binary-verified encoding, so it wins on conflict; the textual
// source fills whatever the tabular source leaves unset. Layout exists only
// in the tabular schema and is never taken from the trailer. Either input
// may be nil or empty; if both are, the merge fails with ErrEmptyModel.
func Merge(tabular, textual *Document) (*ModelRecord, error) {
	if tabular == nil {
		tabular = &Document{}
	}
	if textual == nil {
		textual = &Document{}
	}
	if tabular.Empty() && textual.Empty() {
		return nil, ErrEmptyModel
	}

	rec := &ModelRecord{
		Name:            pickString(tabular.Name, textual.Name),
		TargetPlatform:  pickStrings(tabular.TargetPlatform, textual.TargetPlatform),
		SourceFramework: pickString(tabular.SourceFramework, textual.SourceFramework),
		CompilerVersion: pickString(tabular.CompilerVersion, textual.CompilerVersion),
		RuntimeVersion:  pickString(tabular.RuntimeVersion, textual.RuntimeVersion),
	}

	n := max(len(tabular.Graphs), len(textual.Graphs))
	rec.Graphs = make([]GraphDescription, 0, n)
	for i := 0; i < n; i++ {
		var tg, xg *GraphDescription
		if i < len(tabular.Graphs) {
			tg = &tabular.Graphs[i]
		}
		if i < len(textual.Graphs) {
			xg = &textual.Graphs[i]
		}
		rec.Graphs = append(rec.Graphs, mergeGraph(tg, xg))
	}
	return rec, nil
}

func mergeGraph(tab, txt *GraphDescription) GraphDescription {
	if tab == nil {
		tab = &GraphDescription{}
	}
	if txt == nil {
		txt = &GraphDescription{}
	}

	out := GraphDescription{Tensors: make(map[uint32]TensorDescriptor, len(tab.Tensors)+len(txt.Tensors))}

	// Tensor set is the union of both sources; overlapping ids merge
	// field by field.
	for id, td := range tab.Tensors {
		out.Tensors[id] = mergeTensor(td, txt.Tensors[id])
	}
	for id, td := range txt.Tensors {
		if _, ok := out.Tensors[id]; ok {
			continue
		}
		// Textual-only tensor: the trailer carries no layout field.
		td.Layout = ""
		out.Tensors[id] = td
	}

	// The non-empty node list wins; when both exist the tabular list is
	// authoritative and the textual one only fills missing names.
	switch {
	case len(tab.Nodes) > 0:
		byID := make(map[uint32]OperationNode, len(txt.Nodes))
		for _, n := range txt.Nodes {
			byID[n.ID] = n
		}
		out.Nodes = make([]OperationNode, len(tab.Nodes))
		for i, n := range tab.Nodes {
			if x, ok := byID[n.ID]; ok {
				if n.Name == "" {
					n.Name = x.Name
				}
				if n.OpType == "" {
					n.OpType = x.OpType
				}
			}
			out.Nodes[i] = n
		}
		out.Inputs = pickIDs(tab.Inputs, txt.Inputs)
		out.Outputs = pickIDs(tab.Outputs, txt.Outputs)
	case len(txt.Nodes) > 0:
		out.Nodes = append(out.Nodes, txt.Nodes...)
		out.Inputs = pickIDs(txt.Inputs, tab.Inputs)
		out.Outputs = pickIDs(txt.Outputs, tab.Outputs)
	default:
		out.Inputs = pickIDs(tab.Inputs, txt.Inputs)
		out.Outputs = pickIDs(tab.Outputs, txt.Outputs)
	}
	out.deriveIO()
	return out
}

func mergeTensor(tab, txt TensorDescriptor) TensorDescriptor {
	out := tab
	if len(out.Shape) == 0 {
		out.Shape = txt.Shape
	}
	if out.Name == "" {
		out.Name = txt.Name
	}
	// dtype prefers the tabular quantization table; the textual declared
	// dtype only fills a gap. Layout stays tabular-only.
	if out.DType == "" {
		out.DType = txt.DType
	}
	if out.Quant == nil {
		out.Quant = txt.Quant
	}
	return out
}

func pickString(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func pickStrings(primary, fallback []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}

func pickIDs(primary, fallback []uint32) []uint32 {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}
