package rknn

import (
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// Trailer document schema. Legacy files describe the whole model here;
// newer files keep a reduced copy alongside the tabular payload.
type trailerDoc struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	RuntimeVersion  string          `json:"runtime_version"`
	TargetPlatform  []string        `json:"target_platform"`
	NetworkPlatform string          `json:"network_platform"`
	Nodes           []trailerNode   `json:"nodes"`
	NormTensor      []trailerTensor `json:"norm_tensor"`
	Connection      []trailerConn   `json:"connection"`
}

type trailerNode struct {
	UID  uint32 `json:"uid"`
	Op   string `json:"op"`
	Name string `json:"name"`
}

type trailerTensor struct {
	TensorID uint32 `json:"tensor_id"`
	Size     []Dim  `json:"size"`
	DType    string `json:"dtype"`
	URL      string `json:"url"`
}

// trailerConn links one node port to a tensor. Left names the port side
// ("input" or "output"), LeftTensorID is the port index on that side, and
// RightTensor is the tensor the port attaches to.
type trailerConn struct {
	NodeID       uint32 `json:"node_id"`
	Left         string `json:"left"`
	LeftTensorID uint32 `json:"left_tensor_id"`
	RightTensor  uint32 `json:"right_tensor"`
}

// DecodeTrailer parses the textual trailer into a Document. An empty
// trailer is a valid, empty source. A syntactically invalid trailer fails
// with ErrMalformedMetadata; the caller decides whether that is fatal.
func DecodeTrailer(data []byte) (*Document, error) {
	if len(data) == 0 {
		return &Document{}, nil
	}

	var td trailerDoc
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	doc := &Document{
		Name:            td.Name,
		TargetPlatform:  td.TargetPlatform,
		SourceFramework: td.NetworkPlatform,
		CompilerVersion: td.Version,
		RuntimeVersion:  td.RuntimeVersion,
	}

	g := GraphDescription{Tensors: make(map[uint32]TensorDescriptor, len(td.NormTensor))}
	for _, t := range td.NormTensor {
		g.Tensors[t.TensorID] = TensorDescriptor{
			ID:    t.TensorID,
			Name:  t.URL,
			Shape: t.Size,
			DType: t.DType,
		}
	}

	// Connections attach tensors to node ports; ports are ordered by their
	// index on each side.
	inPorts := make(map[uint32][]nodePort)
	outPorts := make(map[uint32][]nodePort)
	for _, c := range td.Connection {
		p := nodePort{index: c.LeftTensorID, tensor: c.RightTensor}
		switch c.Left {
		case "input":
			inPorts[c.NodeID] = append(inPorts[c.NodeID], p)
		case "output":
			outPorts[c.NodeID] = append(outPorts[c.NodeID], p)
		default:
			return nil, fmt.Errorf("%w: connection side %q for node %d", ErrMalformedMetadata, c.Left, c.NodeID)
		}
	}

	g.Nodes = make([]OperationNode, 0, len(td.Nodes))
	for _, n := range td.Nodes {
		node := OperationNode{ID: n.UID, OpType: n.Op, Name: n.Name}
		node.Inputs = portTensors(inPorts[n.UID])
		node.Outputs = portTensors(outPorts[n.UID])
		g.Nodes = append(g.Nodes, node)
	}
	g.deriveIO()

	if !g.Empty() {
		doc.Graphs = []GraphDescription{g}
	}
	return doc, nil
}

type nodePort struct {
	index  uint32
	tensor uint32
}

func portTensors(ports []nodePort) []uint32 {
	if len(ports) == 0 {
		return nil
	}
	slices.SortStableFunc(ports, func(a, b nodePort) int {
		switch {
		case a.index < b.index:
			return -1
		case a.index > b.index:
			return 1
		default:
			return 0
		}
	})
	out := make([]uint32, len(ports))
	for i, p := range ports {
		out[i] = p.tensor
	}
	return out
}
