package api

import "github.com/rknncli/rknncli/pkg/rknn"

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Session       string `json:"session"`
	Source        string `json:"source,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ModelResponse is the body of GET /v1/model.
type ModelResponse struct {
	Name            string         `json:"name,omitempty"`
	TargetPlatform  []string       `json:"target_platform,omitempty"`
	SourceFramework string         `json:"source_framework,omitempty"`
	CompilerVersion string         `json:"compiler_version,omitempty"`
	RuntimeVersion  string         `json:"runtime_version,omitempty"`
	FormatVersion   uint64         `json:"format_version"`
	PayloadLength   uint64         `json:"payload_length"`
	TrailerLength   uint64         `json:"trailer_length"`
	GraphCount      int            `json:"graph_count"`
	NodeCount       int            `json:"node_count"`
	Operations      map[string]int `json:"operations,omitempty"`
}

// TensorsResponse is the body of the tensor listing endpoints.
type TensorsResponse struct {
	Count   int                     `json:"count"`
	Tensors []rknn.TensorDescriptor `json:"tensors"`
}

// GraphsResponse is the body of GET /v1/graph.
type GraphsResponse struct {
	Graphs []rknn.GraphDescription `json:"graphs"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
