// Package api serves the parsed model over HTTP for inspection tooling.
// All endpoints are read-only views over one immutable ModelRecord, so no
// handler takes a lock.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/rknncli/rknncli/internal/logger"
	"github.com/rknncli/rknncli/internal/render"
	"github.com/rknncli/rknncli/pkg/rknn"
)

// Server exposes one opened model over HTTP.
type Server struct {
	source  string
	layout  rknn.Layout
	record  *rknn.ModelRecord
	log     logger.Logger
	session string
	started time.Time
}

// NewServer creates a Server for an already parsed and merged model.
func NewServer(source string, layout rknn.Layout, record *rknn.ModelRecord, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		source:  source,
		layout:  layout,
		record:  record,
		log:     log.WithGroup("api"),
		session: uuid.NewString(),
		started: time.Now(),
	}
}

// Register mounts all routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/model", s.handleModel)
	e.GET("/v1/tensors", s.handleTensors)
	e.GET("/v1/inputs", s.handleInputs)
	e.GET("/v1/outputs", s.handleOutputs)
	e.GET("/v1/graph", s.handleGraph)
	e.GET("/v1/graph.svg", s.handleGraphSVG)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, HealthResponse{
		Status:        "ok",
		Session:       s.session,
		Source:        s.source,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleModel(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, ModelResponse{
		Name:            s.record.Name,
		TargetPlatform:  s.record.TargetPlatform,
		SourceFramework: s.record.SourceFramework,
		CompilerVersion: s.record.CompilerVersion,
		RuntimeVersion:  s.record.RuntimeVersion,
		FormatVersion:   s.layout.FormatVersion,
		PayloadLength:   s.layout.PayloadLength,
		TrailerLength:   s.layout.TrailerLength,
		GraphCount:      len(s.record.Graphs),
		NodeCount:       s.record.NodeCount(),
		Operations:      s.record.SummaryByOpType(),
	})
}

func (s *Server) handleTensors(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, tensorList(s.record.Tensors()))
}

func (s *Server) handleInputs(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, tensorList(s.record.Inputs()))
}

func (s *Server) handleOutputs(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, tensorList(s.record.Outputs()))
}

func (s *Server) handleGraph(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, GraphsResponse{Graphs: s.record.Graphs})
}

func (s *Server) handleGraphSVG(c *echo.Context) error {
	if s.record.NodeCount() == 0 {
		return writeError(c, http.StatusNotFound, "model has no graph to draw")
	}
	s.log.Debug("rendering graph", "source", s.source)
	return c.Blob(http.StatusOK, "image/svg+xml", render.Model(s.record))
}

func tensorList(tensors []rknn.TensorDescriptor) TensorsResponse {
	if tensors == nil {
		tensors = []rknn.TensorDescriptor{}
	}
	return TensorsResponse{Count: len(tensors), Tensors: tensors}
}
