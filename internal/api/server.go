// Package api exposes a built quantized pipeline over HTTP so hardware
// bring-up tooling can request reference inferences without shelling out
// to the CLI.
package api

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/qmlp/internal/memfile"
	"github.com/samcharles93/qmlp/internal/pipeline"
)

// Server serves one immutable pipeline. Concurrent requests are safe
// because Forward is pure.
type Server struct {
	p        *pipeline.Pipeline
	manifest memfile.Manifest
}

func NewServer(p *pipeline.Pipeline, manifest memfile.Manifest) *Server {
	return &Server{p: p, manifest: manifest}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/pipeline", s.handlePipeline)
	e.POST("/v1/infer", s.handleInfer)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePipeline(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.manifest)
}

func (s *Server) handleInfer(c *echo.Context) error {
	req, err := decodeJSON[InferRequest](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	if (len(req.Input) == 0) == (len(req.RealInput) == 0) {
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			"exactly one of input or real_input must be provided")
	}

	x := req.Input
	if len(req.RealInput) > 0 {
		x, err = s.p.QuantizeInput(req.RealInput)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		}
	}

	res, err := s.p.Forward(x)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}

	resp := InferResponse{
		ID:         "inf-" + uuid.NewString(),
		Prediction: res.Prediction,
		Logits:     res.Acc2,
	}
	if req.IncludeIntermediates {
		resp.QuantizedInput = x
		resp.Acc1 = res.Acc1
		resp.Hidden = res.Hidden
	}
	return c.JSON(http.StatusOK, resp)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": APIError{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (*T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
