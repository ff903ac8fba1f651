package httpapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"gophi/app"
	"gophi/domain/network"
	"gophi/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSIA(c *gin.Context) {
	var req app.AnalysisRequest
	if !s.bind(c, &req) {
		return
	}
	report, err := s.service.SIA(c.Request.Context(), req)
	s.respond(c, report, err)
}

func (s *Server) handleCES(c *gin.Context) {
	var req app.AnalysisRequest
	if !s.bind(c, &req) {
		return
	}
	report, err := s.service.CES(c.Request.Context(), req)
	s.respond(c, report, err)
}

func (s *Server) handleComplexes(c *gin.Context) {
	var req app.ComplexesRequest
	if !s.bind(c, &req) {
		return
	}
	if !s.checkNetwork(c, req.AnalysisRequest) {
		return
	}
	report, err := s.service.Complexes(c.Request.Context(), req)
	s.respond(c, report, err)
}

func (s *Server) handleCuts(c *gin.Context) {
	var req app.AnalysisRequest
	if !s.bind(c, &req) {
		return
	}
	report, err := s.service.Cuts(req)
	s.respond(c, report, err)
}

func (s *Server) handleFlush(c *gin.Context) {
	result, err := s.service.FlushCache(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.CacheStats())
}

// bind decodes the JSON body. Analysis requests arriving over HTTP may only
// name built-in examples or carry an inline network, never a server path.
func (s *Server) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, errors.InvalidInput("invalid request body", err))
		return false
	}
	if r, ok := req.(*app.AnalysisRequest); ok {
		return s.checkNetwork(c, *r)
	}
	return true
}

func (s *Server) checkNetwork(c *gin.Context, req app.AnalysisRequest) bool {
	if req.Spec != nil || req.Network == "" {
		return true
	}
	if _, ok := network.ExampleSpecs[req.Network]; !ok {
		s.fail(c, errors.InvalidInput(fmt.Sprintf("unknown example network %q", req.Network), nil))
		return false
	}
	return true
}

// respond writes report as JSON, or in the format named by ?format=
func (s *Server) respond(c *gin.Context, report app.Report, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}

	format := c.DefaultQuery("format", app.FormatJSON)
	if format == app.FormatJSON {
		c.JSON(http.StatusOK, report)
		return
	}

	var buf bytes.Buffer
	if err := app.Render(&buf, report, format); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType(format), buf.Bytes())
}

func contentType(format string) string {
	switch format {
	case app.FormatHTML:
		return "text/html; charset=utf-8"
	case app.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeStateUnreachable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
