package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nao1215/prodscout/internal/model"
	"github.com/nao1215/prodscout/internal/pipeline"
	"github.com/nao1215/prodscout/internal/ratelimit"
)

// maxRequestBody limits the body of POST /api/analyze.
const maxRequestBody = 1 << 20

// errURLRequired is the message of requests without a product URL.
const errURLRequired = "Product URL is required"

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse is the success body of POST /api/analyze.
type AnalyzeResponse struct {
	Report string `json:"report"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleStream handles GET /api/analyze?url=... as a server-sent event
// stream. Each stage start is an event; the stream ends with exactly one
// terminal event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errURLRequired})
		return
	}

	stream, err := newEventStream(w, s.now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := r.Context()
	logger := loggerFrom(ctx, s.logger)
	analysis := model.NewAnalysis(url)
	logger.Info("analysis requested", "id", analysis.ID, "url", url, "mode", "stream")

	observer := pipeline.ObserverFunc(func(_ context.Context, _ *model.Analysis, stage string) {
		if err := stream.send(stage, stage+" started"); err != nil {
			logger.Debug("client gone", "id", analysis.ID, "error", err)
		}
	})

	if err := s.run(ctx, analysis, observer); err != nil {
		logger.Warn("analysis failed", "id", analysis.ID, "stage", analysis.FailedStage, "error", err)
		_ = stream.send(model.StageError, describeFailure(err))
		return
	}

	logger.Info("analysis complete", "id", analysis.ID, "duration", analysis.Duration())
	_ = stream.send(model.StageComplete, analysis.Report)
}

// handleAnalyze handles POST /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errURLRequired})
		return
	}

	ctx := r.Context()
	logger := loggerFrom(ctx, s.logger)
	analysis := model.NewAnalysis(req.URL)
	logger.Info("analysis requested", "id", analysis.ID, "url", req.URL, "mode", "sync")

	if err := s.run(ctx, analysis, nil); err != nil {
		status := http.StatusInternalServerError
		if ratelimit.IsQuotaError(err) {
			status = http.StatusServiceUnavailable
		}
		logger.Warn("analysis failed", "id", analysis.ID, "stage", analysis.FailedStage, "status", status, "error", err)
		writeJSON(w, status, ErrorResponse{Error: describeFailure(err)})
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{Report: analysis.Report})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
