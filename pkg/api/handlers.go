// Package api serves path and cost matrix queries over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/ccb2n19/sfnetworks/pkg/apperror"
	"github.com/ccb2n19/sfnetworks/pkg/network"
	"github.com/ccb2n19/sfnetworks/pkg/resolve"
	"github.com/ccb2n19/sfnetworks/pkg/routing"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds request bodies unless WithMaxBodyBytes says
// otherwise.
const DefaultMaxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router         routing.Router
	stats          StatsResponse
	defaultWeights resolve.Weights
	maxBodyBytes   int64
	metrics        *Metrics
}

// Option configures Handlers.
type Option func(*Handlers)

// WithDefaultWeights sets the weights used when a request names none.
func WithDefaultWeights(w resolve.Weights) Option {
	return func(h *Handlers) { h.defaultWeights = w }
}

// WithMaxBodyBytes bounds the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handlers) { h.maxBodyBytes = n }
}

// WithMetrics counts advisory warnings in m.
func WithMetrics(m *Metrics) Option {
	return func(h *Handlers) { h.metrics = m }
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse, opts ...Option) *Handlers {
	h := &Handlers{
		router:         router,
		stats:          stats,
		defaultWeights: resolve.DefaultLength{},
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StatsOf summarises n for the stats endpoint.
func StatsOf(n *network.Network) StatsResponse {
	return StatsResponse{
		NumNodes:      n.NumNodes(),
		NumEdges:      n.NumEdges(),
		NumComponents: len(n.Components()),
		Directed:      n.Directed,
		Geographic:    n.Geographic,
	}
}

// HandlePaths handles POST /api/v1/paths.
func (h *Handlers) HandlePaths(w http.ResponseWriter, r *http.Request) {
	var req PathsRequest
	if !h.decode(w, r, &req) {
		return
	}

	from, err := resolve.Parse(req.From)
	if err != nil {
		h.writeAppError(w, withField(err, "from"))
		return
	}
	to, err := resolve.Parse(req.To)
	if err != nil {
		h.writeAppError(w, withField(err, "to"))
		return
	}
	weights, err := h.parseWeights(req.Weights)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	res, err := h.router.Paths(r.Context(), routing.PathRequest{
		From:    from,
		To:      to,
		Weights: weights,
		Mode:    routing.Mode(req.Mode),
	})
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.countWarnings(res.Warnings)
	writeJSON(w, http.StatusOK, NewPathsResponse(res))
}

// HandleCostMatrix handles POST /api/v1/cost-matrix.
func (h *Handlers) HandleCostMatrix(w http.ResponseWriter, r *http.Request) {
	var req CostMatrixRequest
	if !h.decode(w, r, &req) {
		return
	}

	from, err := resolve.Parse(req.From)
	if err != nil {
		h.writeAppError(w, withField(err, "from"))
		return
	}
	to, err := resolve.Parse(req.To)
	if err != nil {
		h.writeAppError(w, withField(err, "to"))
		return
	}
	weights, err := h.parseWeights(req.Weights)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	m, warns, err := h.router.CostMatrix(r.Context(), from, to, weights)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.countWarnings(warns)
	writeJSON(w, http.StatusOK, NewCostMatrixResponse(m, warns))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

// decode enforces a JSON body and decodes it into v. It writes the error
// response itself and reports whether the handler may continue.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "invalid_request", "content type must be application/json", "")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large", "")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body", "")
		return false
	}
	return true
}

// parseWeights reads the weights field: nil, a string or an array of
// numbers.
func (h *Handlers) parseWeights(v any) (resolve.Weights, error) {
	switch v := v.(type) {
	case nil:
		return h.defaultWeights, nil
	case string:
		return resolve.ParseWeights(v), nil
	case []any:
		out := make(resolve.Explicit, len(v))
		for i, x := range v {
			f, ok := x.(float64)
			if !ok {
				return nil, apperror.NewWithField(apperror.CodeInvalidInput, fmt.Sprintf("weight %d is not a number", i), "weights")
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, apperror.NewWithField(apperror.CodeUnsupportedType, fmt.Sprintf("weights must be a string or an array, got %T", v), "weights")
}

func (h *Handlers) countWarnings(ws apperror.Warnings) {
	if h.metrics == nil {
		return
	}
	for _, w := range ws {
		h.metrics.Warnings.WithLabelValues(string(w.Code)).Inc()
	}
}

// writeAppError maps an engine error onto an HTTP status.
func (h *Handlers) writeAppError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "", "")
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		zap.L().Error("Unexpected query failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "", "")
		return
	}
	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperror.CodeInvalidInput, apperror.CodeUnsupportedType, apperror.CodeUnknownMode:
		status = http.StatusBadRequest
	case apperror.CodeAttributeNotFound:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("Query failed", zap.Error(err))
	}
	writeError(w, status, errorName(appErr.Code), appErr.Message, appErr.Field)
}

// withField tags an error from parsing one request field with that field.
func withField(err error, field string) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Field == "" {
		return appErr.WithField(field)
	}
	return err
}

func errorName(code apperror.ErrorCode) string {
	switch code {
	case apperror.CodeInvalidInput:
		return "invalid_input"
	case apperror.CodeUnsupportedType:
		return "unsupported_type"
	case apperror.CodeUnknownMode:
		return "unknown_mode"
	case apperror.CodeAttributeNotFound:
		return "attribute_not_found"
	}
	return "internal_error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message, Field: field})
}
