// Package v1handler implements version 1 of the HTTP API: URL extraction
// endpoints, bearer authentication and the JSON error envelope.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"urlextract/internal/config"
	"urlextract/internal/extractor"
	"urlextract/pkg/logger"
	"urlextract/pkg/serrors"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps are the services the handlers call into.
type Deps struct {
	Extractor extractor.Extractor
}

// Options configure request handling.
type Options struct {
	// MaxBodyBytes limits the size of request bodies; zero means no limit.
	MaxBodyBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{MaxBodyBytes: cfg.HTTP.MaxBodyBytes}
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, opts Options) *Handler {
	return &Handler{deps: deps, options: opts}
}

// Register mounts the v1 routes on r, which is expected to be the /v1
// subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/extract", h.Extract).Methods(http.MethodPost).Name("extract")
	r.HandleFunc("/extract/batch", h.ExtractBatch).Methods(http.MethodPost).Name("extractBatch")
}

// Error is the JSON body of every error response.
type Error struct {
	Code    string
	Message string
}

// ErrorStatusCode is an error response with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   Error
}

// NewError maps err to an error response. Semantic errors keep their
// message; anything else is logged and reported as an internal error.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)

	var message string
	var se *serrors.Error
	if errors.As(err, &se) {
		message = se.Message()
	}

	status := http.StatusInternalServerError
	switch kind {
	case serrors.ErrBadRequest:
		status = http.StatusBadRequest
	case serrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case serrors.ErrNotFound:
		status = http.StatusNotFound
		if message == "" {
			message = "resource not found"
		}
	case serrors.ErrMethodNotAllowed:
		status = http.StatusMethodNotAllowed
	case serrors.ErrPayloadTooLarge:
		status = http.StatusRequestEntityTooLarge
	case serrors.ErrRateLimited:
		status = http.StatusTooManyRequests
		if message == "" {
			message = "too many requests"
		}
	default:
		logger.Error(ctx, "request failed", zap.Error(err))
		kind = serrors.ErrInternal
		message = "internal error"
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response:   Error{Code: kind.Error(), Message: message},
	}
}

// WriteError writes the error response of err.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Str(res.Response.Code)
	e.FieldStart("message")
	e.Str(res.Response.Message)
	e.ObjEnd()

	writeJSON(r.Context(), w, res.StatusCode, e.Bytes())
}

// NotFound serves unknown routes with a NOT_FOUND error.
func (h *Handler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, serrors.KindOnly(serrors.ErrNotFound))
	})
}

// MethodNotAllowed serves known routes requested with the wrong method.
func (h *Handler) MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, serrors.KindOnly(serrors.ErrMethodNotAllowed))
	})
}

// RateLimited serves requests rejected by the rate limiter.
func (h *Handler) RateLimited() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, serrors.KindOnly(serrors.ErrRateLimited))
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Debug(ctx, "could not write response", zap.Error(err))
	}
}
