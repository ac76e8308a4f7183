package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"github.com/matzehuels/cellsolve/pkg/buildinfo"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// SolveRequest is the body of POST /v1/solve. Options are applied on top of
// the server's configured defaults; omitted fields keep the default.
type SolveRequest struct {
	Document json.RawMessage `json:"document"`
	Options  json.RawMessage `json:"options,omitempty"`
}

// SolveResponse is the body of a successful POST /v1/solve.
type SolveResponse struct {
	RequestID string             `json:"request_id"`
	Document  *exchange.Document `json:"document"`
	Shapes    []exchange.Shape   `json:"shapes"`
	Artifacts map[string]string  `json:"artifacts,omitempty"`
	Stats     Stats              `json:"stats"`
	Cached    bool               `json:"cached"`
}

// Stats reports pipeline timings in milliseconds.
type Stats struct {
	Cells        int   `json:"cells"`
	Shapes       int   `json:"shapes"`
	SolveMillis  int64 `json:"solve_ms"`
	RenderMillis int64 `json:"render_ms"`
	Objective    int64 `json:"objective,omitempty"`
}

// ValidateResponse is the body of POST /v1/validate.
type ValidateResponse struct {
	RequestID string           `json:"request_id"`
	Valid     bool             `json:"valid"`
	Issues    []pipeline.Issue `json:"issues"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string         `json:"status"`
		Backend string         `json:"backend"`
		Build   buildinfo.Info `json:"build"`
	}{"ok", s.defaults.Backend, buildinfo.Get()})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if len(req.Document) == 0 {
		writeErr(w, r, errors.New(errors.ErrCodeInvalidInput, "missing document"))
		return
	}
	doc, err := exchange.Unmarshal(req.Document, exchange.FormatJSON)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	opts := s.defaults
	if len(req.Options) > 0 {
		if err := decodeJSON(bytes.NewReader(req.Options), &opts); err != nil {
			writeErr(w, r, err)
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	resp := SolveResponse{
		RequestID: RequestIDFrom(r.Context()),
		Document:  res.Document,
		Shapes:    res.Shapes,
		Cached:    res.CacheInfo.LayoutHit,
		Stats: Stats{
			Cells:        res.Stats.Cells,
			Shapes:       res.Stats.Shapes,
			SolveMillis:  res.Stats.SolveTime.Milliseconds(),
			RenderMillis: res.Stats.RenderTime.Milliseconds(),
		},
	}
	if res.Solve != nil {
		resp.Stats.Objective = res.Solve.Objective
	}
	if len(res.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(res.Artifacts))
		for f, data := range res.Artifacts {
			resp.Artifacts[f] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleValidate accepts a bare document. The Content-Type selects the
// encoding; JSON is assumed when it is missing.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	format, err := formatOf(r.Header.Get("Content-Type"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	doc, err := exchange.Read(r.Body, format)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	issues := pipeline.ValidateDocument(r.Context(), doc)
	if issues == nil {
		issues = []pipeline.Issue{}
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		RequestID: RequestIDFrom(r.Context()),
		Valid:     len(issues) == 0,
		Issues:    issues,
	})
}

// =============================================================================
// Encoding Helpers
// =============================================================================

func formatOf(contentType string) (exchange.Format, error) {
	if contentType == "" {
		return exchange.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "content type")
	}
	switch mt {
	case "application/json":
		return exchange.FormatJSON, nil
	case "application/toml":
		return exchange.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return exchange.FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported content type %q", mt)
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
	}
	writeError(w, r, statusFor(code), string(code), errors.UserMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		RequestID: RequestIDFrom(r.Context()),
		Code:      code,
		Message:   msg,
	})
}

// statusFor maps error codes to HTTP statuses. Problems with the submitted
// document are client errors; a document that has no solution is 422.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidGrammar,
		errors.ErrCodeInvalidConstraint, errors.ErrCodeInvalidState, errors.ErrCodeNotFound,
		errors.ErrCodeMissingBackend:
		return http.StatusBadRequest
	case errors.ErrCodeInfeasible, errors.ErrCodeUnresolved:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
