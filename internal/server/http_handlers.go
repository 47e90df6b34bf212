package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"resumepdf/internal/common"
	"resumepdf/internal/document"
	"resumepdf/internal/errors"
	"resumepdf/internal/formatters"
	"resumepdf/internal/observability"
	"resumepdf/internal/render"
	"resumepdf/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const codeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"

var planContentTypes = map[string]string{
	"json":     "application/json",
	"text":     "text/plain; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
}

// createRenderHandler returns POST /render: a resume document in, a PDF out.
func (s *Server) createRenderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	tracer := om.Tracer("resumepdf.api")
	metrics := om.GetMetrics()

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "api.render")
		defer span.End()

		doc, err := s.readDocument(r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request")
			s.writeAppError(w, r, err)
			return
		}

		ctx, cancel := s.renderContext(ctx)
		defer cancel()

		style := r.URL.Query().Get("style")
		start := time.Now()
		var buf bytes.Buffer
		result, err := s.Renderer.Generate(ctx, doc, style, &buf)
		s.counters.renders.Add(1)
		if err != nil {
			s.counters.renderErrors.Add(1)
			metrics.RecordRender(ctx, render.SelectStyle(style, doc.Style), time.Since(start), 0, 0, errorCode(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
			s.Logger.LogError(err, "Render request failed", "request_id", requestIDFrom(r.Context()))
			s.writeAppError(w, r, err)
			return
		}

		s.counters.bytesRendered.Add(result.Stats.Bytes)
		metrics.RecordRender(ctx, result.Plan.Theme.Name, time.Since(start), result.Stats.Pages, result.Stats.Bytes, "")
		span.SetAttributes(
			attribute.String("render.style", result.Plan.Theme.Name),
			attribute.Int("render.pages", result.Stats.Pages),
			attribute.Int64("render.bytes", result.Stats.Bytes),
		)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="resume.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("X-Resume-Style", result.Plan.Theme.Name)
		w.Header().Set("X-Resume-Pages", strconv.Itoa(result.Stats.Pages))
		if result.Fallback {
			w.Header().Set("X-Resume-Style-Fallback", result.Style)
		}
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			s.Logger.LogError(err, "Failed to write PDF response", "request_id", requestIDFrom(r.Context()))
		}
	}
}

// createPlanHandler returns POST /plan: the layout plan without the PDF.
func (s *Server) createPlanHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	tracer := om.Tracer("resumepdf.api")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "api.plan")
		defer span.End()

		format := common.NormalizeFormat(r.URL.Query().Get("format"))
		if format == "" {
			format = "json"
		}
		if err := common.ValidateOutputFormat(format, formatters.GlobalRegistry.GetSupportedFormats()); err != nil {
			s.writeAppError(w, r, err)
			return
		}

		doc, err := s.readDocument(r)
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, r, err)
			return
		}

		plan, _, _ := s.Renderer.Plan(ctx, doc, r.URL.Query().Get("style"))
		s.counters.plans.Add(1)

		out, err := formatters.GlobalRegistry.Format(plan, format)
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, r, errors.NewInternalError("FORMAT_FAILED", "Failed to format plan", err))
			return
		}

		w.Header().Set("Content-Type", planContentTypes[format])
		_, _ = io.WriteString(w, out)
	}
}

// createValidateHandler returns POST /validate. Invalid documents are a
// normal answer here, so the status is 200 either way.
func (s *Server) createValidateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	tracer := om.Tracer("resumepdf.api")

	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "api.validate")
		defer span.End()

		format, err := requestFormat(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		body, err := readBody(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}

		report := document.Report(body, format)
		s.counters.validations.Add(1)
		span.SetAttributes(attribute.Bool("document.valid", report.Valid))
		writeJSON(w, http.StatusOK, report)
	}
}

// healthHandler reports liveness plus certificate state when TLS is on.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":         "healthy",
		"service":        "resumepdf",
		"version":        s.Version,
		"styles":         render.StyleNames(),
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	}

	status := http.StatusOK
	if s.certs != nil {
		certStatus := s.certs.status()
		response["certificates"] = certStatus
		if healthy, _ := certStatus["healthy"].(bool); !healthy {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumepdf",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"render_timeout":         s.RenderTimeout.String(),
		},
		"requests": map[string]any{
			"renders":        s.counters.renders.Load(),
			"render_errors":  s.counters.renderErrors.Load(),
			"plans":          s.counters.plans.Load(),
			"validations":    s.counters.validations.Load(),
			"bytes_rendered": s.counters.bytesRendered.Load(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) renderContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.RenderTimeout > 0 {
		return context.WithTimeout(ctx, s.RenderTimeout)
	}
	return context.WithCancel(ctx)
}

// readDocument decodes the request body as a resume in the format named by
// Content-Type.
func (s *Server) readDocument(r *http.Request) (*types.ResumeDocument, error) {
	format, err := requestFormat(r)
	if err != nil {
		return nil, err
	}
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	return document.Parse(body, format)
}

// requestFormat maps Content-Type to a document format. A missing header
// means JSON.
func requestFormat(r *http.Request) (document.Format, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return document.FormatJSON, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.NewInputError(codeUnsupportedMediaType, "Malformed Content-Type header", err)
	}
	switch mediaType {
	case "application/json":
		return document.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return document.FormatYAML, nil
	default:
		return "", errors.NewInputError(codeUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type %s (use application/json or application/yaml)", mediaType), nil)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return nil, errors.NewInputError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return nil, errors.NewInputError(errors.ErrCodeInvalidRequest, "Failed to read request body", err)
	}
	return body, nil
}

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch {
	case appErr.Code == codeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case appErr.Code == errors.ErrCodeFontRequired:
		return http.StatusUnprocessableEntity
	case appErr.Type == errors.ErrorTypeInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Code
	}
	return "INTERNAL"
}

// writeAppError writes err as an ErrorResponse. Server-side failures hide
// their cause from the client.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	title := http.StatusText(status)
	message := err.Error()
	code := errorCode(err)

	if appErr, ok := errors.As(err); ok {
		message = appErr.Message
		var violations *document.ValidationError
		if stderrors.As(err, &violations) {
			message = violations.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		message = "The document could not be rendered"
	}

	writeErrorResponse(w, r, title, message, code, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, title, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
