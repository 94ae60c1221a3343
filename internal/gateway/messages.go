package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/florianilch/claude-adapter/internal/adapter"
	"github.com/florianilch/claude-adapter/internal/anthropic"
	"github.com/florianilch/claude-adapter/internal/metrics"
	"github.com/florianilch/claude-adapter/internal/recorder"
	"github.com/florianilch/claude-adapter/internal/upstream"
)

// MessagesHandler serves POST /v1/messages: validates the Anthropic request,
// translates it, calls the upstream, and translates the response or stream
// back.
type MessagesHandler struct {
	Client   *upstream.Client
	Recorder *recorder.Recorder

	// Provider identifies the upstream in usage and error records
	// (typically the base URL).
	Provider         string
	Models           adapter.ModelMap
	ToolFormat       string
	MaxContextWindow int

	// newRequestID overrides request id generation in tests.
	newRequestID func() string
}

// Compile-time check to ensure MessagesHandler implements http.Handler
var _ http.Handler = (*MessagesHandler)(nil)

func (h *MessagesHandler) requestID() string {
	if h.newRequestID != nil {
		return h.newRequestID()
	}
	return anthropic.NewMessageID()
}

// ServeHTTP implements http.Handler.
func (h *MessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID := h.requestID()
	w.Header().Set("X-Request-Id", requestID)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read request body", "request_id", requestID, "error", err)
		writeAPIError(ctx, w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		slog.ErrorContext(ctx, "invalid JSON in request body", "request_id", requestID, "error", err)
		writeAPIError(ctx, w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if fieldErrs := anthropic.ValidateRequest(raw); len(fieldErrs) > 0 {
		message := anthropic.FormatFieldErrors(fieldErrs)
		slog.ErrorContext(ctx, "request validation failed", "request_id", requestID, "error", message)
		writeAPIError(ctx, w, http.StatusBadRequest, message)
		return
	}

	var req anthropic.MessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		slog.ErrorContext(ctx, "failed to parse request", "request_id", requestID, "error", err)
		writeAPIError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	toolFormat := adapter.DetectToolFormat(h.ToolFormat, req.Tools)
	targetModel := adapter.ResolveModel(req.Model, h.Models)
	chatReq := adapter.ConvertRequest(&req, targetModel, toolFormat, h.MaxContextWindow)

	mode := "sync"
	if req.Stream {
		mode = "stream"
	}
	slog.InfoContext(ctx, "forwarding request",
		"request_id", requestID, "model", targetModel, "mode", mode, "tools", toolFormat)

	if req.Stream {
		h.streamResponse(ctx, w, requestID, &req, chatReq)
	} else {
		h.writeResponse(ctx, w, requestID, &req, chatReq)
	}
}

// writeResponse handles the buffered branch.
func (h *MessagesHandler) writeResponse(
	ctx context.Context,
	w http.ResponseWriter,
	requestID string,
	req *anthropic.MessageRequest,
	chatReq upstream.ChatRequest,
) {
	completion, err := h.Client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		h.writeUpstreamError(ctx, w, requestID, req, false, err)
		return
	}

	resp := adapter.ConvertResponse(completion, req.Model)

	h.Recorder.RecordUsage(recorder.UsageRecord{
		Provider:          h.Provider,
		RequestedModel:    req.Model,
		ConcreteModel:     chatReq.Model,
		InputTokens:       resp.Usage.InputTokens,
		OutputTokens:      resp.Usage.OutputTokens,
		CachedInputTokens: resp.Usage.CacheReadInputTokens,
		Streaming:         false,
	})
	metrics.ObserveRequest(false, false)
	metrics.ObserveTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	writeJSON(ctx, w, resp, http.StatusOK)
}

// streamResponse handles the streaming branch. Upstream failures before the
// first byte surface as JSON errors; after that the stream converter turns
// them into a valid error-bearing tail.
func (h *MessagesHandler) streamResponse(
	ctx context.Context,
	w http.ResponseWriter,
	requestID string,
	req *anthropic.MessageRequest,
	chatReq upstream.ChatRequest,
) {
	stream, err := h.Client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		h.writeUpstreamError(ctx, w, requestID, req, true, err)
		return
	}
	defer func() { _ = stream.Close() }()

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "request_id", requestID, "error", err)
		writeAPIError(ctx, w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	converter := adapter.NewStreamConverter(requestID, req.Model)
	for event := range converter.Events(stream) {
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream", "request_id", requestID)
			return
		}
		if err := sse.WriteEvent(event.EventType(), event); err != nil {
			slog.ErrorContext(ctx, "failed to write event", "request_id", requestID, "error", err)
			return
		}
	}

	metrics.ObserveRequest(true, converter.Failed())

	if converter.Failed() {
		return
	}
	if usage := converter.Usage(); usage != nil {
		h.Recorder.RecordUsage(recorder.UsageRecord{
			Provider:       h.Provider,
			RequestedModel: req.Model,
			ConcreteModel:  chatReq.Model,
			InputTokens:    usage.InputTokens,
			OutputTokens:   usage.OutputTokens,
			Streaming:      true,
		})
		metrics.ObserveTokens(usage.InputTokens, usage.OutputTokens)
	}
}

// writeUpstreamError maps an upstream failure to the Anthropic error
// taxonomy and records it.
func (h *MessagesHandler) writeUpstreamError(
	ctx context.Context,
	w http.ResponseWriter,
	requestID string,
	req *anthropic.MessageRequest,
	streaming bool,
	err error,
) {
	slog.ErrorContext(ctx, "upstream request failed", "request_id", requestID, "error", err)

	h.Recorder.RecordError(err, requestID, h.Provider, req.Model, streaming)
	metrics.ObserveRequest(streaming, true)

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		writeErrorType(ctx, w, apiErr.StatusCode, apiErr.Type, apiErr.Message)
		return
	}
	writeAPIError(ctx, w, http.StatusInternalServerError, err.Error())
}
