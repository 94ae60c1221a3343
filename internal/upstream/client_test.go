package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/florianilch/claude-adapter/internal/anthropic"
	"github.com/florianilch/claude-adapter/internal/upstream"
)

// mockTransport captures HTTP requests and returns canned responses
type mockTransport struct {
	capturedRequest *http.Request
	capturedBody    []byte
	responseBody    string
	responseStatus  int
	err             error
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.capturedRequest = req
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		m.capturedBody = body
		if err := req.Body.Close(); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	contentType := "application/json"
	if req.Header.Get("Accept") == "text/event-stream" {
		contentType = "text/event-stream"
	}

	return &http.Response{
		StatusCode: m.responseStatus,
		Status:     http.StatusText(m.responseStatus),
		Body:       io.NopCloser(strings.NewReader(m.responseBody)),
		Header:     http.Header{"Content-Type": []string{contentType}},
		Request:    req,
	}, nil
}

func testRequest() upstream.ChatRequest {
	return upstream.ChatRequest{
		Model:     "test-model",
		Messages:  []upstream.ChatMessage{upstream.NewChatMessage("user", "Hi")},
		MaxTokens: 100,
	}
}

func TestCreateChatCompletion(t *testing.T) {
	mock := &mockTransport{
		responseStatus: http.StatusOK,
		responseBody: `{
			"id": "chatcmpl-1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2}
		}`,
	}
	client := upstream.NewClient("http://upstream.test/v1/", nil, mock)

	resp, err := client.CreateChatCompletion(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}

	if got := mock.capturedRequest.URL.String(); got != "http://upstream.test/v1/chat/completions" {
		t.Errorf("url = %q", got)
	}
	if ct := mock.capturedRequest.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var sent map[string]any
	if err := json.Unmarshal(mock.capturedBody, &sent); err != nil {
		t.Fatalf("sent body not JSON: %v", err)
	}
	if sent["model"] != "test-model" {
		t.Errorf("sent model = %v", sent["model"])
	}
	if _, present := sent["stream_options"]; present {
		t.Error("stream_options sent on buffered request")
	}

	if resp.ID != "chatcmpl-1" || resp.Choices[0].Message.Content != "Hello!" {
		t.Errorf("decoded response = %+v", resp)
	}
}

func TestCreateChatCompletion_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    string
		wantMessage string
	}{
		{
			name:        "openai error body",
			status:      401,
			body:        `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
			wantType:    anthropic.ErrTypeAuthentication,
			wantMessage: "Incorrect API key provided",
		},
		{
			name:        "plain text body",
			status:      503,
			body:        "upstream overloaded\n",
			wantType:    anthropic.ErrTypeAPI,
			wantMessage: "upstream overloaded",
		},
		{
			name:        "empty body falls back to status",
			status:      502,
			body:        "",
			wantType:    anthropic.ErrTypeAPI,
			wantMessage: http.StatusText(http.StatusBadGateway),
		},
		{
			name:        "rate limited",
			status:      429,
			body:        `{"error": {"message": "slow down"}}`,
			wantType:    anthropic.ErrTypeRateLimit,
			wantMessage: "slow down",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTransport{responseStatus: tt.status, responseBody: tt.body}
			client := upstream.NewClient("http://upstream.test/v1", nil, mock)

			_, err := client.CreateChatCompletion(context.Background(), testRequest())

			var apiErr *anthropic.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %T (%v), want APIError", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestCreateChatCompletion_TransportError(t *testing.T) {
	mock := &mockTransport{err: errors.New("connection refused")}
	client := upstream.NewClient("http://upstream.test/v1", nil, mock)

	_, err := client.CreateChatCompletion(context.Background(), testRequest())

	var apiErr *anthropic.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "connection refused") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestCreateChatCompletionStream(t *testing.T) {
	mock := &mockTransport{
		responseStatus: http.StatusOK,
		responseBody: strings.Join([]string{
			`data: {"choices":[{"index":0,"delta":{"content":"Hi"}}]}`,
			``,
			`data: [DONE]`,
			``,
		}, "\n"),
	}
	client := upstream.NewClient("http://upstream.test/v1", nil, mock)

	req := testRequest()
	req.Stream = true
	stream, err := client.CreateChatCompletionStream(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateChatCompletionStream: %v", err)
	}
	defer func() { _ = stream.Close() }()

	if accept := mock.capturedRequest.Header.Get("Accept"); accept != "text/event-stream" {
		t.Errorf("accept header = %q", accept)
	}

	var chunks []string
	for stream.Next() {
		chunks = append(chunks, string(stream.Current()))
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(chunks) != 1 || !strings.Contains(chunks[0], `"content":"Hi"`) {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestCreateChatCompletionStream_ErrorBeforeFirstByte(t *testing.T) {
	mock := &mockTransport{
		responseStatus: http.StatusUnauthorized,
		responseBody:   `{"error": {"message": "bad key"}}`,
	}
	client := upstream.NewClient("http://upstream.test/v1", nil, mock)

	req := testRequest()
	req.Stream = true
	_, err := client.CreateChatCompletionStream(context.Background(), req)

	var apiErr *anthropic.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "bad key" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
