package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"

	"github.com/florianilch/claude-adapter/internal/anthropic"
)

// Upstream round trips can sit behind slow local inference servers.
const requestTimeout = 300 * time.Second

// Client performs chat completion calls against one configured base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. Requests authenticate through the
// token source as a bearer header; transport overrides the default transport
// when non-nil (tests inject a mock here).
func NewClient(baseURL string, source oauth2.TokenSource, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if source != nil {
		transport = &oauth2.Transport{Source: source, Base: transport}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
	}
}

// CreateChatCompletion performs a buffered completion call.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatRequest) (*openai.ChatCompletionResponse, error) {
	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp)
	}

	var completion openai.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	return &completion, nil
}

// CreateChatCompletionStream performs a streaming completion call. The
// returned stream owns the response body and must be closed.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req ChatRequest) (*ChunkStream, error) {
	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, errorFromResponse(resp)
	}

	return NewChunkStream(resp.Body), nil
}

func (c *Client) post(ctx context.Context, req ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, anthropic.NewAPIError(http.StatusInternalServerError, fmt.Sprintf("upstream request failed: %v", err))
	}
	return resp, nil
}

// errorFromResponse turns a non-2xx upstream response into an APIError,
// preferring the message inside an OpenAI-shaped error body.
func errorFromResponse(resp *http.Response) *anthropic.APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		message = wrapped.Error.Message
	}
	if message == "" {
		message = resp.Status
	}

	return anthropic.NewAPIError(resp.StatusCode, message)
}
