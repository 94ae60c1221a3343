package upstream_test

import (
	"io"
	"strings"
	"testing"

	"github.com/florianilch/claude-adapter/internal/upstream"
)

func collectChunks(t *testing.T, body string) []string {
	t.Helper()
	stream := upstream.NewChunkStream(io.NopCloser(strings.NewReader(body)))
	defer func() { _ = stream.Close() }()

	var chunks []string
	for stream.Next() {
		chunks = append(chunks, string(stream.Current()))
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	return chunks
}

func TestChunkStream(t *testing.T) {
	body := strings.Join([]string{
		`: keep-alive comment`,
		``,
		`event: chunk`,
		`data: {"a":1}`,
		``,
		`data:{"b":2}`,
		``,
		`data: [DONE]`,
		``,
		`data: {"never":"reached"}`,
	}, "\n")

	chunks := collectChunks(t, body)

	want := []string{`{"a":1}`, `{"b":2}`}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunkStream_NoTerminator(t *testing.T) {
	// Streams cut off before [DONE] still end cleanly.
	chunks := collectChunks(t, "data: {\"a\":1}\n")
	if len(chunks) != 1 || chunks[0] != `{"a":1}` {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestChunkStream_EmptyBody(t *testing.T) {
	if chunks := collectChunks(t, ""); len(chunks) != 0 {
		t.Errorf("chunks = %v, want none", chunks)
	}
}

func TestChunkStream_NextAfterDone(t *testing.T) {
	stream := upstream.NewChunkStream(io.NopCloser(strings.NewReader("data: [DONE]\n")))
	defer func() { _ = stream.Close() }()

	if stream.Next() {
		t.Error("Next returned true after terminator")
	}
	if stream.Next() {
		t.Error("Next returned true on repeated call")
	}
}
