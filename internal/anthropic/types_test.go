package anthropic

import (
	"encoding/json"
	"testing"
)

func TestMessageContent_BothEncodings(t *testing.T) {
	var str MessageContent
	if err := json.Unmarshal([]byte(`"plain text"`), &str); err != nil {
		t.Fatal(err)
	}
	if !str.IsString || str.Text != "plain text" {
		t.Errorf("string content = %+v", str)
	}

	var blocks MessageContent
	if err := json.Unmarshal([]byte(`[{"type": "text", "text": "hi"}]`), &blocks); err != nil {
		t.Fatal(err)
	}
	if blocks.IsString || len(blocks.Blocks) != 1 || blocks.Blocks[0].Text != "hi" {
		t.Errorf("block content = %+v", blocks)
	}

	var bad MessageContent
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("numeric content accepted")
	}
}

func TestContentBlock_MarshalText(t *testing.T) {
	got, err := json.Marshal(ContentBlock{Type: BlockTypeText, Text: ""})
	if err != nil {
		t.Fatal(err)
	}
	// Empty text must still serialize, never be omitted.
	if string(got) != `{"type":"text","text":""}` {
		t.Errorf("marshaled = %s", got)
	}
}

func TestContentBlock_MarshalToolUseNilInput(t *testing.T) {
	got, err := json.Marshal(ContentBlock{Type: BlockTypeToolUse, ID: "toolu_1", Name: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"type":"tool_use","id":"toolu_1","name":"t","input":{}}` {
		t.Errorf("marshaled = %s", got)
	}
}

func TestToolResultContent_String(t *testing.T) {
	var str ToolResultContent
	if err := json.Unmarshal([]byte(`"sunny"`), &str); err != nil {
		t.Fatal(err)
	}
	if str.String() != "sunny" {
		t.Errorf("string result = %q", str.String())
	}

	var structured ToolResultContent
	raw := `[ {"type": "text", "text": "sunny"} ]`
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		t.Fatal(err)
	}
	if structured.String() != `[{"type":"text","text":"sunny"}]` {
		t.Errorf("structured result = %q", structured.String())
	}

	var empty ToolResultContent
	if empty.String() != "" {
		t.Errorf("empty result = %q", empty.String())
	}
}

func TestSystemPrompt_BothEncodings(t *testing.T) {
	var fromString SystemPrompt
	if err := json.Unmarshal([]byte(`"be brief"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if fromString.Text() != "be brief" {
		t.Errorf("string system = %q", fromString.Text())
	}

	var fromBlocks SystemPrompt
	if err := json.Unmarshal([]byte(`[{"type":"text","text":"a"},{"type":"text","text":"b"}]`), &fromBlocks); err != nil {
		t.Fatal(err)
	}
	if fromBlocks.Text() != "a\nb" {
		t.Errorf("block system = %q", fromBlocks.Text())
	}
}

func TestToolChoice_BothEncodings(t *testing.T) {
	var bare ToolChoice
	if err := json.Unmarshal([]byte(`"auto"`), &bare); err != nil {
		t.Fatal(err)
	}
	if bare.Type != "auto" {
		t.Errorf("bare choice = %+v", bare)
	}

	var obj ToolChoice
	if err := json.Unmarshal([]byte(`{"type":"tool","name":"get_weather"}`), &obj); err != nil {
		t.Fatal(err)
	}
	if obj.Type != "tool" || obj.Name != "get_weather" {
		t.Errorf("object choice = %+v", obj)
	}
}

func TestNewMessageID(t *testing.T) {
	id := NewMessageID()
	if len(id) != len("msg_")+24 {
		t.Errorf("id length = %d", len(id))
	}
	if id[:4] != "msg_" {
		t.Errorf("id prefix = %q", id[:4])
	}
	if id == NewMessageID() {
		t.Error("ids not unique")
	}
}

func TestErrorTypeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{400, ErrTypeInvalidRequest},
		{401, ErrTypeAuthentication},
		{403, ErrTypePermission},
		{404, ErrTypeNotFound},
		{429, ErrTypeRateLimit},
		{500, ErrTypeAPI},
		{502, ErrTypeAPI},
	}
	for _, tt := range tests {
		if got := ErrorTypeForStatus(tt.status); got != tt.want {
			t.Errorf("ErrorTypeForStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestNewErrorResponse(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(401, ErrTypeAuthentication, "bad key"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"error":{"type":"authentication_error","message":"bad key"},"status":401}`
	if string(body) != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}
