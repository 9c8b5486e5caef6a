package llm

import "testing"

func TestPrompt(t *testing.T) {
	req := Prompt("be brief", "how was my week?")
	if req.SystemPrompt != "be brief" {
		t.Errorf("unexpected system prompt %q", req.SystemPrompt)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser || req.Messages[0].Content != "how was my week?" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
}

func TestChatRequest_TokenLimit(t *testing.T) {
	if got := (ChatRequest{}).TokenLimit(); got != DefaultMaxTokens {
		t.Errorf("expected default %d, got %d", DefaultMaxTokens, got)
	}
	if got := (ChatRequest{MaxTokens: 300}).TokenLimit(); got != 300 {
		t.Errorf("expected 300, got %d", got)
	}
}

func TestUsage_Total(t *testing.T) {
	if got := (Usage{InputTokens: 120, OutputTokens: 80}).Total(); got != 200 {
		t.Errorf("expected 200, got %d", got)
	}
}
