package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/mindwell/internal/service"
)

type chatResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html"`
}

func TestChatRendersMarkdown(t *testing.T) {
	env := newTestEnv(t, echoReplier())

	var resp chatResponse
	decodeBody(t, env.do(t, http.MethodPost, "/api/chat", map[string]string{"text": "hi", "language": "en-US"}), &resp)
	if resp.Reply != "**echo** hi" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if !strings.Contains(resp.HTML, "<strong>echo</strong>") {
		t.Fatalf("expected rendered markdown, got %q", resp.HTML)
	}
}

func TestChatFallbacks(t *testing.T) {
	failing := service.ReplierFunc(func(context.Context, service.ChatRequest) (string, error) {
		return "", errors.New("connection refused")
	})
	env := newTestEnv(t, failing)

	var resp chatResponse
	decodeBody(t, env.do(t, http.MethodPost, "/api/chat", map[string]string{"text": "hello"}), &resp)
	if resp.Reply != service.ChatFailureReply {
		t.Fatalf("expected failure fallback, got %q", resp.Reply)
	}

	decodeBody(t, env.do(t, http.MethodPost, "/api/chat", map[string]string{"text": "   "}), &resp)
	if resp.Reply != service.EmptyUtteranceReply {
		t.Fatalf("expected empty fallback, got %q", resp.Reply)
	}
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	rendered, err := renderMarkdown("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("renderMarkdown returned error: %v", err)
	}
	if strings.Contains(string(rendered), "<script>") {
		t.Fatalf("script tag should be removed, got %q", rendered)
	}
}

func TestConversationMessageAndListen(t *testing.T) {
	env := newTestEnv(t, echoReplier())

	rr := env.do(t, http.MethodPost, "/api/conversation/messages", map[string]string{"text": "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", rr.Code)
	}

	var sent struct {
		ID      string `json:"id"`
		Queued  bool   `json:"queued"`
		Replies []struct {
			Text string `json:"text"`
			HTML string `json:"html"`
		} `json:"replies"`
	}
	decodeBody(t, env.do(t, http.MethodPost, "/api/conversation/messages", map[string]string{"text": "hello"}), &sent)
	if sent.ID == "" || sent.Queued || len(sent.Replies) != 1 || !strings.Contains(sent.Replies[0].HTML, "<strong>") {
		t.Fatalf("unexpected send response %+v", sent)
	}

	var listened struct {
		Supported bool   `json:"supported"`
		Notice    string `json:"notice"`
	}
	rr = env.do(t, http.MethodPost, "/api/conversation/listen", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("unsupported speech should not fail the request, got %d", rr.Code)
	}
	decodeBody(t, rr, &listened)
	if listened.Supported || listened.Notice == "" {
		t.Fatalf("expected advisory notice, got %+v", listened)
	}
}

func TestSettingsWithoutDatabase(t *testing.T) {
	env := newTestEnv(t, nil)

	if rr := env.do(t, http.MethodGet, "/api/settings", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected defaults without database, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPut, "/api/settings", map[string]string{"companionName": "Buddy"}); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database, got %d", rr.Code)
	}
}
