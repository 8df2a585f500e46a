package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestRemoteChatClientReply(t *testing.T) {
	client := NewRemoteChatClient("http://localhost:8000/chat", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Text != "hello" || payload.Language != "mr-IN" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		return jsonResponse(http.StatusOK, `{"reply":" नमस्कार "}`), nil
	}})

	reply, err := client.Reply(context.Background(), ChatRequest{Text: "hello", Language: "mr-IN"})
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if reply != "नमस्कार" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRemoteChatClientStatusError(t *testing.T) {
	client := NewRemoteChatClient("http://localhost:8000/chat", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{}`), nil
	}})

	if _, err := client.Reply(context.Background(), ChatRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
