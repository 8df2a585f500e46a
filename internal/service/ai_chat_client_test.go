package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestAIChatClientUsesConfiguredTimeout(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(nil, ChatOptions{Timeout: 5 * time.Second})

	httpClient, ok := client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client, got %T", client.http)
	}
	if httpClient.Timeout != 5*time.Second {
		t.Fatalf("expected configured timeout, got %v", httpClient.Timeout)
	}

	client.SetHTTPClient(nil)
	httpClient, ok = client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client after reset, got %T", client.http)
	}
	if httpClient.Timeout != defaultChatTimeout {
		t.Fatalf("reset timeout should be %v, got %v", defaultChatTimeout, httpClient.Timeout)
	}
}

func TestAIChatClientDefaultsToOllama(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(nil, ChatOptions{Model: "llama3:70b", BaseURL: "http://gpu-box:11434/v1/"})

	var captured chatCompletionRequest
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "http://gpu-box:11434/v1/chat/completions" {
			t.Fatalf("unexpected endpoint %s", r.URL.String())
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Fatalf("ollama request should not carry auth, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  hi there  "}}]}`), nil
	}})

	resp, err := client.callWithSettings(context.Background(), SystemSettings{}, aiChatRequest{SystemPrompt: "sys", UserPrompt: "hello"})
	if err != nil {
		t.Fatalf("callWithSettings returned error: %v", err)
	}
	if resp.Content != "hi there" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if captured.Model != "llama3:70b" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestAIChatClientOpenAIRequiresKey(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(nil, ChatOptions{})
	_, err := client.callWithSettings(context.Background(), SystemSettings{ChatProvider: ChatProviderOpenAI}, aiChatRequest{UserPrompt: "hello"})
	if !errors.Is(err, ErrChatAPIKeyMissing) {
		t.Fatalf("expected ErrChatAPIKeyMissing, got %v", err)
	}
}

func TestAIChatClientSurfacesProviderError(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(nil, ChatOptions{Provider: ChatProviderOpenAI, APIKey: "sk-test"})
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`), nil
	}})

	_, err := client.callWithSettings(context.Background(), SystemSettings{}, aiChatRequest{UserPrompt: "hello"})
	if err == nil || !strings.Contains(err.Error(), "invalid key") {
		t.Fatalf("expected provider error message, got %v", err)
	}
}
