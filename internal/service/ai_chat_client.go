package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	TopP         float64
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// ChatOptions 是启动配置中与模型接入相关的部分，运行时设置可覆盖 Provider 与 API Key。
type ChatOptions struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

const (
	defaultOllamaModel = "llama3:8b"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultChatTimeout = 60 * time.Second
)

type aiChatClient struct {
	settings      *SystemSettingService
	http          httpDoer
	provider      string
	apiKey        string
	ollamaBaseURL string
	ollamaModel   string
	openAIBaseURL string
	openAIModel   string
}

func newAIChatClient(settings *SystemSettingService, opts ChatOptions) *aiChatClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}

	provider := normalizeChatProvider(opts.Provider)
	if provider == "" {
		provider = ChatProviderOllama
	}

	c := &aiChatClient{
		settings:      settings,
		http:          &http.Client{Timeout: timeout},
		provider:      provider,
		apiKey:        strings.TrimSpace(opts.APIKey),
		ollamaBaseURL: defaultOllamaBaseURL,
		ollamaModel:   defaultOllamaModel,
		openAIBaseURL: defaultOpenAIBaseURL,
		openAIModel:   defaultOpenAIModel,
	}

	// BaseURL/Model 作用于启动时选择的平台
	if provider == ChatProviderOpenAI {
		c.SetOpenAIBaseURL(opts.BaseURL)
		c.SetOpenAIModel(opts.Model)
	} else {
		c.SetOllamaBaseURL(opts.BaseURL)
		c.SetOllamaModel(opts.Model)
	}
	return c
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: defaultChatTimeout}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetOllamaBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	c.ollamaBaseURL = base
}

func (c *aiChatClient) SetOpenAIBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	c.openAIBaseURL = base
}

func (c *aiChatClient) SetOllamaModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.ollamaModel = model
}

func (c *aiChatClient) SetOpenAIModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.openAIModel = model
}

// currentSettings 读取运行时设置，读取失败时沿用启动配置。
func (c *aiChatClient) currentSettings() (SystemSettings, error) {
	if c.settings == nil {
		return SystemSettings{CompanionName: defaultCompanionName}, nil
	}
	return c.settings.GetSettings()
}

func (c *aiChatClient) callWithSettings(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	provider := normalizeChatProvider(settings.ChatProvider)
	if provider == "" {
		provider = c.provider
	}

	var (
		apiKey string
		base   string
		model  string
		label  string
	)

	switch provider {
	case ChatProviderOpenAI:
		apiKey = strings.TrimSpace(settings.OpenAIAPIKey)
		if apiKey == "" {
			apiKey = c.apiKey
		}
		if apiKey == "" {
			return aiChatResponse{}, ErrChatAPIKeyMissing
		}
		base = c.openAIBaseURL
		model = c.openAIModel
		label = "OpenAI"
	default:
		apiKey = c.apiKey
		base = c.ollamaBaseURL
		model = c.ollamaModel
		label = "Ollama"
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(base, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("build %s request: %w", label, err)
	}
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "mindwell/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("request %s chat: %w", label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("read %s response: %w", label, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return aiChatResponse{}, fmt.Errorf("%s returned %s", label, resp.Status)
		}
		return aiChatResponse{}, fmt.Errorf("decode %s response: %w", label, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("%s returned error: %s", label, errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("%s returned no choices", label)
	}

	return aiChatResponse{
		Content:          strings.TrimSpace(completion.Choices[0].Message.Content),
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}
