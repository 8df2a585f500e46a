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

// RemoteChatClient 调用外部的 /chat 服务：{text, language} → {reply}。
type RemoteChatClient struct {
	endpoint string
	http     httpDoer
}

type remoteChatResponse struct {
	Reply string `json:"reply"`
}

// NewRemoteChatClient 构造远程对话客户端，timeout<=0 时使用默认超时。
func NewRemoteChatClient(endpoint string, timeout time.Duration) *RemoteChatClient {
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	return &RemoteChatClient{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (c *RemoteChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: defaultChatTimeout}
		return
	}
	c.http = client
}

func (c *RemoteChatClient) Reply(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request chat service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("chat service returned %s", resp.Status)
	}

	var decoded remoteChatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return strings.TrimSpace(decoded.Reply), nil
}
