package llmclient

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

// OllamaClient calls a local Ollama server over its native chat API.
// See: https://github.com/ollama/ollama/blob/main/docs/api.md
type OllamaClient struct {
	http    *http.Client
	baseURL string
	model   string
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (o *OllamaClient) Name() string { return "Ollama:" + o.model }
func (o *OllamaClient) Close() error { return nil }

type ollamaChatReq struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}
type ollamaChatResp struct {
	Message ollamaMessage `json:"message"`
}

func (o *OllamaClient) Chat(ctx context.Context, system, user string, opts Options) (string, error) {
	var msgs []ollamaMessage
	if system != "" {
		msgs = append(msgs, ollamaMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, ollamaMessage{Role: "user", Content: user})

	body, _ := json.Marshal(ollamaChatReq{
		Model:    o.model,
		Messages: msgs,
		Stream:   false,
		Options:  ollamaOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("ollama: unexpected status %s: %s", resp.Status, string(b))
	}
	var out ollamaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Message.Content, nil
}

type ollamaTagsResp struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Verify pings /api/tags and checks the configured model is pulled. The
// installed tag may carry a ":latest" suffix, so match on prefix.
func (o *OllamaClient) Verify(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return "", err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: cannot reach ollama at %s: %v", ErrUnavailable, o.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: unexpected status %s from /api/tags", resp.Status)
	}
	var tags ollamaTagsResp
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return "", err
	}
	var names []string
	for _, m := range tags.Models {
		if strings.HasPrefix(m.Name, o.model) {
			return m.Name, nil
		}
		names = append(names, m.Name)
	}
	avail := strings.Join(names, ", ")
	if avail == "" {
		avail = "none"
	}
	return "", fmt.Errorf("model %q not found (available: %s); run `ollama pull %s`", o.model, avail, o.model)
}
