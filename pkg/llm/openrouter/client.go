package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/artem13815/finadvice/pkg/llm"
)

// Client is a minimal OpenRouter text-completions client. It uses /completions
// rather than /chat/completions so the hand-built prompt is sent as is.
type Client struct {
	apiKey string
	model  string
	http   *resty.Client
}

func New(apiKey, baseURL, model, appTitle, referer string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	if referer != "" {
		rc.SetHeader("HTTP-Referer", referer)
	}
	if appTitle != "" {
		rc.SetHeader("X-Title", appTitle)
	}
	return &Client{apiKey: apiKey, model: model, http: rc}
}

type completionsRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
}

type completionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type completionsResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, prompt string, p llm.Params) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openrouter api key is empty")
	}
	reqBody := completionsRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: p.MaxNewTokens,
	}
	temp := 0.0
	if p.DoSample {
		temp = p.Temperature
		reqBody.TopK = p.TopK
	}
	reqBody.Temperature = &temp

	var out completionsResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&out).
		SetError(&apiErr).
		Post("/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter http %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices returned by model")
	}
	return prompt + out.Choices[0].Text, nil
}

// Probe checks that OpenRouter serves the model id.
func (c *Client) Probe(ctx context.Context) error {
	if c.apiKey == "" {
		return errors.New("openrouter api key is empty")
	}
	resp, err := c.http.R().SetContext(ctx).Get("/models/" + c.model + "/endpoints")
	if err != nil {
		return fmt.Errorf("openrouter endpoints: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("openrouter: model %q unavailable (http %d)", c.model, resp.StatusCode())
	}
	return nil
}
