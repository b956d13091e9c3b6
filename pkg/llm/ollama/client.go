package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/artem13815/finadvice/pkg/llm"
)

// Client calls an Ollama server in raw mode, so the prompt's own role markers
// reach the model untouched by any server-side chat template.
type Client struct {
	model string
	http  *resty.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		model: model,
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

type options struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Raw     bool    `json:"raw"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, prompt string, p llm.Params) (string, error) {
	opts := options{NumPredict: p.MaxNewTokens}
	if p.DoSample {
		opts.Temperature = p.Temperature
		opts.TopK = p.TopK
	}

	var out generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: c.model, Prompt: prompt, Raw: true, Stream: false, Options: opts}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode(), apiErr.Error)
	}
	return prompt + out.Response, nil
}

// Probe asks /api/show whether the model is pulled.
func (c *Client) Probe(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"model": c.model}).
		Post("/api/show")
	if err != nil {
		return fmt.Errorf("ollama show: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("ollama: model %q not found", c.model)
	}
	if resp.IsError() {
		return fmt.Errorf("ollama show http %d", resp.StatusCode())
	}
	return nil
}
