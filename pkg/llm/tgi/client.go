package tgi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/artem13815/finadvice/pkg/llm"
	"github.com/artem13815/finadvice/pkg/logging"
)

// Client talks to a HuggingFace text-generation-inference server.
type Client struct {
	model string
	http  *resty.Client
}

func New(baseURL, model, apiKey string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	return &Client{model: model, http: rc}
}

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	DoSample       bool    `json:"do_sample"`
	Temperature    float64 `json:"temperature,omitempty"`
	TopK           int     `json:"top_k,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

type infoResponse struct {
	ModelID string `json:"model_id"`
}

func (c *Client) Model() string { return c.model }

// Generate asks for the continuation only and prepends the prompt itself, so the
// result does not depend on how the server treats return_full_text.
func (c *Client) Generate(ctx context.Context, prompt string, p llm.Params) (string, error) {
	req := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens: p.MaxNewTokens,
			DoSample:     p.DoSample,
		},
	}
	if p.DoSample {
		req.Parameters.Temperature = p.Temperature
		req.Parameters.TopK = p.TopK
	}

	var out generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/generate")
	if err != nil {
		return "", fmt.Errorf("tgi generate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("tgi http %d: %s", resp.StatusCode(), firstNonEmpty(apiErr.Error, resp.String()))
	}
	return prompt + out.GeneratedText, nil
}

// Probe reads /info and warns when the server hosts a different model than configured.
func (c *Client) Probe(ctx context.Context) error {
	var info infoResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&info).Get("/info")
	if err != nil {
		return fmt.Errorf("tgi info: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("tgi info http %d", resp.StatusCode())
	}
	if info.ModelID != "" && info.ModelID != c.model {
		logging.GetLogger().Warnf("tgi serves %q while %q is configured", info.ModelID, c.model)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
