package llm

import "context"

// Params are the sampling parameters sent with every generation.
type Params struct {
	MaxNewTokens int
	DoSample     bool
	Temperature  float64
	TopK         int
}

// TextGenerator is the model handle used by the domain. Generate returns the
// full text, meaning the prompt followed by the model's continuation, so callers
// can cut out the assistant turn the same way regardless of backend. An empty
// continuation is a valid answer, not an error.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
	Model() string
}

// Prober is implemented by backends that can confirm the model is served.
type Prober interface {
	Probe(ctx context.Context) error
}
