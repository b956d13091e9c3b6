package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/artem13815/finadvice/pkg/config"
	"github.com/artem13815/finadvice/pkg/llm"
	"github.com/artem13815/finadvice/pkg/llm/ollama"
	"github.com/artem13815/finadvice/pkg/llm/openrouter"
	"github.com/artem13815/finadvice/pkg/llm/tgi"
	"github.com/artem13815/finadvice/pkg/logging"
)

const probeTimeout = 30 * time.Second

// New builds the backend client for cfg.Engine without contacting it.
func New(cfg config.ModelConfig) (llm.TextGenerator, error) {
	switch cfg.Engine {
	case config.EngineTGI:
		return tgi.New(cfg.BaseURL, cfg.Name, cfg.APIKey, cfg.Timeout), nil
	case config.EngineOllama:
		return ollama.New(cfg.BaseURL, cfg.Name, cfg.Timeout), nil
	case config.EngineOpenRouter:
		return openrouter.New(cfg.APIKey, cfg.BaseURL, cfg.Name, "finadvice", "", cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown model engine %q", cfg.Engine)
	}
}

// Load acquires the model handle once. On any failure it returns a nil handle
// together with the error; the caller keeps running without a model.
func Load(ctx context.Context, cfg config.ModelConfig) (llm.TextGenerator, error) {
	log := logging.GetLogger()
	log.Infof("Loading model %s via %s at %s", cfg.Name, cfg.Engine, cfg.BaseURL)

	gen, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if p, ok := gen.(llm.Prober); ok {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := p.Probe(pctx); err != nil {
			return nil, fmt.Errorf("probe model %s: %w", cfg.Name, err)
		}
	}
	if cfg.MaxConcurrency > 0 {
		gen = llm.NewGate(gen, cfg.MaxConcurrency)
	}
	log.Infof("Model %s loaded successfully", cfg.Name)
	return gen, nil
}
