package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/artem13815/finadvice/pkg/history"
	"github.com/artem13815/finadvice/pkg/llm"
	"github.com/artem13815/finadvice/pkg/logging"
)

// UseCase answers advice requests against the loaded model.
type UseCase interface {
	// Available reports whether the model handle was loaded at startup.
	Available() bool
	Advise(ctx context.Context, req Request) (Result, error)
}

// Options are the fixed settings of the service.
type Options struct {
	Prompt           PromptBuilder
	Params           llm.Params
	TrimTrailingTurn bool
	// History is optional; when nil nothing is recorded.
	History history.Recorder
}

type service struct {
	model llm.TextGenerator
	opts  Options
	log   *logrus.Logger
}

// NewService takes the model handle, which is nil when loading failed.
func NewService(model llm.TextGenerator, opts Options) UseCase {
	return &service{model: model, opts: opts, log: logging.GetLogger()}
}

func (s *service) Available() bool { return s.model != nil }

func (s *service) Advise(ctx context.Context, req Request) (Result, error) {
	if s.model == nil {
		return Result{}, ErrModelUnavailable
	}
	if req.Query == "" {
		return Result{}, ErrBadRequest
	}

	prompt := s.opts.Prompt.Build(req)
	s.log.WithFields(logrus.Fields{
		"model":       s.model.Model(),
		"prompt_size": humanize.Bytes(uint64(len(prompt))),
		"has_context": len(req.UserData) > 0,
	}).Debug("generating advice")

	start := time.Now()
	full, err := s.model.Generate(ctx, prompt, s.opts.Params)
	elapsed := time.Since(start)
	if err != nil {
		s.log.WithError(err).WithField("elapsed", elapsed.String()).Error("Generation Error")
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	res := Result{
		Response: ExtractAssistant(full, s.opts.TrimTrailingTurn),
		Prompt:   prompt,
		Model:    s.model.Model(),
		Duration: elapsed,
	}
	s.log.WithFields(logrus.Fields{
		"elapsed":       elapsed.String(),
		"response_size": humanize.Bytes(uint64(len(res.Response))),
	}).Info("advice generated")

	s.record(ctx, req, res)
	return res, nil
}

// record stores the exchange; a failing store never fails the request.
func (s *service) record(ctx context.Context, req Request, res Result) {
	if s.opts.History == nil {
		return
	}
	rec := history.Record{
		ID:         uuid.New(),
		Query:      req.Query,
		UserData:   req.RawUserData,
		Prompt:     res.Prompt,
		Response:   res.Response,
		Model:      res.Model,
		DurationMs: res.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.opts.History.Create(ctx, rec); err != nil {
		s.log.WithError(err).Warn("failed to record advice history")
	}
}
