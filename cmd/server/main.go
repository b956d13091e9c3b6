// @title         finadvice API
// @version       1.0
// @description   Financial advice generated by a chat-tuned text-generation model.
// @BasePath      /api
// @schemes       http
// @host          localhost:5000
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT with scope history:read, as "Bearer <JWT>".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/artem13815/finadvice/docs"

	// internal imports
	apihttp "github.com/artem13815/finadvice/api/http"
	"github.com/artem13815/finadvice/api/http/handlers"
	"github.com/artem13815/finadvice/pkg/advice"
	"github.com/artem13815/finadvice/pkg/config"
	"github.com/artem13815/finadvice/pkg/health"
	"github.com/artem13815/finadvice/pkg/health/checkers"
	"github.com/artem13815/finadvice/pkg/history"
	"github.com/artem13815/finadvice/pkg/llm"
	"github.com/artem13815/finadvice/pkg/llm/loader"
	"github.com/artem13815/finadvice/pkg/logging"
	pgrepo "github.com/artem13815/finadvice/pkg/repository/postgres"
	"github.com/artem13815/finadvice/pkg/repository/sqlite"
	"github.com/artem13815/finadvice/pkg/security/jwt"
	"github.com/artem13815/finadvice/pkg/storage/postgres"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "json")
	log := logging.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The service keeps serving without a model; advice requests then get 500.
	model, err := loader.Load(ctx, cfg.Model)
	if err != nil {
		log.WithError(err).Error("Error loading model")
	}

	store, err := openHistory(ctx, cfg.History)
	if err != nil {
		log.Fatalf("history store: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	opts := advice.Options{
		Prompt: advice.PromptBuilder{
			DefaultCurrency: cfg.Prompt.DefaultCurrency,
			SanitizeMarkers: cfg.Prompt.SanitizeMarkers,
		},
		Params: llm.Params{
			MaxNewTokens: cfg.Generation.MaxNewTokens,
			DoSample:     cfg.Generation.DoSample,
			Temperature:  cfg.Generation.Temperature,
			TopK:         cfg.Generation.TopK,
		},
		TrimTrailingTurn: cfg.Generation.TrimTrailingTurn,
		History:          store,
	}
	adviceUC := advice.NewService(model, opts)

	// Health service: compose checkers
	probes := []health.Checker{checkers.NewModelChecker(adviceUC)}
	if store != nil {
		probes = append(probes, checkers.NewStoreChecker(cfg.History.Driver, store))
	}
	readiness := health.NewService(probes...)

	routes := apihttp.Routes{
		Advice: handlers.NewAdviceHandler(adviceUC),
		Health: handlers.NewHealthHandler(readiness),
	}
	switch {
	case store == nil:
	case cfg.Auth.JWTSecret == "":
		log.Warn("auth.jwt_secret is empty; advice history is recorded but not served")
	default:
		routes.History = handlers.NewHistoryHandler(history.NewService(store))
		routes.HistoryAuth = jwt.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, jwt.ScopeHistoryRead)
	}

	app := apihttp.NewApp(log)
	apihttp.Register(app, routes)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	addr := "0.0.0.0:" + cfg.Port
	log.Infof("HTTP server listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// openHistory returns nil when history is disabled.
func openHistory(ctx context.Context, cfg config.HistoryConfig) (history.Repository, error) {
	switch cfg.Driver {
	case config.HistoryPostgres:
		pool, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return pgrepo.NewHistoryRepository(pool), nil
	case config.HistorySQLite:
		repo, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, nil
	}
}
