package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"github.com/artem13815/finadvice/api/http/handlers"
	"github.com/artem13815/finadvice/api/http/middleware"
	"github.com/artem13815/finadvice/api/http/presenter"
)

// Routes are the handlers mounted by Register. History and HistoryAuth are
// optional; the history routes exist only when both are set.
type Routes struct {
	Advice      *handlers.AdviceHandler
	Health      *handlers.HealthHandler
	History     *handlers.HistoryHandler
	HistoryAuth fiber.Handler
}

// NewApp builds the Fiber app with open CORS, panic recovery, request logging
// and JSON error bodies.
func NewApp(log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "finadvice",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return presenter.Error(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))
	app.Use(middleware.RequestLogger(log))
	return app
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	api := app.Group("/api")

	api.Get("/health", r.Health.Health)
	api.Get("/ready", r.Health.Ready)

	api.Post("/financial-advice", r.Advice.Advise)

	if r.History != nil && r.HistoryAuth != nil {
		h := api.Group("/advice-history", r.HistoryAuth)
		h.Get("/", r.History.List)
		h.Get("/:id", r.History.Get)
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
}
