package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/artem13815/finadvice/api/http"
	"github.com/artem13815/finadvice/api/http/handlers"
	"github.com/artem13815/finadvice/pkg/advice"
	"github.com/artem13815/finadvice/pkg/health"
	"github.com/artem13815/finadvice/pkg/health/checkers"
	"github.com/artem13815/finadvice/pkg/history"
	"github.com/artem13815/finadvice/pkg/llm"
	"github.com/artem13815/finadvice/pkg/security/jwt"
)

const secret = "router-secret"

type echoModel struct{}

func (echoModel) Model() string { return "echo" }

func (echoModel) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	return prompt + "Save more.</s>", nil
}

type emptyHistory struct{}

func (emptyHistory) Get(context.Context, uuid.UUID) (history.Record, error) {
	return history.Record{}, history.ErrNotFound
}

func (emptyHistory) List(context.Context, int, int) ([]history.Record, error) {
	return []history.Record{}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newRoutes(model llm.TextGenerator, withHistory bool) apihttp.Routes {
	uc := advice.NewService(model, advice.Options{TrimTrailingTurn: true})
	r := apihttp.Routes{
		Advice: handlers.NewAdviceHandler(uc),
		Health: handlers.NewHealthHandler(health.NewService(checkers.NewModelChecker(uc))),
	}
	if withHistory {
		r.History = handlers.NewHistoryHandler(emptyHistory{})
		r.HistoryAuth = jwt.NewAuthMiddleware(secret, "finadvice", jwt.ScopeHistoryRead)
	}
	return r
}

func do(t *testing.T, r apihttp.Routes, req *http.Request) *http.Response {
	t.Helper()
	app := apihttp.NewApp(quietLogger())
	apihttp.Register(app, r)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAdviceRouteWithCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/financial-advice", strings.NewReader(`{"query":"tips?"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")

	resp := do(t, newRoutes(echoModel{}, false), req)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"response":"Save more."}`, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestReadyReflectsModel(t *testing.T) {
	resp := do(t, newRoutes(nil, false), httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = do(t, newRoutes(echoModel{}, false), httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, newRoutes(nil, false), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHistoryRoutesOnlyWhenEnabled(t *testing.T) {
	resp := do(t, newRoutes(echoModel{}, false), httptest.NewRequest(http.MethodGet, "/api/advice-history", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, newRoutes(echoModel{}, true), httptest.NewRequest(http.MethodGet, "/api/advice-history", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewGenerator(secret, "finadvice", time.Hour).Generate("ops", jwt.ScopeHistoryRead)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/advice-history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = do(t, newRoutes(echoModel{}, true), req)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestUnknownRouteIsJSON(t *testing.T) {
	resp := do(t, newRoutes(echoModel{}, false), httptest.NewRequest(http.MethodGet, "/nope", nil))
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}
