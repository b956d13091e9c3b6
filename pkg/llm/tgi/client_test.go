package tgi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvice/pkg/llm"
)

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"generated_text":"Save more."}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "TinyLlama/TinyLlama-1.1B-Chat-v1.0", "", 5*time.Second)
	out, err := c.Generate(context.Background(), "PROMPT ", llm.Params{MaxNewTokens: 512, DoSample: true, Temperature: 0.7, TopK: 50})
	require.NoError(t, err)

	assert.Equal(t, "PROMPT Save more.", out)
	assert.Equal(t, "PROMPT ", got.Inputs)
	assert.Equal(t, 512, got.Parameters.MaxNewTokens)
	assert.True(t, got.Parameters.DoSample)
	assert.InDelta(t, 0.7, got.Parameters.Temperature, 1e-9)
	assert.Equal(t, 50, got.Parameters.TopK)
	assert.False(t, got.Parameters.ReturnFullText)
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"Input validation error","error_type":"validation"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "m", "", time.Second).Generate(context.Background(), "p", llm.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Input validation error")
}

func TestGenerateEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"generated_text":""}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL, "m", "", time.Second).Generate(context.Background(), "p", llm.Params{})
	require.NoError(t, err)
	assert.Equal(t, "p", out)
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model_id":"TinyLlama/TinyLlama-1.1B-Chat-v1.0"}`))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, "TinyLlama/TinyLlama-1.1B-Chat-v1.0", "", time.Second).Probe(context.Background()))

	srv.Close()
	assert.Error(t, New(srv.URL, "m", "", time.Second).Probe(context.Background()))
}
