package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaeljc/cpq/internal/config"
	"github.com/rafaeljc/cpq/internal/observability"
)

func testConfig() *config.ObservabilityConfig {
	// Non-default paths make sure the server honors the configuration.
	return &config.ObservabilityConfig{
		Enabled:       true,
		Port:          "0",
		Timeout:       time.Second,
		LivenessPath:  "/alive",
		ReadinessPath: "/check-deps",
		MetricsPath:   "/telemetry",
	}
}

func healthy(name string) observability.Checker {
	return observability.CheckerFunc{ComponentName: name, Fn: func(context.Context) error { return nil }}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func readinessStatus(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Status map[string]string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Status
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	t.Run("Liveness should return 200 OK on custom path", func(t *testing.T) {
		t.Parallel()

		srv := observability.NewServer(nil, testConfig())
		rr := get(t, srv.Handler(), "/alive")

		assert.Equal(t, http.StatusOK, rr.Code)
		body, _ := io.ReadAll(rr.Body)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("Readiness should return 200 when every checker passes", func(t *testing.T) {
		t.Parallel()

		srv := observability.NewServer(nil, testConfig(), healthy("catalog"), healthy("postgres"))
		rr := get(t, srv.Handler(), "/check-deps")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]string{"catalog": "up", "postgres": "up"}, readinessStatus(t, rr))
	})

	t.Run("Readiness should return 503 and log when a checker fails", func(t *testing.T) {
		t.Parallel()

		var logBuffer bytes.Buffer
		failing := observability.CheckerFunc{
			ComponentName: "postgres",
			Fn:            func(context.Context) error { return errors.New("connection refused") },
		}
		srv := observability.NewServer(slog.New(slog.NewTextHandler(&logBuffer, nil)), testConfig(), healthy("catalog"), failing)
		rr := get(t, srv.Handler(), "/check-deps")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		status := readinessStatus(t, rr)
		assert.Equal(t, "up", status["catalog"])
		assert.Equal(t, "down: connection refused", status["postgres"])
		assert.Contains(t, logBuffer.String(), "health probe failed")
	})

	t.Run("Readiness should enforce the configured timeout", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Timeout = 50 * time.Millisecond
		slow := observability.CheckerFunc{
			ComponentName: "slow",
			Fn: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}
		srv := observability.NewServer(nil, cfg, slow)
		rr := get(t, srv.Handler(), "/check-deps")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, readinessStatus(t, rr)["slow"], "deadline exceeded")
	})

	t.Run("Metrics should be exposed on custom path", func(t *testing.T) {
		t.Parallel()

		observability.CatalogEntities.WithLabelValues("options").Set(3)

		srv := observability.NewServer(nil, testConfig())
		rr := get(t, srv.Handler(), "/telemetry")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "go_goroutines")
		assert.Contains(t, rr.Body.String(), "cpq_catalog_entities")
	})
}

func TestServer_Shutdown_NotStarted(t *testing.T) {
	t.Parallel()

	srv := observability.NewServer(nil, testConfig())
	assert.NoError(t, srv.Shutdown(context.Background()))
}
