package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/campushub/resource-hub/internal/config"
	httptransport "github.com/campushub/resource-hub/internal/http"
)

const seedYAML = `
users:
  - id: u-owner
    email: rivera@campus.example.edu
    name: Dr. Rivera
    role: staff
    created_at: 2025-08-01T09:00:00Z
  - id: u-student
    email: sam@campus.example.edu
    name: Sam Student
    role: student
    created_at: 2025-08-02T09:00:00Z
resources:
  - id: r-room
    title: Study Room A
    description: Quiet room.
    category: study-room
    location: Library 2F
    capacity: 6
    owner_id: u-owner
    owner_name: Dr. Rivera
    created_at: 2025-08-03T09:00:00Z
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	cfg := config.Default()
	cfg.SeedFile = path
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func get(t *testing.T, base, path, userID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set(httptransport.UserIDHeader, userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewAppServesSeededData(t *testing.T) {
	drivers := map[string]func(t *testing.T, cfg *config.Config){
		"memory": func(*testing.T, *config.Config) {},
		"sqlite": func(t *testing.T, cfg *config.Config) {
			cfg.StorageDriver = config.DriverSQLite
			cfg.SQLiteDSN = "file:" + filepath.Join(t.TempDir(), "campushub.db") + "?_pragma=foreign_keys(1)"
		},
		"redis idempotency": func(t *testing.T, cfg *config.Config) {
			cfg.RedisAddr = miniredis.RunT(t).Addr()
		},
	}

	for name, configure := range drivers {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			configure(t, &cfg)

			app, err := newApp(context.Background(), cfg, discard())
			require.NoError(t, err)
			t.Cleanup(app.Close)

			server := httptest.NewServer(app.handler)
			t.Cleanup(server.Close)

			require.Equal(t, http.StatusOK, get(t, server.URL, "/healthz", "").StatusCode)
			require.Equal(t, http.StatusUnauthorized, get(t, server.URL, "/resources", "").StatusCode)

			resources := get(t, server.URL, "/resources", "u-student")
			require.Equal(t, http.StatusOK, resources.StatusCode)
			body, err := io.ReadAll(resources.Body)
			require.NoError(t, err)
			require.Contains(t, string(body), "Study Room A")

			metrics := get(t, server.URL, "/metrics", "")
			require.Equal(t, http.StatusOK, metrics.StatusCode)
			scraped, err := io.ReadAll(metrics.Body)
			require.NoError(t, err)
			require.True(t, strings.Contains(string(scraped), "go_goroutines"))
		})
	}
}

func TestNewAppFailures(t *testing.T) {
	t.Run("missing seed file", func(t *testing.T) {
		cfg := config.Default()
		cfg.SeedFile = filepath.Join(t.TempDir(), "absent.yaml")
		_, err := newApp(context.Background(), cfg, discard())
		require.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := config.Default()
		cfg.RedisAddr = addr
		_, err := newApp(context.Background(), cfg, discard())
		require.ErrorContains(t, err, "connect redis")
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.MetricsEnabled = false
		app, err := newApp(context.Background(), cfg, discard())
		require.NoError(t, err)
		t.Cleanup(app.Close)

		recorder := httptest.NewRecorder()
		app.handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusUnauthorized, recorder.Code, "without metrics the path falls through to the guarded API")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.StorageDriver = "postgres"
		_, err := newApp(context.Background(), cfg, discard())
		require.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, listener, time.Second, discard()) }()

	resp, err := http.Get("http://" + listener.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
