package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"commentd/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServer(t *testing.T) {
	for _, driver := range []string{config.StoreBadger, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			ln, err := net.Listen("tcp", "localhost:0")
			require.NoError(t, err)
			baseURL := "http://" + ln.Addr().String()

			cfg := config.Default()
			cfg.Addr = ln.Addr().String()
			cfg.Store.Driver = driver
			cfg.ShutdownTimeout = 2 * time.Second
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- runServer(ctx, cfg, logger, ln)
			}()

			resp, err := http.Get(baseURL + "/health")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, err = http.Post(baseURL+"/comments", "application/json",
				strings.NewReader(`{"task_id":3,"author":"eve","content":"ship it"}`))
			require.NoError(t, err)
			var created map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
			resp.Body.Close()
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, "eve", created["author"])

			resp, err = http.Get(baseURL + "/comments?task_id=3")
			require.NoError(t, err)
			var listed []map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
			resp.Body.Close()
			assert.Len(t, listed, 1)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("server did not shut down")
			}

			_, err = http.Get(baseURL + "/health")
			assert.Error(t, err)
		})
	}
}

func TestRunServerUnknownStore(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Store.Driver = "postgres"

	err = runServer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), ln)
	assert.Error(t, err)
}
