package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mock-api/internal/config"
)

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		t.Run(lvl, func(t *testing.T) {
			logger, err := newLogger(lvl)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	_, err := newLogger("chatty")
	assert.Error(t, err)
}

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.UploadDir = filepath.Join(t.TempDir(), "a", "b", "mock-uploads")
	return cfg
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

	client := &http.Client{Timeout: 2 * time.Second}
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = client.Post("http://"+cfg.Addr()+"/login", "application/json",
			strings.NewReader(`{"username":"usertest01","password":"test123"}`))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	info, err := os.Stat(cfg.UploadDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	// The listener is closed.
	_, err = net.DialTimeout("tcp", cfg.Addr(), 500*time.Millisecond)
	assert.Error(t, err)
}

func TestRun_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	cfg := testConfig(t)
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

	err = run(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_UploadDirFailure(t *testing.T) {
	// A regular file where a parent directory should be.
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))

	cfg := testConfig(t)
	cfg.UploadDir = filepath.Join(parent, "uploads")

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create upload dir")
}
