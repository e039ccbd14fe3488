package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testUser      = "usertest01"
	testPass      = "test123"
	testToken     = "mock-token-usertest01"
	testUploadDir = "/tmp/mock-uploads"
)

type testEnv struct {
	fs      afero.Fs
	store   *UploadStore
	metrics *Metrics
	handler http.Handler
}

func testAuth() AuthConfig {
	return AuthConfig{Username: testUser, Password: testPass, Token: testToken}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := NewUploadStore(fs, testUploadDir)
	require.NoError(t, store.Ensure())

	metrics := NewMetrics()
	srv := New(Config{
		Addr:    "127.0.0.1:0",
		Auth:    testAuth(),
		Store:   store,
		Metrics: metrics,
	})
	return &testEnv{fs: fs, store: store, metrics: metrics, handler: srv.Handler()}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// multipartBody builds a form with one file part under field.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, token, filename string, content []byte) *http.Request {
	t.Helper()
	body, ctype := multipartBody(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ctype)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}
