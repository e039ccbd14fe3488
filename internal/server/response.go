package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const contentTypeJSON = "application/json; charset=utf-8"

// apiError is a client-facing failure: one HTTP status and one error code.
type apiError struct {
	Status int
	Code   string
}

func (e apiError) Error() string {
	return e.Code
}

var (
	errNotFound           = apiError{Status: http.StatusNotFound, Code: "not_found"}
	errInvalidBody        = apiError{Status: http.StatusBadRequest, Code: "invalid_body"}
	errInvalidCredentials = apiError{Status: http.StatusUnauthorized, Code: "invalid_credentials"}
	errMissingToken       = apiError{Status: http.StatusUnauthorized, Code: "missing_token"}
	errInvalidToken       = apiError{Status: http.StatusForbidden, Code: "invalid_token"}
	errInvalidContentType = apiError{Status: http.StatusBadRequest, Code: "invalid_content_type"}
	errMissingFileField   = apiError{Status: http.StatusBadRequest, Code: "missing_file_field"}
	errInvalidFile        = apiError{Status: http.StatusBadRequest, Code: "invalid_file"}
	errSaveFailed         = apiError{Status: http.StatusInternalServerError, Code: "save_failed"}
)

type errorResp struct {
	Error string `json:"error"`
}

// writeJSON writes v as the complete response body. No trailing newline
// is added, unlike json.Encoder.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"internal"}`)
	}
	h := w.Header()
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, e apiError) {
	writeJSON(w, e.Status, errorResp{Error: e.Code})
}

// notFoundHandler answers every route other than the two endpoints,
// including known paths requested with the wrong method.
func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	writeError(w, errNotFound)
}
