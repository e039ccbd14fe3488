// auth.go - Fixed-credential login and bearer token checks.
//
// The mock knows exactly one user and hands out exactly one token. The
// token issued by loginHandler is the same AuthConfig.Token that
// requireBearer accepts.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

const bearerPrefix = "Bearer "

// AuthConfig holds the single accepted credential and the token issued for it.
type AuthConfig struct {
	Username string
	Password string
	Token    string
}

type loginResp struct {
	Token string `json:"token"`
}

// credentials are the optional fields of a login body. A nil field was
// absent or not a JSON string.
type credentials struct {
	Username *string
	Password *string
}

// parseCredentials decodes a login body. An empty body is an empty object.
// Any JSON value other than an object yields no fields rather than an error.
func parseCredentials(raw []byte) (credentials, error) {
	var c credentials
	if len(raw) == 0 {
		return c, nil
	}
	if !utf8.Valid(raw) {
		return c, errors.New("body is not valid UTF-8")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return c, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return c, nil
	}
	c.Username = stringField(obj, "username")
	c.Password = stringField(obj, "password")
	return c, nil
}

func stringField(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func equalConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (a AuthConfig) matches(c credentials) bool {
	if c.Username == nil || c.Password == nil {
		return false
	}
	uOK := equalConstantTime(*c.Username, a.Username)
	pOK := equalConstantTime(*c.Password, a.Password)
	return uOK && pOK
}

// loginHandler handles POST /login.
func (a AuthConfig) loginHandler(m *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			m.recordLogin(errInvalidBody.Code)
			writeError(w, errInvalidBody)
			return
		}

		creds, err := parseCredentials(raw)
		if err != nil {
			m.recordLogin(errInvalidBody.Code)
			writeError(w, errInvalidBody)
			return
		}

		if !a.matches(creds) {
			m.recordLogin(errInvalidCredentials.Code)
			writeError(w, errInvalidCredentials)
			return
		}

		m.recordLogin("ok")
		writeJSON(w, http.StatusOK, loginResp{Token: a.Token})
	}
}

// bearerToken extracts the token from an Authorization header value.
// ok is false when the header does not use the Bearer scheme. A bare
// "Bearer" is an empty token: net/http strips the trailing space of
// "Bearer " before handlers see it.
func bearerToken(header string) (tok string, ok bool) {
	if header == strings.TrimSpace(bearerPrefix) {
		return "", true
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), true
}

// requireBearer rejects requests that do not carry the issued token:
// 401 missing_token without a Bearer header, 403 invalid_token otherwise.
func (a AuthConfig) requireBearer(m *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.recordUpload(errMissingToken.Code, 0)
			writeError(w, errMissingToken)
			return
		}
		if tok == "" || !equalConstantTime(tok, a.Token) {
			m.recordUpload(errInvalidToken.Code, 0)
			writeError(w, errInvalidToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}
