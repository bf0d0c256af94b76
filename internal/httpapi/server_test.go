// SPDX-License-Identifier: Apache-2.0

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashley-desouza/graphql-auth-server/internal/auth"
	"github.com/ashley-desouza/graphql-auth-server/internal/gql"
	"github.com/ashley-desouza/graphql-auth-server/internal/httpapi"
	"github.com/ashley-desouza/graphql-auth-server/internal/session"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := auth.NewMemoryUserRepository()
	hasher := auth.NewBcryptHasher()
	strategy, err := auth.NewLocalStrategy(users, hasher)
	require.NoError(t, err)
	serializer, err := auth.NewIdentitySerializer(users)
	require.NoError(t, err)
	service, err := auth.NewService(users, strategy, serializer, hasher)
	require.NoError(t, err)
	schema, err := gql.NewSchema(service)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewRouter(schema, session.NewMemoryStore(), session.CookieOptions{}, logger)
}

type gqlEnvelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, router *gin.Engine, cookie *http.Cookie, query string, vars map[string]any) (*httptest.ResponseRecorder, gqlEnvelope) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope gqlEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

// sessionCookie returns the last session cookie in the response, which is
// the one the client keeps when an attach rotates the ID mid-request.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("no session cookie issued")
	}
	return found
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestGraphQLEndpoint(t *testing.T) {
	const signupMutation = `mutation ($email: String, $password: String) {
		signup(email: $email, password: $password) { id email }
	}`
	const userQuery = `{ user { id email } }`

	t.Run("first request issues a session cookie", func(t *testing.T) {
		router := newTestRouter(t)

		rec, envelope := postGraphQL(t, router, nil, userQuery, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, envelope.Errors)

		c := sessionCookie(t, rec)
		assert.NotEmpty(t, c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
	})

	t.Run("signup then query on the same cookie resolves the user", func(t *testing.T) {
		router := newTestRouter(t)

		rec, envelope := postGraphQL(t, router, nil, signupMutation,
			map[string]any{"email": "dev@example.com", "password": "correct-horse"})
		require.Empty(t, envelope.Errors)
		cookie := sessionCookie(t, rec)

		_, envelope = postGraphQL(t, router, cookie, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Contains(t, string(envelope.Data["user"]), "dev@example.com")
	})

	t.Run("a known cookie is not reissued", func(t *testing.T) {
		router := newTestRouter(t)

		rec, _ := postGraphQL(t, router, nil, userQuery, nil)
		cookie := sessionCookie(t, rec)

		rec, _ = postGraphQL(t, router, cookie, userQuery, nil)
		for _, c := range rec.Result().Cookies() {
			assert.NotEqual(t, session.CookieName, c.Name)
		}
	})

	t.Run("sessions do not leak across cookies", func(t *testing.T) {
		router := newTestRouter(t)

		rec, envelope := postGraphQL(t, router, nil, signupMutation,
			map[string]any{"email": "dev@example.com", "password": "correct-horse"})
		require.Empty(t, envelope.Errors)
		_ = sessionCookie(t, rec)

		// A fresh client with no cookie stays anonymous.
		_, envelope = postGraphQL(t, router, nil, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Equal(t, "null", string(envelope.Data["user"]))
	})

	t.Run("login rotates the session cookie", func(t *testing.T) {
		router := newTestRouter(t)

		rec, envelope := postGraphQL(t, router, nil, signupMutation,
			map[string]any{"email": "dev@example.com", "password": "correct-horse"})
		require.Empty(t, envelope.Errors)
		before := sessionCookie(t, rec)

		const loginMutation = `mutation ($email: String, $password: String) {
			login(email: $email, password: $password) { id email }
		}`
		rec, envelope = postGraphQL(t, router, before, loginMutation,
			map[string]any{"email": "dev@example.com", "password": "correct-horse"})
		require.Empty(t, envelope.Errors)
		after := sessionCookie(t, rec)
		assert.NotEqual(t, before.Value, after.Value)

		// Only the rotated cookie resolves the identity.
		_, envelope = postGraphQL(t, router, after, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Contains(t, string(envelope.Data["user"]), "dev@example.com")
		_, envelope = postGraphQL(t, router, before, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Equal(t, "null", string(envelope.Data["user"]))
	})

	t.Run("a planted cookie value never carries an identity", func(t *testing.T) {
		router := newTestRouter(t)

		planted := &http.Cookie{Name: session.CookieName, Value: "attacker-chosen-id"}
		rec, envelope := postGraphQL(t, router, planted, signupMutation,
			map[string]any{"email": "victim@example.com", "password": "correct-horse"})
		require.Empty(t, envelope.Errors)

		// Replaying the planted value stays anonymous.
		_, envelope = postGraphQL(t, router, planted, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Equal(t, "null", string(envelope.Data["user"]))

		// The victim got a rotated, server-generated cookie that works.
		rotated := sessionCookie(t, rec)
		assert.NotEqual(t, planted.Value, rotated.Value)
		_, envelope = postGraphQL(t, router, rotated, userQuery, nil)
		require.Empty(t, envelope.Errors)
		assert.Contains(t, string(envelope.Data["user"]), "victim@example.com")
	})

	t.Run("resolver failures ride the envelope, not the status code", func(t *testing.T) {
		router := newTestRouter(t)

		rec, envelope := postGraphQL(t, router, nil, signupMutation,
			map[string]any{"email": "", "password": ""})
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, envelope.Errors)
		assert.Equal(t, "you must provide an email and password", envelope.Errors[0].Message)
	})

	t.Run("unreadable body is a 400", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
