// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashley-desouza/graphql-auth-server/internal/gql"
	"github.com/ashley-desouza/graphql-auth-server/internal/session"
)

const handleKey = "sessionHandle"

// RequestLogger logs one line per request with a generated request ID.
// Bodies are never logged; credentials travel in them.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("requestID", requestID)

		c.Next()

		logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// SessionMiddleware binds each request to a session handle. An incoming
// cookie names the session; otherwise a fresh ID is issued. The session
// record itself is only written when an identity is attached, and the
// attach rotates the ID and reissues the cookie, so an identity never ends
// up under a client-supplied cookie value.
func SessionMiddleware(store session.Store, opts session.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if cookie, err := c.Request.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			id = cookie.Value
		} else {
			fresh, err := session.GenerateID()
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			id = fresh
			session.SetCookie(c.Writer, id, time.Now().Add(session.DefaultExpiry), opts)
		}

		handle, err := session.NewHandle(store, id)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		handle.OnRotate(func(newID string) {
			session.SetCookie(c.Writer, newID, time.Now().Add(session.DefaultExpiry), opts)
		})

		c.Set(handleKey, handle)
		c.Request = c.Request.WithContext(gql.WithHandle(c.Request.Context(), handle))
		c.Next()
	}
}
