// SPDX-License-Identifier: Apache-2.0

// Package httpapi serves the GraphQL endpoint over HTTP. Everything here is
// transport: the authentication semantics live in the auth package, and the
// only state this layer owns is the session cookie.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/ashley-desouza/graphql-auth-server/internal/session"
)

// graphqlRequest is the standard GraphQL-over-HTTP POST body.
type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// NewRouter builds the gin engine: POST /graphql behind the session
// middleware, plus a health probe.
func NewRouter(schema graphql.Schema, store session.Store, cookieOpts session.CookieOptions, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gqlGroup := router.Group("/")
	gqlGroup.Use(SessionMiddleware(store, cookieOpts))
	gqlGroup.POST("/graphql", graphqlHandler(schema))

	return router
}

// graphqlHandler executes one GraphQL request. Resolver failures are part
// of the GraphQL response envelope, not HTTP errors; only an unreadable
// body is a 400.
func graphqlHandler(schema graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graphqlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
				{"message": "invalid request body"},
			}})
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.Request.Context(),
		})

		c.JSON(http.StatusOK, result)
	}
}
