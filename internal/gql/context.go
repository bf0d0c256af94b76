// SPDX-License-Identifier: Apache-2.0

package gql

import (
	"context"

	"github.com/ashley-desouza/graphql-auth-server/internal/session"
)

type contextKey struct{}

// WithHandle returns a context carrying the request's session handle.
// The HTTP layer sets this before executing a query.
func WithHandle(ctx context.Context, h session.Handle) context.Context {
	return context.WithValue(ctx, contextKey{}, h)
}

// HandleFrom extracts the session handle placed by WithHandle.
func HandleFrom(ctx context.Context) (session.Handle, bool) {
	h, ok := ctx.Value(contextKey{}).(session.Handle)
	return h, ok
}
