// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// HasCode reports whether err is an oops error carrying the given code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}

// Error codes returned by the authentication core. The GraphQL layer maps
// these to stable client-facing messages; anything else is treated as an
// infrastructure failure.
const (
	CodeMissingField        = "AUTH_MISSING_FIELD"
	CodeEmailInUse          = "AUTH_EMAIL_IN_USE"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeStoreUnavailable    = "AUTH_STORE_UNAVAILABLE"
	CodeSessionAttachFailed = "AUTH_SESSION_ATTACH_FAILED"
)
