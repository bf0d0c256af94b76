// SPDX-License-Identifier: Apache-2.0

package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie. The __Host- prefix binds it to the
// origin host over HTTPS with Path=/.
const CookieName = "__Host-session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// normalize applies the defaults the __Host- prefix requires.
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HTTPOnly {
		o.HTTPOnly = true
	}
	return o
}

// SetCookie issues the session cookie to the client. The expiry matches the
// session's fixed server-side expiry.
func SetCookie(w http.ResponseWriter, id string, expiresAt time.Time, opts CookieOptions) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     opts.Path,
		Expires:  expiresAt,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
