package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"

	"github.com/rubiojr/explore/pkg/explore"
)

// sessionToken returns the CSRF token bound to the request's cookie, minting
// and setting a new one when the cookie is missing.
func sessionToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(explore.CSRFCookie); err == nil && c.Value != "" {
		return c.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     explore.CSRFCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// validToken reports whether the CSRF header matches the session cookie.
func validToken(r *http.Request) bool {
	header := r.Header.Get(explore.CSRFHeader)
	c, err := r.Cookie(explore.CSRFCookie)
	if err != nil || header == "" || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(c.Value)) == 1
}
