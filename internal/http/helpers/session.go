package helpers

import (
	"net/http"
	"strings"
	"time"
)

// SessionToken extrae el token de sesión: primero Authorization: Bearer,
// después la cookie. "" si no hay ninguno.
func SessionToken(r *http.Request, cookieName string) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if cookieName == "" {
		return ""
	}
	if ck, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// BuildCookie arma la cookie de sesión (HttpOnly, SameSite=Lax).
func BuildCookie(name, value string, secure bool, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

// BuildDeletionCookie expira la cookie de sesión.
func BuildDeletionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
}
