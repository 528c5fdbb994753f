package shared

import (
	"net/http"
	"time"
)

const (
	// AccessTokenCookie carries the session token.
	AccessTokenCookie = "access_token"

	// AccessTokenHeader echoes a freshly issued token for clients that do not keep cookies.
	AccessTokenHeader = "X-Access-Token"
)

// SetAccessToken writes token as an HttpOnly cookie expiring at expiresAt and
// mirrors it in the AccessTokenHeader.
func SetAccessToken(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(AccessTokenHeader, token)
}

// ClearAccessToken expires the session cookie.
func ClearAccessToken(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
