package httpapi

import (
	"net/http"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/services"
)

// setAuthCookies attaches both tokens as HttpOnly cookies. The cookies are the
// primary transport for browser clients; API clients can use the JSON body and
// the Authorization header instead.
func (s *Server) setAuthCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(s.config.AccessTokenValidityDuration.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(s.config.RefreshTokenValidityDuration.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
