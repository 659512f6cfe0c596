package common

const (
	// AccessTokenCookieName is the cookie that carries the short-lived access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the cookie that carries the long-lived refresh token.
	RefreshTokenCookieName = "refreshToken"
)
