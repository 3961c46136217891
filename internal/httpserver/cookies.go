package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/middleware"
	"github.com/Gigatchad/e-learning/internal/tokens"
)

func CreateCookie(name, value, path string, exp int64) *http.Cookie {
	expires := time.Unix(exp, 0)
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func setSessionCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(CreateCookie(middleware.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(CreateCookie(middleware.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))
}

func clearSessionCookies(c echo.Context) {
	c.SetCookie(DeleteCookie(middleware.AccessCookie, "/"))
	c.SetCookie(DeleteCookie(middleware.RefreshCookie, "/"))
}
