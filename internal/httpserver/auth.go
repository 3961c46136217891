package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/middleware"
	"github.com/Gigatchad/e-learning/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func sessionPayload(res *service.AuthResult) echo.Map {
	return echo.Map{
		"user":          res.User,
		"access_token":  res.Pair.AccessToken,
		"refresh_token": res.Pair.RefreshToken,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("register_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return domain.HTTPError(err)
	}

	setSessionCookies(c, res.Pair)
	return c.JSON(http.StatusCreated, sessionPayload(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("login_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return domain.HTTPError(err)
	}

	setSessionCookies(c, res.Pair)
	return c.JSON(http.StatusOK, sessionPayload(res))
}

// Refresh runs behind RequireRefresh, which has already verified the
// presented token and its match against the stored one. The service call
// re-checks through the CAS rotation, so a token superseded after the
// middleware ran still fails.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	presented := middleware.RefreshTokenFrom(c)
	if presented == "" {
		return domain.HTTPError(domain.ErrUnauthenticated)
	}

	res, err := h.Svc.Refresh(ctx, presented)
	if err != nil {
		return domain.HTTPError(err)
	}

	setSessionCookies(c, res.Pair)
	return c.JSON(http.StatusOK, sessionPayload(res))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.HTTPError(domain.ErrUnauthenticated)
	}

	clearSessionCookies(c)
	if err := h.Svc.Logout(ctx, ident); err != nil {
		return domain.HTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.HTTPError(domain.ErrUnauthenticated)
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("password_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("password_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.ChangePassword(ctx, ident, req.CurrentPassword, req.NewPassword); err != nil {
		return domain.HTTPError(err)
	}

	// every stored session is gone now, drop this client's cookies too
	clearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
