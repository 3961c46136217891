package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/tokens"
)

// Cookie names double as fallback token carriers for browser clients
// that cannot set an Authorization header.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Authenticator turns bearer tokens into request identities. The user is
// re-read from the store on every request, so deactivations and role
// changes apply immediately instead of at token expiry.
type Authenticator struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
}

func NewAuthenticator(r *repo.GormRepo, iss *tokens.Issuer) *Authenticator {
	return &Authenticator{Repo: r, Issuer: iss}
}

// RequireAuth gates a route on a valid access token.
func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := a.authenticate(c)
		if err != nil {
			return domain.HTTPError(err)
		}
		c.Set(ctxIdentity, ident)
		return next(c)
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// stays silent otherwise. Failure means anonymous, never an error.
func (a *Authenticator) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := a.authenticate(c)
		if err != nil {
			if !domain.IsAuthError(err) {
				logging.FromContext(c.Request().Context()).Warn("optional_auth_store_error", "error", err)
			}
			return next(c)
		}
		c.Set(ctxIdentity, ident)
		return next(c)
	}
}

// RequireRefresh gates the rotation route on a valid refresh token that
// is also the currently stored one. The raw token is attached for the
// rotation operation to consume.
func (a *Authenticator) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c, RefreshCookie)
		if raw == "" {
			return domain.HTTPError(domain.ErrUnauthenticated)
		}

		claims, err := a.Issuer.ParseRefresh(raw)
		if err != nil {
			return domain.HTTPError(err)
		}

		user, err := a.resolveUser(c.Request().Context(), claims.Subject)
		if err != nil {
			return domain.HTTPError(err)
		}

		if user.RefreshToken == nil || *user.RefreshToken != raw {
			return domain.HTTPError(domain.ErrTokenMismatch)
		}

		c.Set(ctxIdentity, identityOf(user))
		c.Set(ctxRefreshToken, raw)
		return next(c)
	}
}

func (a *Authenticator) authenticate(c echo.Context) (domain.Identity, error) {
	raw := bearerToken(c, AccessCookie)
	if raw == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims, err := a.Issuer.ParseAccess(raw)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := a.resolveUser(c.Request().Context(), claims.Subject)
	if err != nil {
		return domain.Identity{}, err
	}
	return identityOf(user), nil
}

func (a *Authenticator) resolveUser(ctx context.Context, subject string) (*models.User, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := a.Repo.FindByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.ErrUserGone
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}
	return user, nil
}

func identityOf(user *models.User) domain.Identity {
	return domain.Identity{
		ID:     user.ID,
		UUID:   user.UUID,
		Email:  user.Email,
		Role:   user.Role,
		Active: user.Active,
	}
}

// bearerToken picks the Authorization header first and falls back to the
// named cookie. A header that is present but not a bearer scheme counts
// as absent.
func bearerToken(c echo.Context, cookieName string) string {
	const prefix = "Bearer "
	if h := c.Request().Header.Get(echo.HeaderAuthorization); len(h) > len(prefix) &&
		strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
