package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/hash"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/mykafka"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/tokens"
)

// EventPublisher is what the service needs from the kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	// Events may be nil; lifecycle events are then skipped entirely.
	Events EventPublisher
}

// AuthResult is returned by every lifecycle operation that ends in an
// authenticated state.
type AuthResult struct {
	User models.UserView
	Pair *tokens.Pair
}

// Register creates a student account and logs it in. The email lookup
// catches most duplicates with a friendly error; the unique index wins
// any race the lookup misses.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "email", email)

	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		l.Warn("register_failed", "status", 400, "reason", "email taken")
		return nil, domain.ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_failed", "status", 500, "reason", "lookup error", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		UUID:         uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleStudent,
		Active:       true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			l.Warn("register_failed", "status", 400, "reason", "email taken on insert")
			return nil, domain.ErrConflict
		}
		l.Error("register_failed", "status", 500, "reason", "db error", "error", err)
		return nil, err
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "session start", "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.EventUserRegistered, user)
	l.Info("register_success", "status", 201, "user", user.UUID.String())
	return result, nil
}

// Login checks credentials and replaces whatever session existed. The
// wrong-password and unknown-email paths share one error so callers
// cannot probe which of the two it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !user.Active {
		l.Warn("login_failed", "status", 401, "reason", "account deactivated", "user", user.UUID.String())
		return nil, domain.ErrAccountDeactivated
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad password", "user", user.UUID.String())
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "session start", "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.EventUserLoggedIn, user)
	l.Info("login_success", "status", 200, "user", user.UUID.String())
	return result, nil
}

// Refresh exchanges a presented refresh token for a fresh pair. Rotation
// is strict: the presented token must be the stored one, and the swap is
// a conditional update, so of two concurrent refreshes exactly one wins
// and the loser gets a mismatch.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Issuer.ParseRefresh(presented)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad token", "error", err)
		return nil, err
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad subject")
		return nil, domain.ErrInvalidToken
	}

	user, err := s.Repo.FindByUUID(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user gone", "user", subject.String())
			return nil, domain.ErrUserGone
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if !user.Active {
		l.Warn("refresh_failed", "status", 401, "reason", "account deactivated", "user", user.UUID.String())
		return nil, domain.ErrAccountDeactivated
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		l.Warn("refresh_failed", "status", 401, "reason", "token superseded", "user", user.UUID.String())
		return nil, domain.ErrTokenMismatch
	}

	pair, err := s.Issuer.NewPair(user.UUID)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot issue pair", "error", err)
		return nil, err
	}

	// the conditional update is the real guard: a concurrent refresh that
	// got here first already swapped the stored value, and this one loses
	if err := s.Repo.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrTokenMismatch) {
			l.Warn("refresh_failed", "status", 401, "reason", "lost rotation race", "user", user.UUID.String())
			return nil, domain.ErrTokenMismatch
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.EventTokenRefreshed, user)
	l.Info("refresh_success", "status", 200, "user", user.UUID.String())
	return &AuthResult{User: user.View(), Pair: pair}, nil
}

// Logout clears the stored refresh token. Calling it twice is fine.
func (s *AuthService) Logout(ctx context.Context, ident domain.Identity) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user", ident.UUID.String())

	if err := s.Repo.ClearRefreshToken(ctx, ident.ID); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	s.publishIdent(ctx, mykafka.EventUserLoggedOut, ident)
	l.Info("logout_success", "status", 200)
	return nil
}

// ChangePassword re-hashes after verifying the current password. The
// stored refresh token is cleared in the same statement, so every device
// has to log in again with the new password. No tokens are issued here.
func (s *AuthService) ChangePassword(ctx context.Context, ident domain.Identity, current, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user", ident.UUID.String())

	user, err := s.Repo.FindByUUID(ctx, ident.UUID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("change_password_failed", "status", 401, "reason", "user gone")
			return domain.ErrUserGone
		}
		l.Error("change_password_failed", "status", 500, "error", err)
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, current) {
		l.Warn("change_password_failed", "status", 401, "reason", "current password mismatch")
		return domain.ErrInvalidCredentials
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		l.Error("change_password_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return err
	}

	if err := s.Repo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		l.Error("change_password_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, mykafka.EventPasswordChanged, user)
	l.Info("change_password_success", "status", 200)
	return nil
}

// SetUserActive is the admin switch behind the account-status endpoint.
func (s *AuthService) SetUserActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.set_active", "user", id.String(), "active", active)

	user, err := s.Repo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("set_active_failed", "status", 404, "reason", "no such user")
		} else {
			l.Error("set_active_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("set_active_success", "status", 200)
	return user, nil
}

// startSession issues a pair and overwrites the stored refresh token,
// superseding any previous session.
func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.Issuer.NewPair(user.UUID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &AuthResult{User: user.View(), Pair: pair}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	s.publishEvent(ctx, eventType, user.UUID.String(), user.Email)
}

func (s *AuthService) publishIdent(ctx context.Context, eventType string, ident domain.Identity) {
	s.publishEvent(ctx, eventType, ident.UUID.String(), ident.Email)
}

// publishEvent is best-effort: a broker outage must never fail the
// request that triggered the event.
func (s *AuthService) publishEvent(ctx context.Context, eventType, userUUID, email string) {
	if s.Events == nil {
		return
	}

	event := mykafka.AuthEvent{
		Type:   eventType,
		UserID: userUUID,
		Email:  email,
		At:     time.Now().UTC(),
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Events.PublishEvent(pctx, mykafka.TopicUserEvents, userUUID, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "user", userUUID, "error", err)
	}
}
