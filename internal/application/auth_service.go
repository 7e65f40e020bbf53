package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/pkg/helpers"
)

// DefaultRememberMeTTL is the session lifetime when the client asks to be
// remembered: 1,209,600 seconds, two weeks. Deployments may override it via
// configuration.
const DefaultRememberMeTTL = 14 * 24 * time.Hour

// SessionStore holds server-side session state keyed by an opaque session id.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (sid string, err error)
	Get(ctx context.Context, sid string) (userID string, err error)
	Delete(ctx context.Context, sid string) error
}

// TokenStore holds opaque API tokens. Mint is get-or-create per user.
type TokenStore interface {
	Mint(ctx context.Context, userID string) (token string, err error)
	Resolve(ctx context.Context, token string) (userID string, err error)
}

type AuthService struct {
	Repo        repository.UserRepository
	Sessions    SessionStore
	Tokens      TokenStore
	Logger      *logrus.Logger
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, sessions SessionStore, tokens TokenStore, logger *logrus.Logger, sessionTTL, rememberTTL time.Duration) *AuthService {
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberMeTTL
	}
	return &AuthService{Repo: repo, Sessions: sessions, Tokens: tokens, Logger: logger, SessionTTL: sessionTTL, RememberTTL: rememberTTL}
}

// Authenticate validates email/password and returns the user.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByEmail(ctx, normalized)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login establishes a server-side session and returns the session id along
// with the cookie Max-Age in seconds: 1209600 for remember-me, 0 for a
// session-only cookie.
func (s *AuthService) Login(ctx context.Context, u *entity.User, rememberMe bool) (sid string, cookieMaxAge int, err error) {
	ttl := s.SessionTTL
	cookieMaxAge = 0
	if rememberMe {
		ttl = s.RememberTTL
		cookieMaxAge = int(s.RememberTTL.Seconds())
	}
	sid, err = s.Sessions.Create(ctx, u.ID, ttl)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("session create failed")
		}
		return "", 0, err
	}
	return sid, cookieMaxAge, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Sessions.Delete(ctx, sid)
}

// MintToken exchanges credentials for an opaque API token. Repeated calls for
// the same user return the same token.
func (s *AuthService) MintToken(ctx context.Context, email, password string) (string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.Tokens.Mint(ctx, u.ID)
}
