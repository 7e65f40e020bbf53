package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/pkg/helpers"
	"github.com/platewise/recipebox/pkg/mailer"
)

// MinPasswordLength is enforced at the input boundary; stored hashes carry no
// length information.
const MinPasswordLength = 5

// EmailPublisher is the slice of the queue publisher the user service needs.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Repo        repository.UserRepository
	ResetTokens *helpers.ResetTokenManager
	Publisher   EmailPublisher
	Logger      *logrus.Logger

	AppName         string
	ResetURL        string
	MailSendEnabled bool
}

func NewUserService(repo repository.UserRepository, resetTokens *helpers.ResetTokenManager, pub EmailPublisher, logger *logrus.Logger, appName, resetURL string, mailEnabled bool) *UserService {
	return &UserService{
		Repo:            repo,
		ResetTokens:     resetTokens,
		Publisher:       pub,
		Logger:          logger,
		AppName:         appName,
		ResetURL:        resetURL,
		MailSendEnabled: mailEnabled,
	}
}

// NormalizeEmail lowercases the whole address. An empty address is an error,
// not a silently accepted blank.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", newValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return "", newValidationError("email", "must be a valid email")
	}
	return strings.ToLower(email), nil
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a regular user with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return s.createUser(ctx, in, false, false)
}

// CreateSuperuser creates a staff superuser. Both flags are forced true; the
// seed command rejects attempts to unset them before calling here.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*entity.User, error) {
	return s.createUser(ctx, RegisterInput{Email: email, Password: password}, true, true)
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, isStaff, isSuperuser bool) (*entity.User, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, newValidationError("password", "must be at least 5 characters long")
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:       email,
		Password:    hash,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		IsStaff:     isStaff,
		IsSuperuser: isSuperuser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, newValidationError("email", "already registered")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfileInput fields are optional; zero values leave the stored value
// untouched.
type UpdateProfileInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if in.Email != "" {
		email, err := NormalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return nil, newValidationError("password", "must be at least 5 characters long")
		}
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, newValidationError("email", "already registered")
		}
		return nil, err
	}
	return u, nil
}

// InitPasswordReset enqueues a reset email when the address is known. The
// caller always gets a nil error for unknown addresses so the endpoint can't
// be used to enumerate accounts.
func (s *UserService) InitPasswordReset(ctx context.Context, email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	u, err := s.Repo.GetByEmail(ctx, normalized)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithField("email", normalized).Info("password reset requested for unknown email")
		}
		return nil
	}
	token, exp, err := s.ResetTokens.Generate(u.ID)
	if err != nil {
		return err
	}
	if s.Publisher == nil || !s.MailSendEnabled {
		return nil
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":      u.FirstName,
			"AppName":   s.AppName,
			"ResetURL":  s.ResetURL,
			"UID":       u.ID,
			"Token":     token,
			"ExpiresIn": time.Until(exp).Round(time.Minute).String(),
		},
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to enqueue reset email")
		}
		return err
	}
	return nil
}

// ConfirmPasswordReset validates the uid/token pair from the reset link and
// stores the new password.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return newValidationError("new_password", "must be at least 5 characters long")
	}
	tokenUID, err := s.ResetTokens.Parse(token)
	if err != nil || tokenUID != uid {
		return newValidationError("token", "invalid or expired")
	}
	u, err := s.Repo.GetByID(ctx, uid)
	if err != nil {
		return newValidationError("token", "invalid or expired")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.Repo.Update(ctx, u)
}
