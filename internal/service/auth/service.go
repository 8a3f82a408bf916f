package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/health-api/pkg/auth"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("too many failed attempts, please try again later")
	ErrAuthDisabled       = errors.New("authentication is not configured")
)

const (
	// Subject is the only principal: the owner of the records.
	Subject = "owner"

	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type AuthService interface {
	IssueToken(ctx context.Context, client, password string) (*Token, error)
	ValidateToken(token string) (*auth.Claims, error)
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	passwordHash string
	hasher       security.PasswordHasher
	jwtSvc       auth.JWTService
	attempts     *cache.Cache
	logger       *logger.Logger
}

// NewService checks passwords against passwordHash, a bcrypt hash. Failed
// attempts are counted per client and reset after the lockout window.
func NewService(passwordHash string, jwtSvc auth.JWTService, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		passwordHash: passwordHash,
		hasher:       security.NewBcryptHasher(0),
		jwtSvc:       jwtSvc,
		attempts:     cache.New(lockoutDuration, 2*lockoutDuration),
		logger:       log.With("service", "auth"),
	}
}

func (s *Service) IssueToken(ctx context.Context, client, password string) (*Token, error) {
	if s.passwordHash == "" || s.jwtSvc == nil {
		return nil, apperrors.NewConfiguration("authentication is not configured. Set HEALTH_AUTH_PASSWORD_HASH and HEALTH_JWT_SECRET", ErrAuthDisabled)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n, ok := s.attempts.Get(client); ok && n.(int) >= maxLoginAttempts {
		return nil, &apperrors.AppError{Code: apperrors.ErrRateLimited, Message: ErrLockedOut.Error(), Err: ErrLockedOut}
	}

	if err := s.hasher.Compare(s.passwordHash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			s.logger.Error(err, "configured password hash is unusable")
			return nil, apperrors.NewConfiguration("HEALTH_AUTH_PASSWORD_HASH is not a valid bcrypt hash", err)
		}
		if _, incErr := s.attempts.IncrementInt(client, 1); incErr != nil {
			s.attempts.Set(client, 1, cache.DefaultExpiration)
		}
		s.logger.Warn(err, "failed login attempt", "client", client)
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	s.attempts.Delete(client)

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(Subject)
	if err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to generate token: %w", err))
	}
	return &Token{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) ValidateToken(token string) (*auth.Claims, error) {
	if s.jwtSvc == nil {
		return nil, ErrAuthDisabled
	}
	return s.jwtSvc.ValidateToken(token)
}
