package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/config"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

const minPasswordLength = 6

// AuthService coordinates registration, login and profile self-service.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	now        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

// Register creates a new account with role "user" and issues a token.
func (s *AuthService) Register(ctx context.Context, username, password string, faction domain.Faction, discord string) (*domain.User, string, time.Time, error) {
	username = normalizeUsername(username)
	if !domain.ValidUsername(username) {
		return nil, "", time.Time{}, apperrors.NewValidationError(
			"username must be 3-20 characters of letters, digits or underscore", nil)
	}
	if len(password) < minPasswordLength {
		return nil, "", time.Time{}, apperrors.NewValidationError(
			"password must be at least 6 characters", nil)
	}
	if !domain.ValidFaction(faction) {
		return nil, "", time.Time{}, apperrors.NewValidationError(
			"unknown faction", map[string]any{"faction": faction})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewUsernameTaken(username)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Faction:      faction,
		Discord:      strings.TrimSpace(discord),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, "", time.Time{}, apperrors.NewUsernameTaken(username)
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login verifies credentials and issues a token. Unknown username and wrong
// password collapse into the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	now := s.now()
	if user.IsBanned(now) {
		details := map[string]any{"banned": true, "reason": user.Ban.Reason}
		if user.Ban.Until != nil {
			details["until"] = user.Ban.Until
		}
		return nil, "", time.Time{}, apperrors.NewDomainError(
			apperrors.CodeForbidden, "account is banned", 403, details)
	}

	// Best effort; login must not fail on a bookkeeping write.
	_ = s.users.UpdateLastLogin(ctx, user.ID, now)
	user.LastLogin = &now

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// UpdateProfile changes the caller's faction and discord handle. Other fields
// are not self-serviceable.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, faction domain.Faction, discord string) (*domain.User, error) {
	if faction == "" {
		faction = user.Faction
	}
	if !domain.ValidFaction(faction) {
		return nil, apperrors.NewValidationError("unknown faction", map[string]any{"faction": faction})
	}
	discord = strings.TrimSpace(discord)

	if err := s.users.UpdateProfile(ctx, user.Username, faction, discord); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Faction = faction
	user.Discord = discord
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
