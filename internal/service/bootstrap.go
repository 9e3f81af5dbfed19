package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/config"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
)

// EnsureAdmins creates or promotes the allowlisted administrator accounts at
// startup. Freshly created accounts use the bootstrap password and are
// expected to change it.
func EnsureAdmins(ctx context.Context, cfg config.AdminConfig, bcryptCost int, users repository.UserRepository, logger *zap.Logger) error {
	for _, name := range cfg.Usernames {
		username := normalizeUsername(name)

		existing, err := users.GetByUsername(ctx, username)
		if err == nil {
			if existing.Role != domain.RoleAdmin {
				if err := users.SetRole(ctx, username, domain.RoleAdmin); err != nil {
					return err
				}
				logger.Info("promoted bootstrap admin", zap.String("username", username))
			}
			continue
		}
		if err != pgx.ErrNoRows {
			return err
		}

		hash, err := auth.HashPassword(cfg.BootstrapPassword, bcryptCost)
		if err != nil {
			return err
		}
		admin := &domain.User{
			Username:     username,
			PasswordHash: hash,
			Faction:      domain.FactionPolis,
			Role:         domain.RoleAdmin,
		}
		if err := users.Create(ctx, admin); err != nil {
			return err
		}
		logger.Info("created bootstrap admin", zap.String("username", username))
	}
	return nil
}
