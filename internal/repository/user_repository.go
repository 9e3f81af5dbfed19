package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// WarnBanWindow is the ban length applied when warns escalate.
const WarnBanWindow = 30 * 24 * time.Hour

// WarnBanThreshold is the warn count at which the automatic ban fires.
const WarnBanThreshold = 3

// WarnBanReason is recorded on escalation bans.
const WarnBanReason = "3 warnings"

// UserRepository defines persistence access for accounts. Usernames are stored
// and looked up lowercase; callers pass them already normalized.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, username string, faction domain.Faction, discord string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetBan(ctx context.Context, username string, ban domain.BanState) error
	SetMute(ctx context.Context, username string, mute domain.MuteState) error
	SetRole(ctx context.Context, username string, role domain.Role) error
	// AddWarn atomically increments the warn count, records the history entry
	// and applies the escalation ban once the threshold is reached. Concurrent
	// warns serialize on the row update, so exactly the warns at and beyond the
	// threshold observe an escalated count.
	AddWarn(ctx context.Context, username, reason string, now time.Time) (count int, autoBanned bool, err error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, password_hash, faction, discord, role,
       ban_active, ban_until, ban_reason, mute_until, mute_reason, warn_count,
       created_at, last_login`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password_hash, faction, discord, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Faction,
		user.Discord,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchOne(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) fetchOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	warns, err := r.listWarns(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Warns.History = warns
	return user, nil
}

func (r *userRepository) listWarns(ctx context.Context, userID string) ([]domain.Warn, error) {
	const query = `SELECT reason, created_at FROM user_warns WHERE user_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warns []domain.Warn
	for rows.Next() {
		var w domain.Warn
		if err := rows.Scan(&w.Reason, &w.At); err != nil {
			return nil, err
		}
		warns = append(warns, w)
	}
	return warns, rows.Err()
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, username string, faction domain.Faction, discord string) error {
	return r.execOne(ctx, `UPDATE users SET faction=$1, discord=$2 WHERE username=$3`,
		faction, discord, username)
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at, id)
}

func (r *userRepository) SetBan(ctx context.Context, username string, ban domain.BanState) error {
	return r.execOne(ctx, `UPDATE users SET ban_active=$1, ban_until=$2, ban_reason=$3 WHERE username=$4`,
		ban.Active, ban.Until, ban.Reason, username)
}

func (r *userRepository) SetMute(ctx context.Context, username string, mute domain.MuteState) error {
	return r.execOne(ctx, `UPDATE users SET mute_until=$1, mute_reason=$2 WHERE username=$3`,
		mute.Until, mute.Reason, username)
}

func (r *userRepository) SetRole(ctx context.Context, username string, role domain.Role) error {
	return r.execOne(ctx, `UPDATE users SET role=$1 WHERE username=$2`, role, username)
}

func (r *userRepository) AddWarn(ctx context.Context, username, reason string, now time.Time) (int, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var userID string
	var count int
	err = tx.QueryRow(ctx,
		`UPDATE users SET warn_count = warn_count + 1 WHERE username=$1 RETURNING id, warn_count`,
		username,
	).Scan(&userID, &count)
	if err != nil {
		return 0, false, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_warns (user_id, reason, created_at) VALUES ($1, $2, $3)`,
		userID, reason, now,
	); err != nil {
		return 0, false, err
	}

	autoBanned := false
	if count >= WarnBanThreshold {
		until := now.Add(WarnBanWindow)
		if _, err := tx.Exec(ctx,
			`UPDATE users SET ban_active=TRUE, ban_until=$1, ban_reason=$2 WHERE id=$3`,
			until, WarnBanReason, userID,
		); err != nil {
			return 0, false, err
		}
		autoBanned = true
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return count, autoBanned, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Faction,
		&user.Discord,
		&user.Role,
		&user.Ban.Active,
		&user.Ban.Until,
		&user.Ban.Reason,
		&user.Mute.Until,
		&user.Mute.Reason,
		&user.Warns.Count,
		&user.CreatedAt,
		&user.LastLogin,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
