package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db DBTX
}

var _ secondary.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertRole sets a user's role in a guild, replacing any previous role.
func (r *UserRepository) UpsertRole(ctx context.Context, user *secondary.UserRoleRecord) error {
	updatedAt := user.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, guild, role, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, guild) DO UPDATE SET role = excluded.role, updated_at = excluded.updated_at`,
		user.UserID, user.Guild, user.Role, updatedAt.UTC(),
	)
	if err != nil {
		return classify(err, "failed to set role for user %d in %s", user.UserID, user.Guild)
	}
	return nil
}

// GetRole retrieves a user's role in a guild.
func (r *UserRepository) GetRole(ctx context.Context, userID int64, guild string) (*secondary.UserRoleRecord, error) {
	var updatedAt sql.NullTime

	record := &secondary.UserRoleRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, guild, role, updated_at FROM users WHERE user_id = ? AND guild = ?",
		userID, guild,
	).Scan(&record.UserID, &record.Guild, &record.Role, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user %d has no role in %s", userID, guild)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user role: %w", err)
	}

	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}
	return record, nil
}

// DeleteRole removes a user's role in a guild.
func (r *UserRepository) DeleteRole(ctx context.Context, userID int64, guild string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM users WHERE user_id = ? AND guild = ?",
		userID, guild,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "user %d has no role in %s", userID, guild)
	}
	return nil
}
