package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// CommandRepository implements secondary.CommandRepository with SQLite.
type CommandRepository struct {
	db DBTX
}

var _ secondary.CommandRepository = (*CommandRepository)(nil)

// NewCommandRepository creates a new SQLite command audit repository.
func NewCommandRepository(db DBTX) *CommandRepository {
	return &CommandRepository{db: db}
}

// Insert appends a command to the audit log.
func (r *CommandRepository) Insert(ctx context.Context, command *secondary.CommandRecord) error {
	var channel sql.NullString
	if command.Channel != "" {
		channel = sql.NullString{String: command.Channel, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO commands (id, command, user_id, guild, channel, content, outcome, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		command.ID, command.Command, command.UserID, command.Guild, channel, command.Content, command.Outcome, command.CreatedAt.UTC(),
	)
	if err != nil {
		return classify(err, "failed to record command %s", command.ID)
	}
	return nil
}

// ListRecent returns the most recent commands for a guild, newest first.
func (r *CommandRepository) ListRecent(ctx context.Context, guild string, limit int) ([]*secondary.CommandRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, command, user_id, guild, channel, content, outcome, created_at FROM commands WHERE guild = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		guild, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	defer rows.Close()

	var commands []*secondary.CommandRecord
	for rows.Next() {
		var channel sql.NullString
		c := &secondary.CommandRecord{}
		if err := rows.Scan(&c.ID, &c.Command, &c.UserID, &c.Guild, &channel, &c.Content, &c.Outcome, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		c.Channel = channel.String
		commands = append(commands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commands: %w", err)
	}
	return commands, nil
}
