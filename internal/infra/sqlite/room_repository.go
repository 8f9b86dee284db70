package sqlite

import (
	"context"
	"database/sql"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetRoom(ctx context.Context, userID string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.QueryRowContext(ctx, `SELECT user_id, name, chat_id FROM rooms WHERE user_id = ?`, userID).
		Scan(&room.UserID, &room.Name, &room.ChatID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "reading room of %s", userID)
	}
	return &room, nil
}

func (r *RoomRepository) SaveRoom(ctx context.Context, room *domain.Room) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (user_id, name, chat_id) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET name = excluded.name, chat_id = excluded.chat_id
	`, room.UserID, room.Name, room.ChatID)
	return errors.Annotatef(err, "saving room of %s", room.UserID)
}

func (r *RoomRepository) InitTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			chat_id TEXT NOT NULL
		);
	`)
	return errors.Annotate(err, "creating rooms table")
}
