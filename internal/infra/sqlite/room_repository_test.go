package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/infra/sqlite"
)

func TestRoomRepository_SaveAndGet(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	repo := sqlite.NewRoomRepository(db)
	require.NoError(t, repo.InitTable(ctx))

	got, err := repo.GetRoom(ctx, "user1")
	require.NoError(t, err)
	assert.Nil(t, got)

	room := &domain.Room{UserID: "user1", Name: domain.RoomName("user1"), ChatID: "123@g.us"}
	require.NoError(t, repo.SaveRoom(ctx, room))

	got, err = repo.GetRoom(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, room, got)
}
