package domain

import "context"

// Room is a private group created for one member.
type Room struct {
	UserID string
	Name   string
	ChatID string
}

type RoomRepository interface {
	GetRoom(ctx context.Context, userID string) (*Room, error)
	SaveRoom(ctx context.Context, room *Room) error
}

type RoomCreator interface {
	CreateRoom(ctx context.Context, name string, userID string) (string, error)
}

// RoomName is the deterministic name of a member's private room.
func RoomName(userID string) string {
	return "sala-" + userID
}
