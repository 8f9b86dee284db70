package usecase

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

// PrivateRoomUsecase creates one private group per member.
type PrivateRoomUsecase struct {
	rooms   domain.RoomRepository
	creator domain.RoomCreator
}

func NewPrivateRoomUsecase(rooms domain.RoomRepository, creator domain.RoomCreator) *PrivateRoomUsecase {
	return &PrivateRoomUsecase{rooms: rooms, creator: creator}
}

// Open returns the member's room, creating it only when none exists yet.
func (uc *PrivateRoomUsecase) Open(ctx context.Context, userID string) (*domain.Room, bool, error) {
	existing, err := uc.rooms.GetRoom(ctx, userID)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	name := domain.RoomName(userID)
	chatID, err := uc.creator.CreateRoom(ctx, name, userID)
	if err != nil {
		return nil, false, errors.Annotatef(err, "creating room %s", name)
	}
	room := &domain.Room{UserID: userID, Name: name, ChatID: chatID}
	if err := uc.rooms.SaveRoom(ctx, room); err != nil {
		return nil, false, errors.Trace(err)
	}
	return room, true, nil
}

func (uc *PrivateRoomUsecase) Execute(ctx context.Context, userID, name string) (string, error) {
	room, created, err := uc.Open(ctx, userID)
	if err != nil {
		return "", err
	}
	if !created {
		return fmt.Sprintf("🔒 %s, sua sala privada já existe: *%s*.", name, room.Name), nil
	}
	return fmt.Sprintf("🔒 Sala privada *%s* criada, %s! Use-a para enviar seus depósitos.", room.Name, name), nil
}
