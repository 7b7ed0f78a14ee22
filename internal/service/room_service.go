package service

import (
	"context"
	"errors"

	"stockpos/internal/dto"
	"stockpos/internal/model"
	"stockpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomService interface {
	Create(ctx context.Context, storeID uuid.UUID, req dto.CreateRoomRequest) (*dto.RoomResponse, error)
	List(ctx context.Context, storeID uuid.UUID) ([]dto.RoomResponse, error)
	Update(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error
}

type roomService struct {
	repo repository.RoomRepository
}

func NewRoomService(repo repository.RoomRepository) RoomService {
	return &roomService{repo: repo}
}

func (s *roomService) Create(ctx context.Context, storeID uuid.UUID, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	room := &model.Room{
		StoreID: storeID,
		Name:    req.Name,
		ForSale: req.ForSale,
		Active:  true,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	resp := roomToResponse(room)
	return &resp, nil
}

func (s *roomService) List(ctx context.Context, storeID uuid.UUID) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomToResponse(&rooms[i]))
	}
	return out, nil
}

func (s *roomService) Update(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.scoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.ForSale != nil {
		room.ForSale = *req.ForSale
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	resp := roomToResponse(room)
	return &resp, nil
}

func (s *roomService) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.scoped(ctx, storeID, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *roomService) scoped(ctx context.Context, storeID, id uuid.UUID) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.StoreID != storeID {
		return nil, ErrRoomNotOwned
	}
	return room, nil
}

func roomToResponse(r *model.Room) dto.RoomResponse {
	return dto.RoomResponse{
		ID:      r.ID.String(),
		StoreID: r.StoreID.String(),
		Name:    r.Name,
		ForSale: r.ForSale,
		Active:  r.Active,
	}
}
