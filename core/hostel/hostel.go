package hostel

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
)

var ErrRoomNotFound = errors.New("room not found")

type Room struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	RoomNumber string    `json:"room_number"`
	Capacity   int       `json:"capacity"`
	Occupied   int       `json:"occupied"`
	Type       string    `json:"type"` // Boys | Girls
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewRoom struct {
	Name       string `json:"name" validate:"required"`
	RoomNumber string `json:"roomNumber" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,gt=0"`
	Occupied   int    `json:"occupied" validate:"gte=0"`
	Type       string `json:"type" validate:"required,oneof=Boys Girls"`
}

func (nr *NewRoom) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.RoomNumber = core.CleanString(nr.RoomNumber)
	return validate.Struct(nr)
}

type UpdateRoom struct {
	Name       string `json:"name"`
	RoomNumber string `json:"roomNumber"`
	Capacity   *int   `json:"capacity" validate:"omitempty,gt=0"`
	Occupied   *int   `json:"occupied" validate:"omitempty,gte=0"`
	Type       string `json:"type" validate:"omitempty,oneof=Boys Girls"`
}

type (
	Repository interface {
		CreateRoom(ctx context.Context, r Room) (Room, error)
		QueryAllRooms(ctx context.Context) ([]Room, error)
		GetRoomByID(ctx context.Context, id int64) (Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)
		DeleteRoom(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRoom) (Room, error) {
	now := time.Now().UTC()
	r := Room{
		Name:       nr.Name,
		RoomNumber: nr.RoomNumber,
		Capacity:   nr.Capacity,
		Occupied:   nr.Occupied,
		Type:       nr.Type,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateRoom(ctx, r)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Room, error) {
	return svc.repo.QueryAllRooms(ctx)
}

func (svc *Service) Update(ctx context.Context, id int64, ur UpdateRoom) (Room, error) {
	r, err := svc.repo.GetRoomByID(ctx, id)
	if err != nil {
		return Room{}, err
	}
	if ur.Name != "" {
		r.Name = core.CleanString(ur.Name)
	}
	if ur.RoomNumber != "" {
		r.RoomNumber = core.CleanString(ur.RoomNumber)
	}
	if ur.Capacity != nil {
		r.Capacity = *ur.Capacity
	}
	if ur.Occupied != nil {
		r.Occupied = *ur.Occupied
	}
	if ur.Type != "" {
		r.Type = ur.Type
	}
	r.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRoom(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteRoom(ctx, id)
}
