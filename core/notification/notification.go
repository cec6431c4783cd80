package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification targets one Account, or every Account when RecipientID is zero
// (a broadcast).
type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id,omitempty"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewNotification struct {
	RecipientID int64  `json:"recipient"`
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message" validate:"required"`
	Type        string `json:"type"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	if nn.Type == "" {
		nn.Type = "info"
	}
	return validate.Struct(nn)
}

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// NotificationsForAccount returns the account's own notifications plus broadcasts.
		NotificationsForAccount(ctx context.Context, accountID int64) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id int64) (Notification, error)
		UpdateNotification(ctx context.Context, n Notification) (Notification, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Send(ctx context.Context, nn NewNotification) (Notification, error) {
	n := Notification{
		RecipientID: nn.RecipientID,
		Title:       nn.Title,
		Message:     nn.Message,
		Type:        nn.Type,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, n)
}

func (svc *Service) ForAccount(ctx context.Context, accountID int64) ([]Notification, error) {
	return svc.repo.NotificationsForAccount(ctx, accountID)
}

func (svc *Service) MarkRead(ctx context.Context, id int64) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	n.Read = true
	return svc.repo.UpdateNotification(ctx, n)
}
