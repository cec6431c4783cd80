package timetable

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
)

var ErrEntryNotFound = errors.New("timetable entry not found")

type Entry struct {
	ID           int64     `json:"id"`
	Day          string    `json:"day"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Subject      string    `json:"subject"`
	ClassOrBatch string    `json:"class_or_batch"`
	Teacher      string    `json:"teacher"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type NewEntry struct {
	Day          string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	ClassOrBatch string `json:"classOrBatch" validate:"required"`
	Teacher      string `json:"teacher" validate:"required"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Subject = core.CleanString(ne.Subject)
	ne.Teacher = core.CleanString(ne.Teacher)
	return validate.Struct(ne)
}

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		QueryAllEntries(ctx context.Context) ([]Entry, error)
		DeleteEntry(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	now := time.Now().UTC()
	e := Entry{
		Day:          ne.Day,
		StartTime:    ne.StartTime,
		EndTime:      ne.EndTime,
		Subject:      ne.Subject,
		ClassOrBatch: ne.ClassOrBatch,
		Teacher:      ne.Teacher,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateEntry(ctx, e)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Entry, error) {
	return svc.repo.QueryAllEntries(ctx)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteEntry(ctx, id)
}
