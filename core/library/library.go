package library

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core"
)

var ErrBookNotFound = errors.New("book not found")

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewBook struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=0"`
}

func (nb *NewBook) Validate(validate *validator.Validate) error {
	nb.Title = core.CleanString(nb.Title)
	nb.Author = core.CleanString(nb.Author)
	nb.ISBN = core.CleanString(nb.ISBN)
	return validate.Struct(nb)
}

type UpdateBook struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=0"`
	Available *int   `json:"available" validate:"omitempty,gte=0"`
}

type (
	Repository interface {
		CreateBook(ctx context.Context, b Book) (Book, error)
		QueryAllBooks(ctx context.Context) ([]Book, error)
		GetBookByID(ctx context.Context, id int64) (Book, error)
		UpdateBook(ctx context.Context, b Book) (Book, error)
		DeleteBook(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nb NewBook) (Book, error) {
	now := time.Now().UTC()
	b := Book{
		Title:     nb.Title,
		Author:    nb.Author,
		ISBN:      nb.ISBN,
		Category:  nb.Category,
		Quantity:  nb.Quantity,
		Available: nb.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBook(ctx, b)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Book, error) {
	return svc.repo.QueryAllBooks(ctx)
}

func (svc *Service) Update(ctx context.Context, id int64, ub UpdateBook) (Book, error) {
	b, err := svc.repo.GetBookByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if ub.Title != "" {
		b.Title = core.CleanString(ub.Title)
	}
	if ub.Author != "" {
		b.Author = core.CleanString(ub.Author)
	}
	if ub.Category != "" {
		b.Category = ub.Category
	}
	if ub.Quantity != nil {
		b.Quantity = *ub.Quantity
	}
	if ub.Available != nil {
		b.Available = *ub.Available
	}
	b.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBook(ctx, b)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteBook(ctx, id)
}
