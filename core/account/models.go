package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusops/acerp/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

var AllRoles = []string{RoleAdmin, RoleFaculty, RoleStudent}

type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC

	// password reset; only the token's hash is ever stored
	ResetTokenHash    []byte    `json:"-"`
	ResetTokenExpires time.Time `json:"-"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Account) IsFaculty() bool { return a.Role == RoleFaculty }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=admin faculty student"`
}

func (na *NewAccount) Validate(validate *validator.Validate, svc *Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.checkUniqueness(na.Email)
}

// UpdateProfile defines what an authenticated Account may change about itself.
type UpdateProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (up *UpdateProfile) Validate(orig Account, validate *validator.Validate, svc *Service) error {
	up.Name = core.CleanString(up.Name)
	if up.Name == "" {
		up.Name = orig.Name
	}

	up.Email = core.CleanString(up.Email, true /* lower */)
	if up.Email == "" {
		up.Email = orig.Email
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.checkUniqueness(up.Email, orig)
}

type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}
