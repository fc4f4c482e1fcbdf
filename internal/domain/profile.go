package domain

import (
	"errors"
	"time"
)

var (
	// ErrProfileNotFound indicates that the user profile is not found.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileAlreadyExists indicates that the user already has a profile.
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

// FiscalType describes how the user earns income.
type FiscalType string

// Supported fiscal types.
const (
	FiscalTypeSalaried  FiscalType = "SALARIED"
	FiscalTypeFreelance FiscalType = "FREELANCE"
)

// UserProfile holds user preferences. ID is the identity issued by the
// authentication provider.
type UserProfile struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"display_name"`
	Currency            string     `json:"currency"`
	FiscalType          FiscalType `json:"fiscal_type"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UpdateProfileParams holds the optional fields of a profile update.
type UpdateProfileParams struct {
	DisplayName         *string
	Currency            *string
	FiscalType          *FiscalType
	OnboardingCompleted *bool
}
