package student

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidGender signals a gender value outside the closed set.
var ErrInvalidGender = errors.New("invalid gender")

// ID represents a store-assigned student identifier.
type ID = int64

// Gender is the closed set of genders accepted on the wire.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender converts a wire value into a Gender. Matching is case-sensitive.
func ParseGender(value string) (Gender, error) {
	switch g := Gender(value); g {
	case GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, value)
	}
}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// UnmarshalJSON rejects any value other than MALE or FEMALE.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: must be a string", ErrInvalidGender)
	}
	parsed, err := ParseGender(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Student is a persisted student record.
type Student struct {
	ID     ID     `json:"id,omitempty"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required"`
	Gender Gender `json:"gender" validate:"required,oneof=MALE FEMALE"`
}
