package domain

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"roomcast/errors"
)

var validate = validator.New()

// Limits bounds user-supplied inputs. Values come from configuration;
// the hardened profile tightens them without touching this package.
type Limits struct {
	MaxDisplayNameLength int
	MaxRoomNameLength    int
	MaxMessageLength     int
}

type Validator struct {
	limits Limits
}

func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

func (v *Validator) DisplayName(name string) error {
	if err := validate.Var(name, fmt.Sprintf("required,max=%d", v.limits.MaxDisplayNameLength)); err != nil {
		return errors.NewValidation("displayName",
			fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxDisplayNameLength))
	}
	if !isNameSafe(name) {
		return errors.NewValidation("displayName", "contains forbidden characters")
	}
	return nil
}

func (v *Validator) RoomName(name string) error {
	if err := validate.Var(name, fmt.Sprintf("required,max=%d", v.limits.MaxRoomNameLength)); err != nil {
		return errors.NewValidation("room",
			fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxRoomNameLength))
	}
	if !isNameSafe(name) {
		return errors.NewValidation("room", "contains forbidden characters")
	}
	return nil
}

func (v *Validator) MessageBody(body string) error {
	if err := validate.Var(body, fmt.Sprintf("required,max=%d", v.limits.MaxMessageLength)); err != nil {
		return errors.NewValidation("message",
			fmt.Sprintf("must be non-empty and at most %d characters", v.limits.MaxMessageLength))
	}
	return nil
}

// isNameSafe restricts names to letters, digits, spaces, hyphens and
// underscores.
func isNameSafe(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == ' ', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
