package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultMinPasswordLength is the shortest accepted password.
const DefaultMinPasswordLength = 6

// Credentials is the sign-up/sign-in form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validator checks credentials locally, before anything is sent to a store.
type Validator struct {
	validate          *validator.Validate
	minPasswordLength int
}

// NewValidator creates a Validator. minPasswordLength <= 0 uses the default.
func NewValidator(minPasswordLength int) *Validator {
	if minPasswordLength <= 0 {
		minPasswordLength = DefaultMinPasswordLength
	}

	return &Validator{
		validate:          validator.New(validator.WithRequiredStructEnabled()),
		minPasswordLength: minPasswordLength,
	}
}

// ValidateCredentials returns a *ValidationError listing every bad field, or
// nil. Email is trimmed before checking.
func (v *Validator) ValidateCredentials(creds Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)

	var fieldErrs []FieldError

	if err := v.validate.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate credentials: %w", err)
		}
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, toFieldError(fe))
		}
	}

	// length is checked separately so the minimum can come from config
	if creds.Password != "" {
		rule := fmt.Sprintf("min=%d", v.minPasswordLength)
		if err := v.validate.Var(creds.Password, rule); err != nil {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   "password",
				Message: fmt.Sprintf("must be at least %d characters", v.minPasswordLength),
			})
		}
	}

	if len(fieldErrs) > 0 {
		return &ValidationError{Errors: fieldErrs}
	}
	return nil
}

func toFieldError(fe validator.FieldError) FieldError {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return FieldError{Field: field, Message: "is required"}
	case "email":
		return FieldError{Field: field, Message: "is not valid"}
	default:
		return FieldError{Field: field, Message: fmt.Sprintf("failed %s", fe.Tag())}
	}
}
