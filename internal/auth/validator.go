// Package auth holds credential handling: password hashing, session tokens
// and validation of the payloads that carry them.
package auth

import (
	"fmt"

	"github.com/Tyrowin/duochat/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// RegisterRequest is the payload of an account registration.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the payload of a login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate runs the struct tags of v and reports failures as
// errs.ErrInvalidRequest.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err)
	}
	return nil
}
