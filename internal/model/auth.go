package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const minAuthPasswordLength = 6

// Identity is the decoded caller attached to a request by the auth middleware.
type Identity struct {
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	IssuedAt time.Time `json:"issuedAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minAuthPasswordLength, 128)),
	)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required.Error("old password is required"), validation.Length(minAuthPasswordLength, 128)),
		validation.Field(&r.NewPassword, validation.Required.Error("password is required"), validation.Length(minAuthPasswordLength, 128)),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("User email is required."), is.Email),
	)
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("User email is required."), is.Email),
		validation.Field(&r.NewPassword, validation.Required.Error("password is required"), validation.Length(minAuthPasswordLength, 128)),
	)
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
