package dto

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/ipede/user-manager-service/internal/domain"
)

var (
	capitalLetters   = regexp.MustCompile(`[A-Z]`)
	lowercaseLetters = regexp.MustCompile(`[a-z]`)
	digits           = regexp.MustCompile(`[0-9]`)
)

// AccountRequest is the credential pair of sign-in and sign-up.
type AccountRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate checks the credentials before they reach the core.
func (r AccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required, validation.Length(6, 24)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 24),
			validation.Match(capitalLetters).Error("must contain capital letters"),
			validation.Match(lowercaseLetters).Error("must contain lowercase letters"),
			validation.Match(digits).Error("must contain digits")),
	)
}

// Credentials converts the payload for the core.
func (r AccountRequest) Credentials() domain.Credentials {
	return domain.Credentials{Login: r.Login, Password: r.Password}
}

// AccountResponse is the account representation returned by sign-up. The
// password is never serialized.
type AccountResponse struct {
	Login string `json:"login"`
}

func NewAccountResponse(account *domain.Account) *AccountResponse {
	return &AccountResponse{Login: account.Login}
}
