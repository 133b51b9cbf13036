package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/password"
)

// RegisterInput carries a local sign-up request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (in RegisterInput) validate() error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	return validatePassword(in.Password)
}

// LoginInput carries a local sign-in request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) validate() error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	return validatePassword(in.Password)
}

// OAuthInput carries a provider authorization code.
type OAuthInput struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
}

// validateEmail accepts a bare address. Display-name forms such as
// "Ada <ada@example.com>" are rejected.
func validateEmail(email string) error {
	if email == "" {
		return domain.Invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.ContainsAny(email, " \t\r\n") {
		return domain.Invalid("email", "must be a valid email address")
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return domain.Invalid("email", "must be a valid email address")
	}
	return nil
}

func validatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < password.MinLength {
		return domain.Invalid("password", "must be at least 6 characters")
	}
	return nil
}
