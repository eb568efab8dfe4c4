package core

import (
	"context"
	"fmt"
	"strings"
)

// AuthCode is a vendor-agnostic classification of an authentication failure.
type AuthCode string

const (
	AuthInvalidCredentials AuthCode = "invalid-credentials"
	AuthEmailInUse         AuthCode = "email-in-use"
	AuthWeakPassword       AuthCode = "weak-password"
	AuthInvalidEmail       AuthCode = "invalid-email"
	AuthUserNotFound       AuthCode = "user-not-found"
	AuthWrongPassword      AuthCode = "wrong-password"
	AuthUnknown            AuthCode = "unknown"
)

// AuthError wraps a provider failure with its taxonomy code.
type AuthError struct {
	Code AuthCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage translates the code into the fixed user-facing message.
func (e *AuthError) UserMessage() string {
	switch e.Code {
	case AuthEmailInUse:
		return "This email is already registered. Try logging in instead."
	case AuthWeakPassword:
		return "Password is too weak. Please choose a stronger password."
	case AuthInvalidEmail:
		return "Please enter a valid email address."
	case AuthUserNotFound:
		return "No account found with this email. Please sign up first."
	case AuthWrongPassword:
		return "Incorrect password. Please try again."
	case AuthInvalidCredentials:
		return "Invalid email or password. Please check your credentials."
	default:
		return "Something went wrong. Please try again."
	}
}

// NewAuthError builds an AuthError with an optional cause.
func NewAuthError(code AuthCode, err error) *AuthError {
	return &AuthError{Code: code, Err: err}
}

// ValidatePassword applies the local password policy checked before any
// provider call: no whitespace, minimum 6 characters.
func ValidatePassword(password string) error {
	if strings.ContainsAny(password, " \t\n\r") {
		return NewAuthError(AuthWeakPassword, fmt.Errorf("password cannot contain spaces"))
	}
	if len(password) < 6 {
		return NewAuthError(AuthWeakPassword, fmt.Errorf("password must be at least 6 characters long"))
	}
	return nil
}

// ValidateEmail is a minimal shape check; real verification is the
// provider's job.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return NewAuthError(AuthInvalidEmail, fmt.Errorf("malformed email %q", email))
	}
	return nil
}

// AuthProvider is the session/identity boundary.
// Session-changed callbacks fire on sign-in and sign-out and return an
// unsubscribe handle; callbacks receive the new user and whether a session
// is active.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (User, error)
	SignIn(ctx context.Context, email, password string) (User, error)
	SignOut(ctx context.Context) error

	// CurrentUser returns the active identity, if any.
	CurrentUser() (User, bool)

	// OnSessionChanged registers a listener and returns its unsubscribe
	// function. Listeners must be detached on view teardown.
	OnSessionChanged(fn func(user User, signedIn bool)) (unsubscribe func())
}
