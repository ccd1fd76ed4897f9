package service

import "errors"

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindUnauthorized
	KindInvalidInput
	KindConflict
)

type Reason string

const (
	ReasonUserNotFound    Reason = "UserNotFound"
	ReasonDeleted         Reason = "Deleted"
	ReasonBlocked         Reason = "Blocked"
	ReasonRoleNotAllowed  Reason = "RoleNotAllowed"
	ReasonBadCredentials  Reason = "BadCredentials"
	ReasonMissingToken    Reason = "MissingToken"
	ReasonInvalidToken    Reason = "InvalidToken"
	ReasonTokenExpired    Reason = "TokenExpired"
	ReasonPasswordChanged Reason = "PasswordChanged"
)

// AuthError is a client-facing failure. Message is safe to return verbatim.
type AuthError struct {
	Kind    ErrorKind
	Reason  Reason
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Is matches on Kind, and on Reason when the target carries one, so
// errors.Is(err, ErrForbidden) holds for every forbidden reason.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

var (
	ErrNotFound     = &AuthError{Kind: KindNotFound, Message: "Not found"}
	ErrForbidden    = &AuthError{Kind: KindForbidden, Message: "Forbidden"}
	ErrUnauthorized = &AuthError{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrInvalidInput = &AuthError{Kind: KindInvalidInput, Message: "Invalid input"}
	ErrConflict     = &AuthError{Kind: KindConflict, Message: "Already exists"}

	ErrUserNotFound    = &AuthError{Kind: KindNotFound, Reason: ReasonUserNotFound, Message: "User not found"}
	ErrUserDeleted     = &AuthError{Kind: KindForbidden, Reason: ReasonDeleted, Message: "User is deleted"}
	ErrUserBlocked     = &AuthError{Kind: KindForbidden, Reason: ReasonBlocked, Message: "User is blocked"}
	ErrRoleNotAllowed  = &AuthError{Kind: KindForbidden, Reason: ReasonRoleNotAllowed, Message: "You are not allowed to access this resource"}
	ErrBadCredentials  = &AuthError{Kind: KindUnauthorized, Reason: ReasonBadCredentials, Message: "Incorrect password"}
	ErrMissingToken    = &AuthError{Kind: KindUnauthorized, Reason: ReasonMissingToken, Message: "Token is required"}
	ErrInvalidToken    = &AuthError{Kind: KindUnauthorized, Reason: ReasonInvalidToken, Message: "Invalid token"}
	ErrTokenExpired    = &AuthError{Kind: KindUnauthorized, Reason: ReasonTokenExpired, Message: "Token has expired"}
	ErrPasswordChanged = &AuthError{Kind: KindUnauthorized, Reason: ReasonPasswordChanged, Message: "Password changed, please login again"}

	ErrMisconfigured = errors.New("auth config invalid")
)
