// Package apperr defines the user-facing error taxonomy shared by services
// and HTTP handlers.
package apperr

import "errors"

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindConfirmation
	KindNotFound
	KindConflict
	KindExternal
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConfirmation:
		return "confirmation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

const serverMessage = "Server error"

// Error is an operation failure with a message safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Server wraps an unexpected failure. The cause is kept for logging only.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: serverMessage, Err: err}
}

// Wrap attaches a cause to a copy of e.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message so that package-level values work as
// sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns KindServer for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Message returns the text to show to the user.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return serverMessage
}

// Shared messages.
var (
	ErrInvalidUsername    = New(KindValidation, "Invalid username")
	ErrInvalidEmail       = New(KindValidation, "Invalid email")
	ErrInvalidPassword    = New(KindValidation, "Invalid password")
	ErrPasswordsMismatch  = New(KindValidation, "Passwords do not match")
	ErrInvalidCode        = New(KindValidation, "Invalid code")
	ErrInvalidCredentials = New(KindUnauthorized, "Invalid email or password")
	ErrUsernameTaken      = New(KindConflict, "Username already taken")
	ErrEmailTaken         = New(KindConflict, "Email already taken")
	ErrHashPassword       = New(KindServer, "Failed to hash password")
	ErrSendEmail          = New(KindExternal, "Failed to send email to the given address")
	ErrEmailNotFound      = New(KindNotFound, "Account with that email address was not found")

	ErrInvalidTitle       = New(KindValidation, "Invalid title")
	ErrInvalidDescription = New(KindValidation, "Invalid description")
	ErrInvalidTags        = New(KindValidation, "Invalid tags")
	ErrInvalidContent     = New(KindValidation, "Invalid content")
	ErrInvalidName        = New(KindValidation, "Invalid name")
	ErrInvalidPfp         = New(KindValidation, "Invalid profile picture")
	ErrInvalidRole        = New(KindValidation, "Invalid role")

	ErrPostNotFound    = New(KindNotFound, "Post not found")
	ErrCommentNotFound = New(KindNotFound, "Comment not found")
	ErrUserNotFound    = New(KindNotFound, "User not found")
	ErrReplyOtherPost  = New(KindValidation, "Reply and original comment must be on the same post")

	ErrPostConfirmation    = New(KindConfirmation, "Post title and confirmation string do not match")
	ErrCommentConfirmation = New(KindConfirmation, "Username and confirmation string do not match")

	ErrSignInRequired      = New(KindUnauthorized, "You must be signed in")
	ErrCreatePostDenied    = New(KindUnauthorized, "You are not allowed to create posts")
	ErrEditPostDenied      = New(KindUnauthorized, "You are not allowed to edit this post")
	ErrDeletePostDenied    = New(KindUnauthorized, "You are not allowed to delete this post")
	ErrAnonymisePostDenied = New(KindUnauthorized, "You are not allowed to anonymise this post")
	ErrCommentDenied       = New(KindUnauthorized, "You are not allowed to comment")
	ErrReplyDenied         = New(KindUnauthorized, "You are not allowed to reply")
	ErrEditCommentDenied   = New(KindUnauthorized, "You are not allowed to edit this comment")
	ErrDeleteCommentDenied = New(KindUnauthorized, "You are not allowed to delete this comment")
	ErrAnonCommentDenied   = New(KindUnauthorized, "You are not allowed to anonymise this comment")
	ErrEditUserDenied      = New(KindUnauthorized, "You are not allowed to edit this user")
	ErrAdminUserDenied     = New(KindUnauthorized, "You are not allowed to admin this user")
)
