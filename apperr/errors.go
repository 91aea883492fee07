package apperr

import "errors"

var (
	ErrNotFound          = errors.New("NOT_FOUND")
	ErrAccessDenied      = errors.New("ACCESS_DENIED")
	ErrValidation        = errors.New("VALIDATION_ERROR")
	ErrDuplicateReaction = errors.New("DUPLICATE_REACTION")
	ErrNotOwner          = errors.New("NOT_OWNER")
	ErrTargetNotMember   = errors.New("TARGET_NOT_MEMBER")
	ErrAuthentication    = errors.New("AUTHENTICATION_ERROR")
	ErrConflict          = errors.New("CONFLICT")
)
