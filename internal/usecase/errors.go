package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	ErrNotALeagueMember    = fmt.Errorf("%w: user is not a member of this league", ErrForbidden)
	ErrDeadlinePassed      = fmt.Errorf("%w: betting deadline has passed", ErrConflict)
	ErrMatchAlreadyStarted = fmt.Errorf("%w: match has already started", ErrConflict)
	ErrBetNotFound         = fmt.Errorf("%w: bet not found", ErrNotFound)
	ErrNotBetOwner         = fmt.Errorf("%w: bet belongs to another user", ErrForbidden)
	ErrMatchNotFound       = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrMatchNotFinalized   = fmt.Errorf("%w: match has no final score", ErrConflict)
	ErrInvalidPrediction   = fmt.Errorf("%w: predicted scores must be >= 0", ErrInvalidInput)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
)
