package model

import "errors"

var (
	// ErrNotFound covers absent tables, entities and users, and deliberately
	// also credential mismatches, so that a failed login does not reveal
	// whether the user exists.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest marks malformed or missing request parameters detected
	// before any store access.
	ErrBadRequest = errors.New("bad request")

	// ErrForbidden marks a structurally valid token with insufficient
	// capability or the wrong binding.
	ErrForbidden = errors.New("forbidden")

	// ErrTokenInvalid marks a token whose signature does not verify or whose
	// expiry has elapsed.
	ErrTokenInvalid = errors.New("token invalid or expired")

	// ErrNotImplemented is returned for recognized admin operations that are
	// reserved for future extension.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnavailable marks an unreachable downstream service.
	ErrUnavailable = errors.New("service unavailable")
)
