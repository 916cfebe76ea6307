package service

import "errors"

var (
	ErrValidation    = errors.New("validation")     // 400
	ErrUnauthorized  = errors.New("unauthorized")   // 401
	ErrNotFound      = errors.New("not found")      // 404
	ErrConflict      = errors.New("conflict")       // 409
	ErrQuotaExceeded = errors.New("quota exceeded") // 429
)
