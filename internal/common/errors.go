// Package common defines the sentinel errors shared by the hacCare stores,
// services and front-ends. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound  = errors.New("not found")
	ErrFileMissing = errors.New("file missing")

	// Validation errors (unknown record type, empty identifier, bad form value).
	ErrInvalidInput = errors.New("invalid input")

	// Underlying read/write of an index, credential or record file failed.
	ErrStorageIO = errors.New("storage error")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
