package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidStage       = errors.New("invalid stage")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrNoVerification     = errors.New("no verification record")
	ErrValidation         = errors.New("validation failed")
)
