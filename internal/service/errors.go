package service

import "errors"

var (
	ErrConnection    = errors.New("database connection unavailable")
	ErrNotFound      = errors.New("electronico not found")
	ErrInvalidCodigo = errors.New("invalid codigo")
	ErrInvalidBody   = errors.New("invalid request body")
)
