package repository

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrDatabase            = errors.New("database error")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
