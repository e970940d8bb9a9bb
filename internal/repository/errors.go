package repository

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrDuplicate   = errors.New("duplicate key")
	ErrBedConflict = errors.New("bed already occupied for interval")
)
