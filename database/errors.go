// Package database holds the gorm-backed record stores. Store methods return the
// sentinel errors below so handlers can map them onto HTTP statuses.
package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned for unique-constraint violations and for conditional updates
// whose precondition no longer holds.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller does not own the row.
var ErrForbidden = errors.New("forbidden")

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
