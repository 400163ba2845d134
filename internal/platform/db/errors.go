package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

// Wrap converts driver errors into the application taxonomy: missing rows
// become apperr.ErrNotFound, everything else a StorageError tagged with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return apperr.Storage(op, err)
}
