// Package repository contains the sqlx-backed data access layer.
package repository

import (
	"database/sql"
	"errors"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
