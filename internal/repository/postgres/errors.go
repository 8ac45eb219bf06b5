package postgres

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// sqlState extracts the SQLSTATE code from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify maps constraint violations onto domain errors by SQLSTATE code.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch sqlState(err) {
	case codeUniqueViolation, codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}
