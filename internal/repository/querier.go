package repository

import (
	"context"
	"errors"

	"logistock/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxQuerier is a Querier that can also open transactions
type TxQuerier interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const (
	constraintProductBarcode   = "products_barcode_key"
	constraintStockQuantityMin = "products_stock_quantity_min_check"
	constraintStockQuantityMax = "products_stock_quantity_max_check"
	constraintSupplierLegalDoc = "suppliers_legal_document_key"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// translateProductError maps store constraint violations back to business errors.
// It returns nil when err is not one of them.
func translateProductError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch {
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintProductBarcode:
		return domain.ErrProductAlreadyRegistered
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == constraintStockQuantityMin:
		return domain.ErrStockUnderflow
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == constraintStockQuantityMax:
		return domain.ErrStockExceeded
	}
	return nil
}
