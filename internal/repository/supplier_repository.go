package repository

import (
	"context"
	"errors"
	"fmt"

	"logistock/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SupplierRepository defines the interface for supplier data access.
// Addresses are always loaded together with their supplier.
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	FindByLegalDocument(ctx context.Context, legalDocument string) (*domain.Supplier, error)
	// CreateOrGet inserts the supplier and its address in one transaction. When another
	// supplier with the same legal document already exists, that one is returned instead.
	CreateOrGet(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
}

type supplierRepository struct {
	q TxQuerier
}

// NewSupplierRepository creates a new instance of SupplierRepository
func NewSupplierRepository(q TxQuerier) SupplierRepository {
	return &supplierRepository{q: q}
}

const supplierSelect = `
	SELECT s.id, s.name, s.legal_document, COALESCE(s.email, ''), COALESCE(s.phone, ''),
	       a.id, a.street, a.number, a.district, a.city_name, a.state_name, a.postal_code, a.complement
	FROM suppliers s
	LEFT JOIN addresses a ON a.id = s.address_id
`

func scanSupplier(row pgx.Row) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}

	// address columns are all NULL when the supplier has no address
	var addressID *uuid.UUID
	var street, number, district, city, state, postal, complement *string

	err := row.Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.LegalDocument,
		&supplier.Email,
		&supplier.Phone,
		&addressID,
		&street,
		&number,
		&district,
		&city,
		&state,
		&postal,
		&complement,
	)
	if err != nil {
		return nil, err
	}

	if addressID != nil {
		supplier.Address = &domain.Address{
			ID:         *addressID,
			Street:     deref(street),
			Number:     deref(number),
			District:   deref(district),
			CityName:   deref(city),
			StateName:  deref(state),
			PostalCode: deref(postal),
			Complement: deref(complement),
		}
	}

	return supplier, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier by ID: %w", err)
	}
	return supplier, nil
}

func (r *supplierRepository) FindByLegalDocument(ctx context.Context, legalDocument string) (*domain.Supplier, error) {
	supplier, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+` WHERE s.legal_document = $1`, legalDocument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier by legal document: %w", err)
	}
	return supplier, nil
}

func (r *supplierRepository) CreateOrGet(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	created, err := r.insert(ctx, supplier)
	if err != nil {
		if !isLegalDocumentConflict(err) {
			return nil, err
		}
		created = false
	}

	if created {
		return supplier, nil
	}

	// Lost the race: the winner's row is committed by now.
	return r.FindByLegalDocument(ctx, supplier.LegalDocument)
}

// insert reports false without error when the legal document is already taken
func (r *supplierRepository) insert(ctx context.Context, supplier *domain.Supplier) (bool, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var addressID *uuid.UUID
	if supplier.Address != nil {
		if supplier.Address.ID == uuid.Nil {
			supplier.Address.ID = uuid.New()
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO addresses (id, street, number, district, city_name, state_name, postal_code, complement)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		`,
			supplier.Address.ID,
			supplier.Address.Street,
			supplier.Address.Number,
			supplier.Address.District,
			supplier.Address.CityName,
			supplier.Address.StateName,
			supplier.Address.PostalCode,
			supplier.Address.Complement,
		)
		if err != nil {
			return false, fmt.Errorf("failed to create address: %w", err)
		}
		addressID = &supplier.Address.ID
	}

	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}

	var insertedID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO suppliers (id, name, legal_document, email, phone, address_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		ON CONFLICT (legal_document) DO NOTHING
		RETURNING id
	`,
		supplier.ID,
		supplier.Name,
		supplier.LegalDocument,
		supplier.Email,
		supplier.Phone,
		addressID,
	).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: roll back so the address above is not left orphaned.
			return false, nil
		}
		return false, fmt.Errorf("failed to create supplier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit supplier: %w", err)
	}

	return true, nil
}

func isLegalDocumentConflict(err error) bool {
	var pgErr *pgconn.PgError
	return isUniqueViolation(err) && errors.As(err, &pgErr) && pgErr.ConstraintName == constraintSupplierLegalDoc
}
