package service

import (
	"context"
	"errors"
	"fmt"

	"logistock/internal/domain"
	"logistock/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierResolver de-duplicates suppliers by legal document
type SupplierResolver interface {
	// Resolve returns the supplier registered under the input's legal document,
	// creating it (and its address) when none exists. A nil input resolves to nil.
	// An existing supplier is returned unchanged even when the other fields differ.
	Resolve(ctx context.Context, in *SupplierInput) (*domain.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
}

type supplierResolver struct {
	supplierRepo repository.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierResolver creates a new instance of SupplierResolver
func NewSupplierResolver(supplierRepo repository.SupplierRepository, logger *zap.Logger) SupplierResolver {
	return &supplierResolver{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

func (r *supplierResolver) Resolve(ctx context.Context, in *SupplierInput) (*domain.Supplier, error) {
	if in == nil {
		return nil, nil
	}

	existing, err := r.supplierRepo.FindByLegalDocument(ctx, in.LegalDocument)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrSupplierNotFound) {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}

	supplier, err := r.supplierRepo.CreateOrGet(ctx, in.toDomain())
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	r.logger.Info("Supplier registered",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("legal_document", supplier.LegalDocument),
	)
	return supplier, nil
}

func (r *supplierResolver) Get(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, err := r.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSupplierNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	return supplier, nil
}
