package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistock/internal/domain"
	"logistock/internal/events"
	"logistock/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService defines the interface for product and stock business logic
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*domain.ProductDetail, error)
	ListAll(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductDetail, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductDetail, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.ProductDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateByID(ctx context.Context, id uuid.UUID, in ProductUpdateInput) (*domain.ProductDetail, error)
	IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error)
}

type productService struct {
	productRepo repository.ProductRepository
	suppliers   SupplierResolver
	publisher   events.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	suppliers SupplierResolver,
	publisher events.Publisher,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		suppliers:   suppliers,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// Create registers a new product. The barcode must be unused.
func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.ProductDetail, error) {
	exists, err := s.productRepo.ExistsByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if exists {
		return nil, domain.ErrProductAlreadyRegistered
	}

	product := &domain.Product{
		ID:            uuid.New(),
		Name:          in.Name,
		Barcode:       in.Barcode,
		Category:      in.Category,
		UnitPrice:     in.UnitPrice,
		MeasureUnit:   in.MeasureUnit,
		StockQuantity: valueOr(in.StockQuantity, domain.DefaultStockQuantity),
		MinStockLevel: valueOr(in.MinStockLevel, domain.DefaultMinStockLevel),
		MaxStockLevel: valueOr(in.MaxStockLevel, domain.DefaultMaxStockLevel),
		EntryDate:     s.now().UTC().Truncate(time.Microsecond),
		Description:   in.Description,
	}

	if product.StockQuantity > product.MaxStockLevel {
		return nil, domain.ErrStockExceeded
	}

	supplier, err := s.suppliers.Resolve(ctx, in.Supplier)
	if err != nil {
		return nil, err
	}
	if supplier != nil {
		product.SupplierID = &supplier.ID
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, wrapStoreError(err, "create product")
	}

	s.publish(ctx, domain.NewStockEvent(domain.EventProductCreated, product, 0))

	return &domain.ProductDetail{Product: product, Supplier: supplier}, nil
}

// ListAll returns one page of products. Suppliers shared by several products are fetched once.
func (s *productService) ListAll(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductDetail, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	fetched := make(map[uuid.UUID]*domain.Supplier)
	details := make([]*domain.ProductDetail, 0, len(products))

	for _, product := range products {
		detail := &domain.ProductDetail{Product: product}

		if product.SupplierID != nil {
			supplier, ok := fetched[*product.SupplierID]
			if !ok {
				supplier, err = s.lookupSupplier(ctx, *product.SupplierID)
				if err != nil {
					return nil, err
				}
				fetched[*product.SupplierID] = supplier
			}
			detail.Supplier = supplier
		}

		details = append(details, detail)
	}

	return details, nil
}

func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "find product")
	}
	return s.detail(ctx, product)
}

func (s *productService) FindByBarcode(ctx context.Context, barcode string) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, wrapStoreError(err, "find product")
	}
	return s.detail(ctx, product)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return wrapStoreError(err, "find product")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return wrapStoreError(err, "delete product")
	}

	s.publish(ctx, domain.NewStockEvent(domain.EventProductDeleted, product, 0))
	return nil
}

// UpdateByID replaces the editable fields. Stock quantity, barcode, min stock level
// and entry date keep their current values.
func (s *productService) UpdateByID(ctx context.Context, id uuid.UUID, in ProductUpdateInput) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "find product")
	}

	maxStockLevel := valueOr(in.MaxStockLevel, product.MaxStockLevel)
	if maxStockLevel < product.StockQuantity {
		return nil, domain.ErrStockExceeded
	}

	supplier, err := s.suppliers.Resolve(ctx, in.Supplier)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Category = in.Category
	product.UnitPrice = in.UnitPrice
	product.MeasureUnit = in.MeasureUnit
	product.MaxStockLevel = maxStockLevel
	product.Description = in.Description
	product.SupplierID = nil
	if supplier != nil {
		product.SupplierID = &supplier.ID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, wrapStoreError(err, "update product")
	}

	return &domain.ProductDetail{Product: product, Supplier: supplier}, nil
}

// IncreaseStock adds quantity to the stock. Nothing is written when the
// result would exceed the max stock level.
func (s *productService) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "find product")
	}

	updated, err := product.IncreaseStock(quantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.UpdateStock(ctx, id, updated); err != nil {
		return nil, wrapStoreError(err, "update stock")
	}
	product.StockQuantity = updated

	s.publish(ctx, domain.NewStockEvent(domain.EventStockIncreased, product, quantity))

	return s.detail(ctx, product)
}

// DecreaseStock removes quantity from the stock. Nothing is written when the
// subtraction would go below zero; reaching exactly zero is allowed.
func (s *productService) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "find product")
	}

	updated, err := product.DecreaseStock(quantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.UpdateStock(ctx, id, updated); err != nil {
		return nil, wrapStoreError(err, "update stock")
	}
	product.StockQuantity = updated

	s.publish(ctx, domain.NewStockEvent(domain.EventStockDecreased, product, quantity))

	if product.BelowMinimum() {
		s.logger.Warn("Stock below minimum level",
			zap.String("product_id", product.ID.String()),
			zap.Int("stock_quantity", product.StockQuantity),
			zap.Int("min_stock_level", product.MinStockLevel),
		)
		s.publish(ctx, domain.NewStockEvent(domain.EventStockLow, product, quantity))
	}

	return s.detail(ctx, product)
}

func (s *productService) detail(ctx context.Context, product *domain.Product) (*domain.ProductDetail, error) {
	detail := &domain.ProductDetail{Product: product}
	if product.SupplierID == nil {
		return detail, nil
	}

	supplier, err := s.lookupSupplier(ctx, *product.SupplierID)
	if err != nil {
		return nil, err
	}
	detail.Supplier = supplier
	return detail, nil
}

// lookupSupplier tolerates a dangling reference by returning no supplier
func (s *productService) lookupSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, err := s.suppliers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSupplierNotFound) {
			s.logger.Warn("Product references a missing supplier", zap.String("supplier_id", id.String()))
			return nil, nil
		}
		return nil, err
	}
	return supplier, nil
}

// publish logs publisher failures instead of returning them
func (s *productService) publish(ctx context.Context, event domain.StockEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish stock event",
			zap.String("type", string(event.Type)),
			zap.String("product_id", event.ProductID.String()),
			zap.Error(err),
		)
	}
}

// wrapStoreError keeps business errors as they are and adds context to the rest
func wrapStoreError(err error, action string) error {
	if _, ok := domain.KindOf(err); ok {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
