package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logistock/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	q Querier
}

// NewProductRepository creates a new instance of ProductRepository over a pool or a transaction
func NewProductRepository(q Querier) ProductRepository {
	return &productRepository{q: q}
}

const productColumns = `id, name, barcode, category, supplier_id, unit_price, measure_unit,
	stock_quantity, min_stock_level, max_stock_level, entry_date, COALESCE(description, '')`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Barcode,
		&product.Category,
		&product.SupplierID,
		&product.UnitPrice,
		&product.MeasureUnit,
		&product.StockQuantity,
		&product.MinStockLevel,
		&product.MaxStockLevel,
		&product.EntryDate,
		&product.Description,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a new product. A duplicate barcode yields domain.ErrProductAlreadyRegistered.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, barcode, category, supplier_id, unit_price, measure_unit,
			stock_quantity, min_stock_level, max_stock_level, entry_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
	`

	_, err := r.q.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Barcode,
		product.Category,
		product.SupplierID,
		product.UnitPrice,
		product.MeasureUnit,
		product.StockQuantity,
		product.MinStockLevel,
		product.MaxStockLevel,
		product.EntryDate,
		product.Description,
	)
	if err != nil {
		if domainErr := translateProductError(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes the editable attributes. Barcode, stock quantity, min stock level
// and entry date are never touched here.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, supplier_id = $4, unit_price = $5, measure_unit = $6,
		    max_stock_level = $7, description = NULLIF($8, '')
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.SupplierID,
		product.UnitPrice,
		product.MeasureUnit,
		product.MaxStockLevel,
		product.Description,
	)
	if err != nil {
		if domainErr := translateProductError(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// UpdateStock sets the stock quantity. The bounds are enforced again by the table constraints.
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock_quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		if domainErr := translateProductError(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update product stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`

	product, err := scanProduct(r.q.QueryRow(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}

	return product, nil
}

func (r *productRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE barcode = $1)`, barcode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check barcode: %w", err)
	}
	return exists, nil
}

// List returns one page of products, newest entry first. An empty search matches
// everything; otherwise it matches the id exactly, or the barcode or name as a
// case-insensitive substring. An empty category list matches every category.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = ''
		       OR CAST(id AS TEXT) = LOWER($1)
		       OR barcode ILIKE '%' || $1 || '%'
		       OR name ILIKE '%' || $1 || '%')
		  AND (cardinality($2::text[]) = 0 OR category = ANY($2::text[]))
		ORDER BY entry_date DESC, id
		LIMIT $3 OFFSET $4
	`

	categories := make([]string, 0, len(filter.Categories))
	for _, c := range filter.Categories {
		categories = append(categories, string(c))
	}

	rows, err := r.q.Query(ctx, query,
		strings.TrimSpace(filter.Search),
		categories,
		filter.PageSize,
		filter.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
