package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents the product category
type Category string

const (
	CategoryElectronic Category = "ELECTRONIC"
	CategoryClothing   Category = "CLOTHING"
	CategoryFood       Category = "FOOD"
	CategoryOther      Category = "OTHER"
)

// AllCategories returns every known category
func AllCategories() []Category {
	return []Category{CategoryElectronic, CategoryClothing, CategoryFood, CategoryOther}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// MeasureUnit represents the unit a product is stocked in
type MeasureUnit string

const (
	MeasureUnitKilogram MeasureUnit = "KILOGRAM"
	MeasureUnitLiter    MeasureUnit = "LITER"
	MeasureUnitPack     MeasureUnit = "PACK"
	MeasureUnitUnit     MeasureUnit = "UNIT"
)

// Defaults applied when a product is created without explicit stock levels
const (
	DefaultStockQuantity = 0
	DefaultMinStockLevel = 10
	DefaultMaxStockLevel = 100
)

// Product represents a stocked product
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Barcode       string          `json:"barcode" db:"barcode"`
	Category      Category        `json:"category" db:"category"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty" db:"supplier_id"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	MeasureUnit   MeasureUnit     `json:"measure_unit" db:"measure_unit"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel int             `json:"max_stock_level" db:"max_stock_level"`
	EntryDate     time.Time       `json:"entry_date" db:"entry_date"`
	Description   string          `json:"description" db:"description"`
}

// IncreaseStock returns the quantity after adding delta, or ErrStockExceeded
// when the result would pass the max stock level. The product is not modified.
func (p *Product) IncreaseStock(delta int) (int, error) {
	if delta <= 0 {
		return p.StockQuantity, ErrInvalidQuantity
	}
	// compared as headroom so a huge delta cannot wrap around
	if delta > p.MaxStockLevel-p.StockQuantity {
		return p.StockQuantity, ErrStockExceeded
	}
	return p.StockQuantity + delta, nil
}

// DecreaseStock returns the quantity after removing delta, or ErrStockUnderflow
// when the subtraction would go below zero. Landing exactly on zero is allowed.
func (p *Product) DecreaseStock(delta int) (int, error) {
	if delta <= 0 {
		return p.StockQuantity, ErrInvalidQuantity
	}
	updated := p.StockQuantity - delta
	if updated < 0 {
		return p.StockQuantity, ErrStockUnderflow
	}
	return max(0, updated), nil
}

// BelowMinimum reports whether the current quantity is under the min stock level
func (p *Product) BelowMinimum() bool {
	return p.StockQuantity < p.MinStockLevel
}

// ProductDetail is a product together with its supplier, if it has one
type ProductDetail struct {
	Product  *Product
	Supplier *Supplier
}

// ProductFilter narrows down product listings
type ProductFilter struct {
	PageNumber int
	PageSize   int
	Search     string
	Categories []Category
}

// Offset returns the number of rows to skip for the requested page
func (f ProductFilter) Offset() int {
	return f.PageNumber * f.PageSize
}
