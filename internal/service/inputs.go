package service

import (
	"logistock/internal/domain"

	"github.com/shopspring/decimal"
)

// ProductInput carries the fields accepted when creating a product.
// Nil stock fields take the domain defaults.
type ProductInput struct {
	Name          string
	Barcode       string
	Category      domain.Category
	UnitPrice     decimal.Decimal
	MeasureUnit   domain.MeasureUnit
	StockQuantity *int
	MinStockLevel *int
	MaxStockLevel *int
	Description   string
	Supplier      *SupplierInput
}

// ProductUpdateInput carries the replaceable fields of a product.
// A nil MaxStockLevel keeps the current one; a nil Supplier clears the reference.
type ProductUpdateInput struct {
	Name          string
	Category      domain.Category
	UnitPrice     decimal.Decimal
	MeasureUnit   domain.MeasureUnit
	MaxStockLevel *int
	Description   string
	Supplier      *SupplierInput
}

type SupplierInput struct {
	Name          string
	LegalDocument string
	Email         string
	Phone         string
	Address       *AddressInput
}

type AddressInput struct {
	Street     string
	Number     string
	District   string
	CityName   string
	StateName  string
	PostalCode string
	Complement string
}

func (in *SupplierInput) toDomain() *domain.Supplier {
	supplier := &domain.Supplier{
		Name:          in.Name,
		LegalDocument: in.LegalDocument,
		Email:         in.Email,
		Phone:         in.Phone,
	}
	if in.Address != nil {
		supplier.Address = &domain.Address{
			Street:     in.Address.Street,
			Number:     in.Address.Number,
			District:   in.Address.District,
			CityName:   in.Address.CityName,
			StateName:  in.Address.StateName,
			PostalCode: in.Address.PostalCode,
			Complement: in.Address.Complement,
		}
	}
	return supplier
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
