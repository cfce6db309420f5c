package transport

import (
	"time"

	"logistock/internal/domain"
	"logistock/internal/service"

	"github.com/shopspring/decimal"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,min=2,max=100"`
	Barcode       string           `json:"barCode" validate:"required,min=2,max=100"`
	Category      string           `json:"category" validate:"required,oneof=ELECTRONIC CLOTHING FOOD OTHER"`
	Supplier      *SupplierRequest `json:"supplier"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" validate:"required,price"`
	MeasureUnit   string           `json:"measureUnit" validate:"required,oneof=KILOGRAM LITER PACK UNIT"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitempty,gte=0,lte=2147483647"`
	MinStockLevel *int             `json:"minStockLevel" validate:"omitempty,gte=0,lte=2147483647"`
	MaxStockLevel *int             `json:"maxStockLevel" validate:"omitempty,gt=0,lte=2147483647"`
	Description   string           `json:"description" validate:"max=500"`
}

// UpdateProductRequest represents the product update payload.
// Stock quantity, barcode and min stock level cannot be changed here.
type UpdateProductRequest struct {
	Name          string           `json:"name" validate:"required,min=2,max=100"`
	Category      string           `json:"category" validate:"required,oneof=ELECTRONIC CLOTHING FOOD OTHER"`
	Supplier      *SupplierRequest `json:"supplier"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" validate:"required,price"`
	MaxStockLevel *int             `json:"maxStockLevel" validate:"required,gt=0,lte=2147483647"`
	MeasureUnit   string           `json:"measureUnit" validate:"required,oneof=KILOGRAM LITER PACK UNIT"`
	Description   string           `json:"description" validate:"max=500"`
}

// SupplierRequest represents the nested supplier payload
type SupplierRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=100"`
	LegalDocument string          `json:"legalDocument" validate:"required,legal_document"`
	Email         string          `json:"email" validate:"omitempty,email"`
	Phone         string          `json:"phone" validate:"omitempty,phone"`
	Address       *AddressRequest `json:"address"`
}

// AddressRequest represents the supplier address payload
type AddressRequest struct {
	Street     string `json:"street" validate:"required,min=2,max=100"`
	Number     string `json:"number" validate:"required"`
	District   string `json:"district" validate:"required"`
	CityName   string `json:"cityName" validate:"required"`
	StateName  string `json:"stateName" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required,postal_code"`
	Complement string `json:"complement"`
}

// QuantityRequest represents a stock increase or decrease.
// Stock columns are INTEGER, so the quantity is capped at the int4 maximum.
type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=2147483647"`
}

// ListProductsQuery holds the parsed list query parameters
type ListProductsQuery struct {
	PageNumber *int     `json:"pageNumber" validate:"required,gte=0"`
	PageSize   *int     `json:"pageSize" validate:"required,gte=1,lte=100"`
	Search     string   `json:"search" validate:"max=100"`
	Categories []string `json:"categories" validate:"dive,oneof=ELECTRONIC CLOTHING FOOD OTHER"`
}

// ProductResponse is the product representation returned by every product route
type ProductResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Barcode       string            `json:"barCode"`
	Category      string            `json:"category"`
	Supplier      *SupplierResponse `json:"supplier"`
	UnitPrice     decimal.Decimal   `json:"unitPrice"`
	MeasureUnit   string            `json:"measureUnit"`
	StockQuantity int               `json:"stockQuantity"`
	MinStockLevel int               `json:"minStockLevel"`
	MaxStockLevel int               `json:"maxStockLevel"`
	EntryDate     time.Time         `json:"entryDate"`
	Description   string            `json:"description"`
}

type SupplierResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	LegalDocument string           `json:"legalDocument"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Address       *AddressResponse `json:"address,omitempty"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
	CityName   string `json:"cityName"`
	StateName  string `json:"stateName"`
	PostalCode string `json:"postalCode"`
	Complement string `json:"complement,omitempty"`
}

func (req *CreateProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:          req.Name,
		Barcode:       req.Barcode,
		Category:      domain.Category(req.Category),
		UnitPrice:     *req.UnitPrice,
		MeasureUnit:   domain.MeasureUnit(req.MeasureUnit),
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
		Description:   req.Description,
		Supplier:      req.Supplier.toInput(),
	}
}

func (req *UpdateProductRequest) toInput() service.ProductUpdateInput {
	return service.ProductUpdateInput{
		Name:          req.Name,
		Category:      domain.Category(req.Category),
		UnitPrice:     *req.UnitPrice,
		MeasureUnit:   domain.MeasureUnit(req.MeasureUnit),
		MaxStockLevel: req.MaxStockLevel,
		Description:   req.Description,
		Supplier:      req.Supplier.toInput(),
	}
}

func (req *SupplierRequest) toInput() *service.SupplierInput {
	if req == nil {
		return nil
	}

	in := &service.SupplierInput{
		Name:          req.Name,
		LegalDocument: req.LegalDocument,
		Email:         req.Email,
		Phone:         req.Phone,
	}
	if a := req.Address; a != nil {
		in.Address = &service.AddressInput{
			Street:     a.Street,
			Number:     a.Number,
			District:   a.District,
			CityName:   a.CityName,
			StateName:  a.StateName,
			PostalCode: a.PostalCode,
			Complement: a.Complement,
		}
	}
	return in
}

func toProductResponse(detail *domain.ProductDetail) ProductResponse {
	p := detail.Product
	response := ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Barcode:       p.Barcode,
		Category:      string(p.Category),
		UnitPrice:     p.UnitPrice,
		MeasureUnit:   string(p.MeasureUnit),
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		MaxStockLevel: p.MaxStockLevel,
		EntryDate:     p.EntryDate,
		Description:   p.Description,
	}

	if s := detail.Supplier; s != nil {
		response.Supplier = &SupplierResponse{
			ID:            s.ID.String(),
			Name:          s.Name,
			LegalDocument: s.LegalDocument,
			Email:         s.Email,
			Phone:         s.Phone,
		}
		if a := s.Address; a != nil {
			response.Supplier.Address = &AddressResponse{
				Street:     a.Street,
				Number:     a.Number,
				District:   a.District,
				CityName:   a.CityName,
				StateName:  a.StateName,
				PostalCode: a.PostalCode,
				Complement: a.Complement,
			}
		}
	}
	return response
}
