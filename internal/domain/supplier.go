package domain

import (
	"github.com/google/uuid"
)

// Supplier represents a product supplier, unique by legal document
type Supplier struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	LegalDocument string    `json:"legal_document" db:"legal_document"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Address       *Address  `json:"address,omitempty"`
}

// Address is owned by exactly one supplier
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Street     string    `json:"street" db:"street"`
	Number     string    `json:"number" db:"number"`
	District   string    `json:"district" db:"district"`
	CityName   string    `json:"city_name" db:"city_name"`
	StateName  string    `json:"state_name" db:"state_name"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Complement string    `json:"complement" db:"complement"`
}
