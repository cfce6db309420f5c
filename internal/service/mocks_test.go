package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"logistock/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// In-memory product store
type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	writes   int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.Barcode == product.Barcode {
			return domain.ErrProductAlreadyRegistered
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	m.writes++
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	stored.Name = product.Name
	stored.Category = product.Category
	stored.SupplierID = product.SupplierID
	stored.UnitPrice = product.UnitPrice
	stored.MeasureUnit = product.MeasureUnit
	stored.MaxStockLevel = product.MaxStockLevel
	stored.Description = product.Description
	m.writes++
	return nil
}

func (m *mockProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if quantity < 0 {
		return domain.ErrStockUnderflow
	}
	if quantity > stored.MaxStockLevel {
		return domain.ErrStockExceeded
	}
	stored.StockQuantity = quantity
	m.writes++
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	m.writes++
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *stored
	return &copied, nil
}

func (m *mockProductRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.Barcode == barcode {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockProductRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	_, err := m.FindByBarcode(ctx, barcode)
	return err == nil, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := []*domain.Product{}
	for _, p := range m.products {
		if search != "" &&
			p.ID.String() != search &&
			!strings.Contains(strings.ToLower(p.Barcode), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, p.Category) {
			continue
		}
		copied := *p
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EntryDate.After(matched[j].EntryDate)
	})

	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PageSize, len(matched))
	return matched[start:end], nil
}

func (m *mockProductRepository) quantity(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func containsCategory(categories []domain.Category, c domain.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// In-memory supplier store keyed by legal document
type mockSupplierRepository struct {
	mu        sync.Mutex
	suppliers map[string]*domain.Supplier
	creates   int
	lookups   int
}

func newMockSupplierRepository() *mockSupplierRepository {
	return &mockSupplierRepository{
		suppliers: make(map[string]*domain.Supplier),
	}
}

func (m *mockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	for _, s := range m.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrSupplierNotFound
}

func (m *mockSupplierRepository) FindByLegalDocument(ctx context.Context, legalDocument string) (*domain.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.suppliers[legalDocument]; ok {
		return s, nil
	}
	return nil, domain.ErrSupplierNotFound
}

func (m *mockSupplierRepository) CreateOrGet(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.suppliers[supplier.LegalDocument]; ok {
		return existing, nil
	}
	supplier.ID = uuid.New()
	if supplier.Address != nil {
		supplier.Address.ID = uuid.New()
	}
	m.suppliers[supplier.LegalDocument] = supplier
	m.creates++
	return supplier, nil
}

// MockPublisher records published events
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.StockEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func eventOfType(eventType domain.EventType) interface{} {
	return mock.MatchedBy(func(e domain.StockEvent) bool { return e.Type == eventType })
}
