package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"logistock/internal/domain"
	"logistock/internal/middleware"
	"logistock/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, in service.ProductInput) (*domain.ProductDetail, error) {
	args := m.Called(ctx, in)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProductService) ListAll(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductDetail, error) {
	args := m.Called(ctx, filter)
	details, _ := args.Get(0).([]*domain.ProductDetail)
	return details, args.Error(1)
}

func (m *MockProductService) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProductService) FindByBarcode(ctx context.Context, barcode string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, barcode)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) UpdateByID(ctx context.Context, id uuid.UUID, in service.ProductUpdateInput) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id, in)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProductService) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id, quantity)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func (m *MockProductService) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id, quantity)
	return detailOrNil(args.Get(0)), args.Error(1)
}

func detailOrNil(v interface{}) *domain.ProductDetail {
	detail, _ := v.(*domain.ProductDetail)
	return detail
}

func newRouter(svc service.ProductService, guards Guards) http.Handler {
	r := chi.NewRouter()
	NewProductHandler(svc, zap.NewNop()).RegisterRoutes(r, guards)
	return r
}

func sampleDetail(quantity int) *domain.ProductDetail {
	return &domain.ProductDetail{
		Product: &domain.Product{
			ID:            uuid.New(),
			Name:          "Notebook",
			Barcode:       "7891234567890",
			Category:      domain.CategoryElectronic,
			UnitPrice:     decimal.RequireFromString("3500.50"),
			MeasureUnit:   domain.MeasureUnitUnit,
			StockQuantity: quantity,
			MinStockLevel: 10,
			MaxStockLevel: 100,
			EntryDate:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func doJSON(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Notebook",
		"barCode":     "7891234567890",
		"category":    "ELECTRONIC",
		"unitPrice":   "3500.50",
		"measureUnit": "UNIT",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestCreateProduct(t *testing.T) {
	t.Run("created product is returned with 201", func(t *testing.T) {
		svc := new(MockProductService)
		detail := sampleDetail(0)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.ProductInput) bool {
			return in.Barcode == "7891234567890" &&
				in.UnitPrice.Equal(decimal.RequireFromString("3500.50")) &&
				in.StockQuantity == nil &&
				in.Supplier == nil
		})).Return(detail, nil)

		w := doJSON(newRouter(svc, Guards{}), http.MethodPost, "/api/v1/product", validCreateBody())

		require.Equal(t, http.StatusCreated, w.Code)
		var response ProductResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, detail.Product.ID.String(), response.ID)
		assert.Equal(t, "7891234567890", response.Barcode)
		assert.True(t, response.UnitPrice.Equal(decimal.RequireFromString("3500.5")))
		assert.Nil(t, response.Supplier)
		svc.AssertExpectations(t)
	})

	t.Run("supplier with address is passed through", func(t *testing.T) {
		svc := new(MockProductService)
		body := validCreateBody()
		body["supplier"] = map[string]interface{}{
			"name":          "ACME Distribuidora",
			"legalDocument": "12.345.678/0001-90",
			"email":         "sales@acme.example",
			"phone":         "(11) 98765-4321",
			"address": map[string]interface{}{
				"street":     "Avenida Paulista",
				"number":     "1000",
				"district":   "Bela Vista",
				"cityName":   "Sao Paulo",
				"stateName":  "SP",
				"postalCode": "01310-100",
			},
		}

		detail := sampleDetail(0)
		detail.Supplier = &domain.Supplier{
			ID:            uuid.New(),
			Name:          "ACME Distribuidora",
			LegalDocument: "12.345.678/0001-90",
			Address:       &domain.Address{PostalCode: "01310-100", CityName: "Sao Paulo"},
		}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.ProductInput) bool {
			return in.Supplier != nil &&
				in.Supplier.LegalDocument == "12.345.678/0001-90" &&
				in.Supplier.Address != nil &&
				in.Supplier.Address.PostalCode == "01310-100"
		})).Return(detail, nil)

		w := doJSON(newRouter(svc, Guards{}), http.MethodPost, "/api/v1/product", body)

		require.Equal(t, http.StatusCreated, w.Code)
		var response ProductResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotNil(t, response.Supplier)
		require.NotNil(t, response.Supplier.Address)
		assert.Equal(t, "01310-100", response.Supplier.Address.PostalCode)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate barcode is a 400", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrProductAlreadyRegistered)

		w := doJSON(newRouter(svc, Guards{}), http.MethodPost, "/api/v1/product", validCreateBody())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, http.StatusBadRequest, response.Status)
		assert.Equal(t, "Product already registered!", response.Message)
	})

	t.Run("invalid fields never reach the service", func(t *testing.T) {
		svc := new(MockProductService)
		body := validCreateBody()
		body["category"] = "TOYS"
		body["stockQuantity"] = -1
		body["supplier"] = map[string]interface{}{"name": "ACME", "legalDocument": "123"}

		w := doJSON(newRouter(svc, Guards{}), http.MethodPost, "/api/v1/product", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "validation failed", response.Message)
		assert.Contains(t, w.Body.String(), "supplier.legalDocument")
		assert.Contains(t, w.Body.String(), "stockQuantity")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("prices the column cannot store are rejected", func(t *testing.T) {
		for _, price := range []string{"1.005", "12345678901.5"} {
			svc := new(MockProductService)
			body := validCreateBody()
			body["unitPrice"] = price

			w := doJSON(newRouter(svc, Guards{}), http.MethodPost, "/api/v1/product", body)

			assert.Equal(t, http.StatusBadRequest, w.Code, price)
			assert.Contains(t, w.Body.String(), "unitPrice", price)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		svc := new(MockProductService)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/product", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		newRouter(svc, Guards{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w).Message)
	})
}

func TestProperty_StockAdjustmentStatusMapping(t *testing.T) {
	properties := gopter.NewProperties(nil)

	kinds := []error{
		nil,
		domain.ErrStockExceeded,
		domain.ErrStockUnderflow,
		domain.ErrInvalidQuantity,
		domain.ErrProductNotFound,
		fmt.Errorf("failed to update stock: %w", context.DeadlineExceeded),
	}
	statuses := []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusBadRequest,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}

	properties.Property("service outcomes map to their fixed status", prop.ForAll(
		func(pick int, quantity int, increase bool) bool {
			svc := new(MockProductService)
			id := uuid.New()
			method, path := "DecreaseStock", "/decrease"
			if increase {
				method, path = "IncreaseStock", "/increase"
			}

			var detail *domain.ProductDetail
			if kinds[pick] == nil {
				detail = sampleDetail(quantity)
			}
			svc.On(method, mock.Anything, id, quantity).Return(detail, kinds[pick])

			w := doJSON(newRouter(svc, Guards{}), http.MethodPatch,
				"/api/v1/product/"+id.String()+path, map[string]int{"quantity": quantity})

			if w.Code != statuses[pick] {
				return false
			}
			if pick == 0 {
				var response ProductResponse
				return json.Unmarshal(w.Body.Bytes(), &response) == nil && response.StockQuantity == quantity
			}
			var response middleware.ErrorResponse
			return json.Unmarshal(w.Body.Bytes(), &response) == nil && response.Status == statuses[pick]
		},
		gen.IntRange(0, len(kinds)-1),
		gen.IntRange(-5, 200),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestStockAdjustment_RequiresQuantity(t *testing.T) {
	svc := new(MockProductService)
	w := doJSON(newRouter(svc, Guards{}), http.MethodPatch,
		"/api/v1/product/"+uuid.NewString()+"/increase", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity")
	svc.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockAdjustment_RejectsQuantitiesBeyondStockColumns(t *testing.T) {
	for _, path := range []string{"/increase", "/decrease"} {
		svc := new(MockProductService)
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/product/"+uuid.NewString()+path,
			bytes.NewBufferString(`{"quantity": 9223372036854775807}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newRouter(svc, Guards{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "quantity", path)
		svc.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
		svc.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestProperty_InvalidProductIDsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)
	svc := new(MockProductService)
	router := newRouter(svc, Guards{})

	properties.Property("non-UUID ids get 400 without a service call", prop.ForAll(
		func(id string) bool {
			w := doJSON(router, http.MethodGet, "/api/v1/product/"+id, nil)
			return w.Code == http.StatusBadRequest
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
	svc.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetProduct(t *testing.T) {
	svc := new(MockProductService)
	found := sampleDetail(42)
	missing := uuid.New()
	svc.On("FindByID", mock.Anything, found.Product.ID).Return(found, nil)
	svc.On("FindByID", mock.Anything, missing).Return(nil, domain.ErrProductNotFound)
	svc.On("FindByBarcode", mock.Anything, "7891234567890").Return(found, nil)
	svc.On("FindByBarcode", mock.Anything, "unknown").Return(nil, domain.ErrProductNotFound)
	router := newRouter(svc, Guards{})

	w := doJSON(router, http.MethodGet, "/api/v1/product/"+found.Product.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var response ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 42, response.StockQuantity)
	assert.Equal(t, found.Product.EntryDate, response.EntryDate)

	w = doJSON(router, http.MethodGet, "/api/v1/product/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found!", decodeError(t, w).Message)

	w = doJSON(router, http.MethodGet, "/api/v1/product/barcode/7891234567890", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/product/barcode/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProducts(t *testing.T) {
	t.Run("query parameters become the filter", func(t *testing.T) {
		svc := new(MockProductService)
		want := domain.ProductFilter{
			PageNumber: 2,
			PageSize:   25,
			Search:     "note",
			Categories: []domain.Category{domain.CategoryFood, domain.CategoryClothing, domain.CategoryOther},
		}
		svc.On("ListAll", mock.Anything, want).Return([]*domain.ProductDetail{sampleDetail(1)}, nil)

		w := doJSON(newRouter(svc, Guards{}), http.MethodGet,
			"/api/v1/product?pageNumber=2&pageSize=25&search=note&categories=FOOD,clothing&categories=OTHER", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var response []ProductResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response, 1)
		svc.AssertExpectations(t)
	})

	t.Run("empty page is an empty array", func(t *testing.T) {
		svc := new(MockProductService)
		svc.On("ListAll", mock.Anything, mock.Anything).Return([]*domain.ProductDetail{}, nil)

		w := doJSON(newRouter(svc, Guards{}), http.MethodGet, "/api/v1/product?pageNumber=9&pageSize=10", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	invalid := []string{
		"",
		"?pageSize=10",
		"?pageNumber=0",
		"?pageNumber=-1&pageSize=10",
		"?pageNumber=0&pageSize=0",
		"?pageNumber=0&pageSize=101",
		"?pageNumber=zero&pageSize=10",
		"?pageNumber=0&pageSize=10&categories=TOYS",
	}
	for _, query := range invalid {
		t.Run("rejects "+query, func(t *testing.T) {
			svc := new(MockProductService)
			w := doJSON(newRouter(svc, Guards{}), http.MethodGet, "/api/v1/product"+query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()
	updated := sampleDetail(5)
	updated.Product.ID = id
	updated.Product.Name = "Notebook Pro"

	svc.On("UpdateByID", mock.Anything, id, mock.MatchedBy(func(in service.ProductUpdateInput) bool {
		return in.Name == "Notebook Pro" && in.MaxStockLevel != nil && *in.MaxStockLevel == 50 && in.Supplier == nil
	})).Return(updated, nil)

	body := map[string]interface{}{
		"name":          "Notebook Pro",
		"category":      "ELECTRONIC",
		"unitPrice":     4200,
		"maxStockLevel": 50,
		"measureUnit":   "UNIT",
	}
	w := doJSON(newRouter(svc, Guards{}), http.MethodPut, "/api/v1/product/"+id.String(), body)

	require.Equal(t, http.StatusOK, w.Code)
	var response ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Notebook Pro", response.Name)
	svc.AssertExpectations(t)

	delete(body, "maxStockLevel")
	w = doJSON(newRouter(svc, Guards{}), http.MethodPut, "/api/v1/product/"+id.String(), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	svc := new(MockProductService)
	id := uuid.New()
	missing := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)
	svc.On("Delete", mock.Anything, missing).Return(domain.ErrProductNotFound)
	router := newRouter(svc, Guards{})

	w := doJSON(router, http.MethodDelete, "/api/v1/product/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doJSON(router, http.MethodDelete, "/api/v1/product/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuardsProtectMutatingRoutes(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
		})
	}
	svc := new(MockProductService)
	svc.On("ListAll", mock.Anything, mock.Anything).Return([]*domain.ProductDetail{}, nil)
	router := newRouter(svc, Guards{Write: deny, Delete: deny})
	id := uuid.NewString()

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/v1/product?pageNumber=0&pageSize=5", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodPost, "/api/v1/product", validCreateBody()).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodPut, "/api/v1/product/"+id, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodPatch, "/api/v1/product/"+id+"/increase", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodDelete, "/api/v1/product/"+id, nil).Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReadGuardWrapsLookups(t *testing.T) {
	var seen []string
	record := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Method)
			next.ServeHTTP(w, r)
		})
	}
	svc := new(MockProductService)
	svc.On("ListAll", mock.Anything, mock.Anything).Return([]*domain.ProductDetail{}, nil)
	svc.On("Delete", mock.Anything, mock.Anything).Return(nil)
	router := newRouter(svc, Guards{Read: record})

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/v1/product?pageNumber=0&pageSize=5", nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/api/v1/product/"+uuid.NewString(), nil).Code)
	assert.Equal(t, []string{http.MethodGet}, seen)
}
