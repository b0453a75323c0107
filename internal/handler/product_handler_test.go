package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_GetAll(t *testing.T) {
	testProducts := []model.Product{
		{ID: 1, Name: "Product 1", BasePrice: decimal.NewFromInt(100), Price: decimal.NewFromInt(80)},
		{ID: 2, Name: "Product 2", BasePrice: decimal.NewFromInt(50), Price: decimal.NewFromInt(50)},
	}

	tests := []struct {
		name           string
		queryParams    string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		limit          int
		offset         int
	}{
		{
			name:           "Success with default pagination",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success with custom pagination",
			queryParams:    "?limit=5&offset=10",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          5,
			offset:         10,
		},
		{
			name:           "Invalid limit parameter",
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset parameter",
			queryParams:    "?offset=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, new(MockSaleService), zerolog.Nop())

			if tt.expectService {
				mockService.On("GetAll", mock.Anything, tt.limit, tt.offset).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.GetAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	product := &model.Product{ID: 1, Name: "Lamp", BasePrice: decimal.NewFromInt(100), Price: decimal.NewFromInt(80)}

	tests := []struct {
		name           string
		id             string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{"Success", "1", product, nil, http.StatusOK, true},
		{"Product not found", "1", nil, model.ErrProductNotFound, http.StatusNotFound, true},
		{"Invalid id", "P001", nil, nil, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, new(MockSaleService), zerolog.Nop())

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, int64(1)).Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil), "id", tt.id)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.True(t, got.Price.Equal(decimal.NewFromInt(80)), "effective price is exposed")
			}
			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestProductHandler_ListSales(t *testing.T) {
	sales := new(MockSaleService)
	handler := NewProductHandler(new(MockProductService), sales, zerolog.Nop())

	sales.On("ListByProduct", mock.Anything, int64(1)).Return([]model.ProductSale{*testSale(1)}, nil)
	sales.On("ListByProduct", mock.Anything, int64(2)).Return(nil, model.ErrProductNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/1/sales", nil), "id", "1")
	w := httptest.NewRecorder()
	handler.ListSales(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/2/sales", nil), "id", "2")
	w = httptest.NewRecorder()
	handler.ListSales(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	sales.AssertExpectations(t)
}
