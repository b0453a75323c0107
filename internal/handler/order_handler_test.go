package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testOrder(id int64) *model.Order {
	return &model.Order{
		ID:              id,
		CustomerName:    "Jane",
		CustomerPhone:   "555-0100",
		CustomerAddress: "1 Main St",
		TotalAmount:     decimal.NewFromInt(210),
		Status:          model.OrderStatusPending,
		Details: []model.OrderDetail{
			{ID: 1, OrderID: id, ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(80)},
			{ID: 2, OrderID: id, ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(50)},
		},
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestOrderHandler_Create(t *testing.T) {
	validRequest := &model.CreateOrderRequest{
		CustomerName:    "Jane",
		CustomerPhone:   "555-0100",
		CustomerAddress: "1 Main St",
		OrderDetails: []model.OrderDetailRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    validRequest,
			mockReturn:     testOrder(1),
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Product not found",
			requestBody:    validRequest,
			mockError:      fmt.Errorf("%w: product 99", model.ErrProductNotFound),
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Empty order",
			requestBody:    &model.CreateOrderRequest{CustomerName: "Jane"},
			mockError:      model.ErrEmptyOrder,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid quantity",
			requestBody:    validRequest,
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Service internal error",
			requestBody:    validRequest,
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.CreateOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", jsonBody(t, tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var order model.Order
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
				assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(210)))
				assert.Len(t, order.Details, 2)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_Create_PrincipalOwnership(t *testing.T) {
	explicit := int64(7)
	own := int64(42)

	tests := []struct {
		name       string
		principal  *middleware.Principal
		userID     *int64
		expectedID *int64
	}{
		{
			name:       "Customer defaults to own id",
			principal:  &middleware.Principal{UserID: 42, Role: middleware.RoleCustomer},
			expectedID: &own,
		},
		{
			name:       "Customer cannot order for another user",
			principal:  &middleware.Principal{UserID: 42, Role: middleware.RoleCustomer},
			userID:     &explicit,
			expectedID: &own,
		},
		{
			name:       "Admin may order for another user",
			principal:  &middleware.Principal{UserID: 1, Role: middleware.RoleAdmin},
			userID:     &explicit,
			expectedID: &explicit,
		},
		{
			name:      "Admin does not become owner",
			principal: &middleware.Principal{UserID: 1, Role: middleware.RoleAdmin},
		},
		{
			name: "Anonymous request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			mockService.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *model.CreateOrderRequest) bool {
				if tt.expectedID == nil {
					return req.UserID == nil
				}
				return req.UserID != nil && *req.UserID == *tt.expectedID
			})).Return(testOrder(1), nil)

			body := &model.CreateOrderRequest{
				UserID:          tt.userID,
				CustomerName:    "Jane",
				CustomerPhone:   "555-0100",
				CustomerAddress: "1 Main St",
				OrderDetails:    []model.OrderDetailRequest{{ProductID: 1, Quantity: 1}},
			}
			req := httptest.NewRequest(http.MethodPost, "/api/orders", jsonBody(t, body))
			if tt.principal != nil {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Update(t *testing.T) {
	completed := model.OrderStatusCompleted

	tests := []struct {
		name           string
		id             string
		requestBody    interface{}
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			id:             "5",
			requestBody:    &model.UpdateOrderRequest{Status: &completed},
			mockReturn:     testOrder(5),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Transition out of terminal state",
			id:             "5",
			requestBody:    &model.UpdateOrderRequest{Status: &completed},
			mockError:      model.ErrInvalidStatusTransition,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Order not found",
			id:             "5",
			requestBody:    &model.UpdateOrderRequest{Status: &completed},
			mockError:      fmt.Errorf("%w: order 5", model.ErrOrderNotFound),
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid id",
			id:             "abc",
			requestBody:    &model.UpdateOrderRequest{Status: &completed},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			id:             "5",
			requestBody:    "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("UpdateOrder", mock.Anything, int64(5), mock.AnythingOfType("*model.UpdateOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/orders/"+tt.id, jsonBody(t, tt.requestBody))
			req = withURLParam(req, "id", tt.id)
			w := httptest.NewRecorder()

			handler.Update(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{"Success", "3", testOrder(3), nil, http.StatusOK, true},
		{"Order not found", "3", nil, model.ErrOrderNotFound, http.StatusNotFound, true},
		{"Service error", "3", nil, errors.New("timeout"), http.StatusInternalServerError, true},
		{"Invalid id", "0", nil, nil, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, int64(3)).Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.id, nil), "id", tt.id)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("List", mock.Anything, 20, 40).Return([]model.Order{*testOrder(1)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=20&offset=40", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	t.Run("Invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=many", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_MyOrders(t *testing.T) {
	t.Run("Uses the principal id", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("ListByUser", mock.Anything, int64(42), 0, 0).
			Return([]model.Order{*testOrder(2), *testOrder(1)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/my-orders", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: 42, Role: middleware.RoleCustomer}))
		w := httptest.NewRecorder()

		handler.MyOrders(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var orders []model.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
		assert.Equal(t, []int64{2, 1}, []int64{orders[0].ID, orders[1].ID})
		mockService.AssertExpectations(t)
	})

	t.Run("Requires a principal", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())

		req := httptest.NewRequest(http.MethodGet, "/api/orders/my-orders", nil)
		w := httptest.NewRecorder()

		handler.MyOrders(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{"Deleted", nil, http.StatusNoContent},
		{"Not found", fmt.Errorf("%w: order 8", model.ErrOrderNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())
			mockService.On("Delete", mock.Anything, int64(8)).Return(tt.mockError)

			req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/orders/8", nil), "id", "8")
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
