package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCartHandler_OwnerResolution(t *testing.T) {
	session := uuid.New()

	tests := []struct {
		name           string
		actor          *model.Actor
		session        string
		wantOwner      string
		expectedStatus int
	}{
		{
			name:           "signed in user",
			actor:          &testCustomer,
			session:        session.String(),
			wantOwner:      cart.UserKey(testCustomer.UserID),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "guest session",
			session:        session.String(),
			wantOwner:      "anon:" + session.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "guest without session",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "guest with malformed session",
			session:        "../../user:123",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, zerolog.Nop())

			if tt.wantOwner != "" {
				mockService.On("Get", mock.Anything, tt.wantOwner).Return(&cart.View{Items: []cart.Item{}}, nil)
			}

			req := newRequest(http.MethodGet, "/api/cart", nil, tt.actor)
			if tt.session != "" {
				req.Header.Set(CartSessionHeader, tt.session)
			}
			w := httptest.NewRecorder()

			handler.Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusBadRequest {
				assert.Equal(t, model.ErrCodeValidation, decodeError(t, w).Error)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	owner := cart.UserKey(testCustomer.UserID)

	tests := []struct {
		name           string
		body           string
		wantQuantity   int
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "default quantity", body: `{"productId":"SILLA-01"}`, wantQuantity: 1, expectedStatus: http.StatusOK, expectService: true},
		{name: "explicit quantity", body: `{"productId":"SILLA-01","quantity":3}`, wantQuantity: 3, expectedStatus: http.StatusOK, expectService: true},
		{name: "zero quantity", body: `{"productId":"SILLA-01","quantity":0}`, wantQuantity: 0, mockError: model.ErrInvalidQuantity, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "unknown product", body: `{"productId":"NOPE","quantity":1}`, wantQuantity: 1, mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "invalid JSON", body: `{"productId":`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, zerolog.Nop())

			if tt.expectService {
				var view *cart.View
				if tt.mockError == nil {
					view = &cart.View{Items: []cart.Item{{ProductID: "SILLA-01", Quantity: tt.wantQuantity}}, Count: tt.wantQuantity}
				}
				mockService.On("AddItem", mock.Anything, owner, mock.AnythingOfType("string"), tt.wantQuantity).
					Return(view, tt.mockError)
			}

			w := httptest.NewRecorder()
			handler.AddItem(w, newRequest(http.MethodPost, "/api/cart/items", tt.body, &testCustomer))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_ItemOperations(t *testing.T) {
	owner := cart.UserKey(testCustomer.UserID)
	view := &cart.View{Items: []cart.Item{}}

	tests := []struct {
		name   string
		method string
		call   func(h *CartHandler) http.HandlerFunc
	}{
		{name: "RemoveItem", method: http.MethodDelete, call: func(h *CartHandler) http.HandlerFunc { return h.RemoveItem }},
		{name: "IncrementItem", method: http.MethodPost, call: func(h *CartHandler) http.HandlerFunc { return h.Increment }},
		{name: "DecrementItem", method: http.MethodPost, call: func(h *CartHandler) http.HandlerFunc { return h.Decrement }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, zerolog.Nop())
			mockService.On(tt.name, mock.Anything, owner, "MESA-001").Return(view, nil)

			req := newRequest(tt.method, "/api/cart/items/MESA-001", nil, &testCustomer)
			req.SetPathValue("productId", "MESA-001")
			w := httptest.NewRecorder()

			tt.call(handler)(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_RemoveMissingItem(t *testing.T) {
	owner := cart.UserKey(testCustomer.UserID)
	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, zerolog.Nop())
	mockService.On("RemoveItem", mock.Anything, owner, "MESA-001").Return(nil, cart.ErrItemNotFound)

	req := newRequest(http.MethodDelete, "/", nil, &testCustomer)
	req.SetPathValue("productId", "MESA-001")
	w := httptest.NewRecorder()

	handler.RemoveItem(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_Clear(t *testing.T) {
	session := uuid.NewString()
	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, zerolog.Nop())
	mockService.On("Clear", mock.Anything, "anon:"+session).Return(&cart.View{Items: []cart.Item{}}, nil)

	req := newRequest(http.MethodDelete, "/api/cart", nil, nil)
	req.Header.Set(CartSessionHeader, session)
	w := httptest.NewRecorder()

	handler.Clear(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
	mockService.AssertExpectations(t)
}

func TestCartHandler_Checkout(t *testing.T) {
	body := `{"customer":{"fullName":"Ana"},"payment":{"method":"transfer"}}`

	tests := []struct {
		name           string
		actor          *model.Actor
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "created", actor: &testCustomer, mockReturn: &model.Order{OrderNumber: 7}, expectedStatus: http.StatusCreated, expectService: true},
		{name: "empty cart", actor: &testCustomer, mockError: model.ErrEmptyCart, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "prices changed", actor: &testCustomer, mockError: model.ErrTotalsMismatch, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "guest", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("Checkout", mock.Anything, *tt.actor, mock.MatchedBy(func(req *model.CheckoutRequest) bool {
					return req.Customer.FullName == "Ana" && req.Payment.Method == model.PaymentTransfer
				})).Return(tt.mockReturn, tt.mockError)
			}

			w := httptest.NewRecorder()
			handler.Checkout(w, newRequest(http.MethodPost, "/api/cart/checkout", body, tt.actor))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
