package integration

import (
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	buyer = model.Customer{FullName: "Ana Gómez", NationalID: "30111222", Email: "ana@example.com", Phone: "+54 11 5555 0000"}
	home  = model.ShippingAddress{Street: "Av. Corrientes 1234", Locality: "CABA", Province: "Buenos Aires", Country: "Argentina"}
)

// seedCatalog creates a category and two products through the admin API.
func seedCatalog(t *testing.T, s *TestServer, adminToken string) {
	t.Helper()

	var category model.Category
	s.Do(t, request{method: http.MethodPost, path: "/api/categories", token: adminToken, body: model.CategoryRequest{Name: "Comedor"}}, http.StatusCreated, &category)

	for _, p := range []model.ProductRequest{
		{ID: "MESA-001", Name: "Mesa Pampa", Price: decimal.NewFromInt(60000), Stock: 5, CategoryID: category.ID},
		{ID: "SILLA-001", Name: "Silla Belgrano", Price: decimal.NewFromInt(15000), Stock: 20, CategoryID: category.ID},
	} {
		s.Do(t, request{method: http.MethodPost, path: "/api/products", token: adminToken, body: p}, http.StatusCreated, nil)
	}
}

func TestCheckoutFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := SetupTestServer(t)
	admin := s.CreateAdmin(t)
	seedCatalog(t, s, admin)
	customer := s.Register(t, "Ana Gómez")

	t.Run("guest cart is kept by session", func(t *testing.T) {
		session := uuid.NewString()

		var view cart.View
		s.Do(t, request{method: http.MethodPost, path: "/api/cart/items", session: session, body: map[string]any{"productId": "SILLA-001", "quantity": 2}}, http.StatusOK, &view)
		assert.Equal(t, 2, view.Count)
		assert.True(t, decimal.NewFromInt(55000).Equal(view.Total), "30000 plus standard shipping")

		s.Do(t, request{method: http.MethodGet, path: "/api/cart", session: uuid.NewString()}, http.StatusOK, &view)
		assert.Empty(t, view.Items)
	})

	var transferOrder model.Order
	t.Run("checkout turns the cart into an order", func(t *testing.T) {
		s.Do(t, request{method: http.MethodPost, path: "/api/cart/items", token: customer, body: map[string]any{"productId": "MESA-001"}}, http.StatusOK, nil)
		s.Do(t, request{method: http.MethodPost, path: "/api/cart/items/SILLA-001/increment", token: customer}, http.StatusNotFound, nil)
		s.Do(t, request{method: http.MethodPost, path: "/api/cart/items", token: customer, body: map[string]any{"productId": "SILLA-001", "quantity": 3}}, http.StatusOK, nil)

		var view cart.View
		s.Do(t, request{method: http.MethodPost, path: "/api/cart/items/SILLA-001/decrement", token: customer}, http.StatusOK, &view)
		assert.Equal(t, 3, view.Count)
		assert.True(t, decimal.NewFromInt(90000).Equal(view.Subtotal))
		assert.True(t, decimal.NewFromInt(115000).Equal(view.Total))

		s.Do(t, request{
			method: http.MethodPost,
			path:   "/api/cart/checkout",
			token:  customer,
			body:   model.CheckoutRequest{Customer: buyer, ShippingAddress: home, Payment: model.PaymentRequest{Method: model.PaymentTransfer}},
		}, http.StatusCreated, &transferOrder)

		assert.Equal(t, int64(1), transferOrder.OrderNumber)
		assert.Equal(t, model.StatusCreated, transferOrder.Status)
		assert.Equal(t, model.PaymentPending, transferOrder.Payment.Status)
		assert.Equal(t, testAlias, transferOrder.Payment.Alias)
		assert.Equal(t, testCurrency, transferOrder.Currency)
		assert.Len(t, transferOrder.Items, 2)
		assert.True(t, decimal.NewFromInt(115000).Equal(transferOrder.Total))

		s.Do(t, request{method: http.MethodGet, path: "/api/cart", token: customer}, http.StatusOK, &view)
		assert.Empty(t, view.Items)
	})

	t.Run("empty cart cannot be checked out", func(t *testing.T) {
		s.Do(t, request{
			method: http.MethodPost,
			path:   "/api/cart/checkout",
			token:  customer,
			body:   model.CheckoutRequest{Customer: buyer, ShippingAddress: home, Payment: model.PaymentRequest{Method: model.PaymentCash}},
		}, http.StatusBadRequest, nil)
	})

	var cashOrder model.Order
	t.Run("direct order gets the next number", func(t *testing.T) {
		s.Do(t, request{
			method: http.MethodPost,
			path:   "/api/orders",
			token:  customer,
			body: model.OrderRequest{
				Customer:        buyer,
				ShippingAddress: home,
				Payment:         model.PaymentRequest{Method: model.PaymentCash},
				Items:           []model.OrderItemRequest{{ProductID: "MESA-001", Quantity: 2}},
			},
		}, http.StatusCreated, &cashOrder)

		assert.Equal(t, int64(2), cashOrder.OrderNumber)
		assert.True(t, decimal.Zero.Equal(cashOrder.ShippingCost), "free shipping over the threshold")
	})

	t.Run("customer sees only their orders", func(t *testing.T) {
		var page model.OrderPage
		s.Do(t, request{method: http.MethodGet, path: "/api/orders/mine?limit=1", token: customer}, http.StatusOK, &page)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Orders, 1)
		assert.Equal(t, cashOrder.ID, page.Orders[0].ID)

		stranger := s.Register(t, "Otro Cliente")
		s.Do(t, request{method: http.MethodGet, path: "/api/orders/mine/" + transferOrder.ID.String(), token: stranger}, http.StatusNotFound, nil)
		s.Do(t, request{method: http.MethodPut, path: "/api/orders/" + transferOrder.ID.String() + "/cancel", token: stranger}, http.StatusNotFound, nil)
	})

	t.Run("receipt upload for transfer orders", func(t *testing.T) {
		var resp model.OrderResponse
		s.Do(t, request{
			method:      http.MethodPut,
			path:        "/api/orders/" + transferOrder.ID.String() + "/receipt",
			token:       customer,
			contentType: "application/pdf",
			body:        []byte("%PDF-1.7 comprobante"),
		}, http.StatusOK, &resp)
		assert.Contains(t, resp.Payment.ProofRef, fmt.Sprintf("%d-", transferOrder.OrderNumber))

		s.Do(t, request{
			method:      http.MethodPut,
			path:        "/api/orders/" + transferOrder.ID.String() + "/receipt",
			token:       customer,
			contentType: "text/plain",
			body:        []byte("hola"),
		}, http.StatusBadRequest, nil)

		receiptPath := "/api/orders/" + transferOrder.ID.String() + "/receipt"
		w := s.Do(t, request{method: http.MethodGet, path: receiptPath, token: customer}, http.StatusOK, nil)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-1.7 comprobante", w.Body.String())

		s.Do(t, request{method: http.MethodGet, path: "/api/orders/" + cashOrder.ID.String() + "/receipt", token: customer}, http.StatusNotFound, nil)
	})

	t.Run("customer may only cancel", func(t *testing.T) {
		s.Do(t, request{method: http.MethodPut, path: "/api/orders/" + cashOrder.ID.String() + "/status", token: customer, body: map[string]string{"status": "shipped"}}, http.StatusForbidden, nil)

		var resp model.OrderResponse
		s.Do(t, request{method: http.MethodPut, path: "/api/orders/" + cashOrder.ID.String() + "/cancel", token: customer}, http.StatusOK, &resp)
		assert.Equal(t, model.StatusCancelled, resp.Status)
		assert.Empty(t, resp.NextStatuses)

		s.Do(t, request{method: http.MethodPut, path: "/api/orders/" + cashOrder.ID.String() + "/cancel", token: customer}, http.StatusForbidden, nil)
	})

	t.Run("admin manages any order", func(t *testing.T) {
		var resp model.OrderResponse
		s.Do(t, request{
			method: http.MethodPut,
			path:   "/api/orders/" + transferOrder.ID.String() + "/status",
			token:  admin,
			body:   map[string]any{"status": "confirmed", "payment": map[string]string{"paymentStatus": "approved"}},
		}, http.StatusOK, &resp)
		assert.Equal(t, model.StatusConfirmed, resp.Status)
		assert.Equal(t, model.PaymentApproved, resp.Payment.Status)

		var page model.OrderPage
		s.Do(t, request{method: http.MethodGet, path: "/api/orders?status=confirmed", token: admin}, http.StatusOK, &page)
		require.Len(t, page.Orders, 1)
		assert.Equal(t, transferOrder.ID, page.Orders[0].ID)

		s.Do(t, request{method: http.MethodGet, path: "/api/orders?status=lost", token: admin}, http.StatusBadRequest, nil)
		s.Do(t, request{method: http.MethodGet, path: "/api/orders", token: customer}, http.StatusForbidden, nil)
	})
}

func TestCheckoutRepricesStaleCart_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := SetupTestServer(t)
	admin := s.CreateAdmin(t)
	seedCatalog(t, s, admin)
	customer := s.Register(t, "Ana Gómez")

	s.Do(t, request{method: http.MethodPost, path: "/api/cart/items", token: customer, body: map[string]any{"productId": "SILLA-001", "quantity": 2}}, http.StatusOK, nil)

	var product model.Product
	s.Do(t, request{method: http.MethodGet, path: "/api/products/SILLA-001", token: customer}, http.StatusOK, &product)
	s.Do(t, request{
		method: http.MethodPut,
		path:   "/api/products/SILLA-001",
		token:  admin,
		body:   model.ProductRequest{Name: product.Name, Price: decimal.NewFromInt(18000), Stock: product.Stock, CategoryID: product.CategoryID},
	}, http.StatusOK, nil)

	checkout := request{
		method: http.MethodPost,
		path:   "/api/cart/checkout",
		token:  customer,
		body:   model.CheckoutRequest{Customer: buyer, ShippingAddress: home, Payment: model.PaymentRequest{Method: model.PaymentCard, CardBrand: "visa", CardLast4: "4242"}},
	}

	var errResp model.ErrorResponse
	s.Do(t, checkout, http.StatusBadRequest, &errResp)
	assert.Equal(t, model.ErrCodeTotalsMismatch, errResp.Error)

	var view cart.View
	s.Do(t, request{method: http.MethodGet, path: "/api/cart", token: customer}, http.StatusOK, &view)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(18000).Equal(view.Items[0].Price))

	var order model.Order
	s.Do(t, checkout, http.StatusCreated, &order)
	assert.True(t, decimal.NewFromInt(61000).Equal(order.Total))
	assert.Equal(t, "4242", order.Payment.CardLast4)
}
