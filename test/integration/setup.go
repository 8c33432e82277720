// Package integration drives the full HTTP stack against a real PostgreSQL.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/database/databasetest"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/receipt"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "integration-secret-0123"
	testCurrency = "ARS"
	testAlias    = "muebleria.test"
)

// TestServer is the API wired to a throwaway database.
type TestServer struct {
	Handler http.Handler
	DB      *databasetest.TestDB
	Users   repository.UserRepository
}

// SetupTestServer starts PostgreSQL and builds the production router on it.
func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	db := databasetest.Start(t)

	receipts, err := receipt.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	tokens := auth.NewTokenManager(testSecret, time.Hour)
	rule := pricing.DefaultRule()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	userRepo := repository.NewUserRepository(db.Pool, logger)

	orderService := service.NewOrderService(
		repository.NewOrderRepository(db.Pool, logger),
		productRepo,
		receipts,
		nil,
		service.OrderSettings{Pricing: rule, Currency: testCurrency, PaymentAlias: testAlias, MaxReceiptBytes: 1 << 20},
		logger,
	)
	cartService := service.NewCartService(repository.NewCartRepository(db.Pool, logger), productRepo, orderService, rule, testCurrency, logger)

	h := router.New(router.Handlers{
		Products:   handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(repository.NewCategoryRepository(db.Pool, logger), logger), logger),
		Users:      handler.NewUserHandler(service.NewUserService(userRepo, tokens, logger), logger),
		Cart:       handler.NewCartHandler(cartService, logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
	}, router.Options{
		Tokens:  tokens,
		Metrics: metrics.New(),
		DB:      db.Pool,
	}, logger)

	return &TestServer{Handler: h, DB: db, Users: userRepo}
}

// Reset empties the database between subtests.
func (s *TestServer) Reset(t *testing.T) {
	t.Helper()
	databasetest.Truncate(t, s.DB.Pool)
}

// CreateAdmin stores an admin account directly, since registration only
// creates customers, and returns its bearer token.
func (s *TestServer) CreateAdmin(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)

	email := "admin-" + uuid.NewString()[:8] + "@example.com"
	require.NoError(t, s.Users.Create(context.Background(), &model.User{
		ID:           uuid.New(),
		FullName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}))

	var resp model.AuthResponse
	s.Do(t, request{method: http.MethodPost, path: "/api/auth/login", body: model.LoginRequest{Email: email, Password: "admin-password"}}, http.StatusOK, &resp)
	return resp.Token
}

// Register signs up a customer and returns its bearer token.
func (s *TestServer) Register(t *testing.T, name string) string {
	t.Helper()

	var resp model.AuthResponse
	s.Do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body: model.RegisterRequest{
			FullName: name,
			Email:    uuid.NewString()[:8] + "@example.com",
			Password: "customer-password",
		},
	}, http.StatusCreated, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type request struct {
	method      string
	path        string
	token       string
	session     string
	contentType string
	body        any
}

// Do sends req, asserts the status and decodes the response into out when set.
func (s *TestServer) Do(t *testing.T, req request, wantStatus int, out any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	switch b := req.body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if req.contentType != "" {
		r.Header.Set("Content-Type", req.contentType)
	} else {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.session != "" {
		r.Header.Set(handler.CartSessionHeader, req.session)
	}

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, r)

	require.Equal(t, wantStatus, w.Code, "body: %s", w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}
