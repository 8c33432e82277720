package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewUserService(users, tokens, zerolog.Nop())

	expires := time.Now().Add(time.Hour)
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ana@example.com" && u.Role == model.RoleCustomer && auth.CheckPassword(u.PasswordHash, "s3cret-pass")
	})).Return(nil)
	tokens.On("Issue", mock.AnythingOfType("*model.User")).Return("signed", expires, nil)

	resp, err := service.Register(ctx, &model.RegisterRequest{
		FullName: gofakeit.Name(),
		Email:    " Ana@Example.com ",
		Password: "s3cret-pass",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed", resp.Token)
	assert.Equal(t, expires, resp.ExpiresAt)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestUserService_Register_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *model.RegisterRequest
		want error
	}{
		{name: "nil", req: nil, want: model.ErrValidation},
		{name: "missing name", req: &model.RegisterRequest{Email: "a@b.co", Password: "longenough"}, want: model.ErrValidation},
		{name: "bad email", req: &model.RegisterRequest{FullName: "A", Email: "nope", Password: "longenough"}, want: model.ErrValidation},
		{name: "short password", req: &model.RegisterRequest{FullName: "A", Email: "a@b.co", Password: "short"}, want: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			service := NewUserService(users, new(MockTokenIssuer), zerolog.Nop())

			_, err := service.Register(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.want)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	service := NewUserService(users, new(MockTokenIssuer), zerolog.Nop())

	users.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)

	_, err := service.Register(ctx, &model.RegisterRequest{FullName: "Ana", Email: "ana@example.com", Password: "s3cret-pass"})

	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: hash, Role: model.RoleAdmin}

	tests := []struct {
		name     string
		req      *model.LoginRequest
		found    *model.User
		repoErr  error
		wantErr  error
		wantFail bool
	}{
		{name: "success", req: &model.LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"}, found: user},
		{name: "wrong password", req: &model.LoginRequest{Email: "ana@example.com", Password: "nope"}, found: user, wantErr: model.ErrInvalidCredentials},
		{name: "unknown email", req: &model.LoginRequest{Email: "who@example.com", Password: "s3cret-pass"}, wantErr: model.ErrInvalidCredentials},
		{name: "blank", req: &model.LoginRequest{}, wantErr: model.ErrInvalidCredentials},
		{name: "repository error", req: &model.LoginRequest{Email: "ana@example.com", Password: "x"}, repoErr: errors.New("down"), wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockTokenIssuer)
			service := NewUserService(users, tokens, zerolog.Nop())

			if tt.req.Email != "" {
				users.On("GetByEmail", ctx, tt.req.Email).Return(tt.found, tt.repoErr)
			}
			tokens.On("Issue", user).Return("signed", time.Now(), nil).Maybe()

			resp, err := service.Login(ctx, tt.req)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			case tt.wantFail:
				require.Error(t, err)
				assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.Equal(t, "signed", resp.Token)
				assert.Equal(t, user, resp.User)
			}
		})
	}
}

func TestUserService_Me(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	service := NewUserService(users, new(MockTokenIssuer), zerolog.Nop())

	actor := customer()
	users.On("GetByID", ctx, actor.UserID).Return(&model.User{ID: actor.UserID}, nil)

	user, err := service.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, user.ID)

	gone := customer()
	users.On("GetByID", ctx, gone.UserID).Return(nil, nil)

	_, err = service.Me(ctx, gone)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("admin", func(t *testing.T) {
		users := new(MockUserRepository)
		service := NewUserService(users, new(MockTokenIssuer), zerolog.Nop())

		users.On("List", mock.Anything, 10, 10).Return([]model.User{{Email: "a@b.co"}}, nil)
		users.On("Count", mock.Anything).Return(int64(11), nil)

		page, err := service.List(ctx, admin(), 2, 10)

		require.NoError(t, err)
		assert.Len(t, page.Users, 1)
		assert.Equal(t, 2, page.TotalPages)
		users.AssertExpectations(t)
	})

	t.Run("customer", func(t *testing.T) {
		service := NewUserService(new(MockUserRepository), new(MockTokenIssuer), zerolog.Nop())
		_, err := service.List(ctx, customer(), 1, 10)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
