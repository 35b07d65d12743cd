package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/hash"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
)

// MockUserRepository - mock репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRefreshTokenRepository - mock репозитория refresh токенов
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newAuthService() (*Service, *MockUserRepository, *MockRefreshTokenRepository) {
	userRepo := new(MockUserRepository)
	refreshRepo := new(MockRefreshTokenRepository)
	tokenService := jwt.NewTokenService("test-secret", 15*time.Minute, 24*time.Hour)
	return NewService(userRepo, refreshRepo, tokenService, logger.NewNoop()), userRepo, refreshRepo
}

// TestService_Register тестирует регистрацию пользователя
func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("успешная регистрация с ролью по умолчанию", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		userRepo.On("GetByEmail", ctx, "user@example.com").Return(nil, domain.ErrUserNotFound)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*domain.User)
				assert.Equal(t, domain.RoleUser, u.Role)
				assert.True(t, u.IsActive)
				// В репозиторий уходит хеш, а не пароль
				assert.True(t, hash.CheckPassword(u.PasswordHash, "password123"))
			}).
			Return(nil)

		user, err := svc.Register(ctx, &RegisterRequest{
			Email:    "user@example.com",
			Password: "password123",
			FullName: "Test User",
		})

		assert.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email)
		assert.Empty(t, user.PasswordHash)
		userRepo.AssertExpectations(t)
	})

	t.Run("короткий пароль отклоняется", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		userRepo.On("GetByEmail", ctx, "user@example.com").Return(nil, domain.ErrUserNotFound)

		user, err := svc.Register(ctx, &RegisterRequest{
			Email:    "user@example.com",
			Password: "short",
			FullName: "Test User",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPassword)
		assert.Nil(t, user)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email уже занят", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		existing := &domain.User{ID: uuid.New(), Email: "user@example.com"}
		userRepo.On("GetByEmail", ctx, "user@example.com").Return(existing, nil)

		user, err := svc.Register(ctx, &RegisterRequest{
			Email:    "user@example.com",
			Password: "password123",
			FullName: "Test User",
		})

		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		assert.Nil(t, user)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// TestService_ListUsers тестирует административный список пользователей
func TestService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("хеши паролей не попадают в ответ", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		users := []*domain.User{
			{ID: uuid.New(), Email: "first@example.com", FullName: "First", Role: domain.RoleUser, PasswordHash: "$2a$12$hash1", IsActive: true},
			{ID: uuid.New(), Email: "second@example.com", FullName: "Second", Role: domain.RoleAdmin, PasswordHash: "$2a$12$hash2", IsActive: true},
		}
		userRepo.On("List", ctx, 10, 0).Return(users, 2, nil)

		page, err := svc.ListUsers(ctx, domain.PageParams{Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		for _, u := range page.Data.([]*domain.User) {
			assert.Empty(t, u.PasswordHash)
		}
		userRepo.AssertExpectations(t)
	})

	t.Run("невалидная пагинация отклоняется", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		page, err := svc.ListUsers(ctx, domain.PageParams{Limit: -1})

		assert.Error(t, err)
		assert.Nil(t, page)
		userRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestService_UpdateUser тестирует административное обновление пользователя
func TestService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("деактивация отзывает refresh токены", func(t *testing.T) {
		svc, userRepo, refreshRepo := newAuthService()

		stored := &domain.User{
			ID: userID, Email: "user@example.com", FullName: "Test User",
			Role: domain.RoleUser, PasswordHash: "$2a$12$hash", IsActive: true,
		}
		userRepo.On("GetByID", ctx, userID).Return(stored, nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
		refreshRepo.On("RevokeAllUserTokens", ctx, userID).Return(nil)

		user, err := svc.UpdateUser(ctx, userID, &UpdateUserRequest{
			FullName: "Test User",
			Role:     domain.RoleUser,
			IsActive: false,
		})

		assert.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.Empty(t, user.PasswordHash)
		refreshRepo.AssertExpectations(t)
	})

	t.Run("активный пользователь сохраняет токены", func(t *testing.T) {
		svc, userRepo, refreshRepo := newAuthService()

		stored := &domain.User{
			ID: userID, Email: "user@example.com", FullName: "Test User",
			Role: domain.RoleUser, IsActive: true,
		}
		userRepo.On("GetByID", ctx, userID).Return(stored, nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.UpdateUser(ctx, userID, &UpdateUserRequest{
			FullName: "Test User",
			Role:     domain.RoleAdmin,
			IsActive: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		refreshRepo.AssertNotCalled(t, "RevokeAllUserTokens", mock.Anything, mock.Anything)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		svc, userRepo, _ := newAuthService()

		userRepo.On("GetByID", ctx, userID).Return(nil, domain.ErrUserNotFound)

		user, err := svc.UpdateUser(ctx, userID, &UpdateUserRequest{
			FullName: "Test User",
			Role:     domain.RoleUser,
			IsActive: true,
		})

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

// TestService_DeleteUser тестирует деактивацию пользователя
func TestService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("удаление отзывает refresh токены", func(t *testing.T) {
		svc, userRepo, refreshRepo := newAuthService()

		userRepo.On("Delete", ctx, userID).Return(nil)
		refreshRepo.On("RevokeAllUserTokens", ctx, userID).Return(nil)

		err := svc.DeleteUser(ctx, userID)

		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
		refreshRepo.AssertExpectations(t)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		svc, userRepo, refreshRepo := newAuthService()

		userRepo.On("Delete", ctx, userID).Return(domain.ErrUserNotFound)

		err := svc.DeleteUser(ctx, userID)

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		refreshRepo.AssertNotCalled(t, "RevokeAllUserTokens", mock.Anything, mock.Anything)
	})
}
