package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/hash"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository"
)

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"full_name" validate:"required"`
	Role     domain.UserRole `json:"role,omitempty"`
}

// UpdateUserRequest - административное обновление пользователя
type UpdateUserRequest struct {
	FullName string          `json:"full_name" validate:"required"`
	Role     domain.UserRole `json:"role" validate:"required"`
	IsActive bool            `json:"is_active"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - ответ на вход
type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    string       `json:"expires_at"`
}

// minPasswordLength - минимальная длина пароля при регистрации
const minPasswordLength = 8

// Service содержит бизнес-логику аутентификации
type Service struct {
	userRepo     repository.UserRepository
	refreshRepo  repository.RefreshTokenRepository
	tokenService *jwt.TokenService
	logger       logger.Logger
}

// NewService создает новый экземпляр AuthService
func NewService(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	tokenService *jwt.TokenService,
	logger logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		refreshRepo:  refreshRepo,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register регистрирует нового пользователя
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	s.logger.Info("Registering new user", map[string]interface{}{
		"email": req.Email,
	})

	// Проверяем, что пользователь с таким email еще не существует
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && err != domain.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existingUser != nil {
		s.logger.Warn("User already exists", map[string]interface{}{
			"email": req.Email,
		})
		return nil, domain.ErrUserAlreadyExists
	}

	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	// Хешируем пароль
	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}

	// Если роль не указана, устанавливаем по умолчанию "user"
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	// Не возвращаем password_hash
	user.PasswordHash = ""

	return user, nil
}

// Login аутентифицирует пользователя и возвращает JWT токены
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	s.logger.Info("User login attempt", map[string]interface{}{
		"email": req.Email,
	})

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": req.Email,
			})
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		s.logger.Warn("Login failed: user inactive", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, domain.ErrUserInactive
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, domain.ErrInvalidCredentials
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to generate tokens", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Сохраняем хеш refresh токена для возможности отзыва
	if err := s.storeRefreshToken(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		s.logger.Error("Failed to store refresh token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("Failed to update last login", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	user.PasswordHash = ""

	return &LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// Refresh обменивает действующий refresh token на новую пару токенов.
// Использованный токен отзывается (ротация)
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	tokenHash := jwt.HashToken(refreshToken)

	stored, err := s.refreshRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if err == domain.ErrInvalidToken {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !stored.IsValid() {
		return nil, domain.ErrTokenExpired
	}

	claims, err := s.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.UserID != stored.UserID {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Ротация: старый токен отзывается, новый сохраняется
	if err := s.refreshRepo.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info("Tokens refreshed", map[string]interface{}{
		"user_id": user.ID,
	})

	user.PasswordHash = ""

	return &LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// Logout отзывает refresh token пользователя
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := jwt.HashToken(refreshToken)
	if err := s.refreshRepo.Revoke(ctx, tokenHash); err != nil {
		if err == domain.ErrInvalidToken {
			// Токен уже отозван или не существовал
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// GetUserByID возвращает пользователя по ID
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return user, nil
}

// ValidateToken валидирует JWT токен и возвращает claims
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenService.ValidateToken(tokenString)
}

// ListUsers возвращает пользователей с пагинацией (административная операция)
func (s *Service) ListUsers(ctx context.Context, params domain.PageParams) (*domain.Page, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		u.PasswordHash = ""
	}

	return domain.NewPage(params, total, users), nil
}

// UpdateUser обновляет имя, роль и активность пользователя
// (административная операция)
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Role = req.Role
	user.IsActive = req.IsActive

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// Деактивированный пользователь теряет и refresh токены
	if !user.IsActive {
		if err := s.refreshRepo.RevokeAllUserTokens(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke user tokens: %w", err)
		}
	}

	s.logger.Info("User updated", map[string]interface{}{
		"user_id":   user.ID,
		"role":      user.Role,
		"is_active": user.IsActive,
	})

	user.PasswordHash = ""

	return user, nil
}

// DeleteUser мягко удаляет пользователя и отзывает его refresh токены
// (административная операция)
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.refreshRepo.RevokeAllUserTokens(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	s.logger.Info("User deactivated", map[string]interface{}{
		"user_id": id,
	})

	return nil
}

func (s *Service) storeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	claims, err := s.tokenService.ExtractClaims(token)
	if err != nil {
		return err
	}

	return s.refreshRepo.Create(ctx, &domain.RefreshToken{
		UserID:    userID,
		TokenHash: jwt.HashToken(token),
		ExpiresAt: claims.ExpiresAt.Time,
	})
}
