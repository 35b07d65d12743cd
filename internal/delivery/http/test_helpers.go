package http

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
)

// CreateTestUser создает тестового пользователя
func CreateTestUser(id uuid.UUID, email, role string) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    email,
		FullName: "Test User",
		Role:     domain.UserRole(role),
		IsActive: true,
	}
}

// CreateTestEquipment создает тестовую единицу техники
func CreateTestEquipment(id, ownerID uuid.UUID, code string) *domain.Equipment {
	return &domain.Equipment{
		ID:            id,
		OwnerID:       ownerID,
		EquipmentType: "truck",
		LicensePlate:  "А123ВС777",
		Code:          code,
	}
}

// CreateTestPlan создает тестовый план обслуживания
func CreateTestPlan(id, ownerID uuid.UUID, name string) *domain.MaintenancePlan {
	return &domain.MaintenancePlan{
		ID:      id,
		OwnerID: ownerID,
		Name:    name,
	}
}

// CreateTestStage создает тестовый этап плана
func CreateTestStage(id, planID uuid.UUID, km, days, index int) *domain.MaintenanceStage {
	return &domain.MaintenanceStage{
		ID:         id,
		PlanID:     planID,
		TypeID:     uuid.New(),
		Kilometers: km,
		Days:       days,
		StageIndex: index,
	}
}

// CreateTestType создает тестовый узел дерева категорий
func CreateTestType(id, ownerID uuid.UUID, name, path string, level int) *domain.MaintenanceType {
	return &domain.MaintenanceType{
		ID:      id,
		OwnerID: ownerID,
		Type:    name,
		Path:    path,
		Level:   level,
	}
}

// CreateAuthContext создает контекст с claims пользователя для тестирования
func CreateAuthContext(t *testing.T, userID uuid.UUID, email string, role domain.UserRole) context.Context {
	t.Helper()
	claims := &jwt.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	return context.WithValue(context.Background(), middleware.UserClaimsKey, claims)
}

// CreateTestJWTToken создает тестовый JWT токен
func CreateTestJWTToken(user *domain.User, secretKey string) (string, error) {
	tokenService := jwt.NewTokenService(secretKey, 15*time.Minute, 7*24*time.Hour)
	tokenPair, err := tokenService.GenerateTokenPair(user)
	if err != nil {
		return "", err
	}
	return tokenPair.AccessToken, nil
}

// AssertSuccess проверяет успешный ответ API
func AssertSuccess(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || !success {
		t.Errorf("Expected success=true, got %v", response)
	}
}

// AssertError проверяет ошибочный ответ API
func AssertError(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || success {
		t.Errorf("Expected success=false, got %v", response)
	}
}
