package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/config"
	"github.com/vkuznets/upkeep/internal/pkg/database"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/repository/postgres"
	"github.com/vkuznets/upkeep/internal/usecase/auth"
	"github.com/vkuznets/upkeep/internal/usecase/equipment"
	"github.com/vkuznets/upkeep/internal/usecase/mtype"
	"github.com/vkuznets/upkeep/internal/usecase/plan"
	"github.com/vkuznets/upkeep/internal/usecase/stage"
)

// Наполняет базу демонстрационными данными: admin и demo пользователи,
// дерево категорий, план ТО с этапами и техника. Повторный запуск
// завершается без изменений, если demo пользователь уже существует
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	if err := database.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	log.Println("🌱 Starting database seeding...")

	userRepo := postgres.NewUserRepository(db)
	refreshRepo := postgres.NewRefreshTokenRepository(db)
	typeRepo := postgres.NewMaintenanceTypeRepository(db)
	planRepo := postgres.NewMaintenancePlanRepository(db)
	stageRepo := postgres.NewMaintenanceStageRepository(db)
	equipmentRepo := postgres.NewEquipmentRepository(db)

	noop := logger.NewNoop()
	tokenService := jwt.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	authService := auth.NewService(userRepo, refreshRepo, tokenService, noop)
	typeService := mtype.NewService(typeRepo, noop)
	planService := plan.NewService(planRepo, stageRepo, noop)
	stageService := stage.NewService(stageRepo, planRepo, typeRepo, noop)
	equipmentService := equipment.NewService(equipmentRepo, planRepo, noop)

	if _, err := userRepo.GetByEmail(ctx, "demo@upkeep.local"); err == nil {
		log.Println("Database already seeded, nothing to do")
		return
	}

	if err := seedUsers(ctx, authService); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	demo, err := userRepo.GetByEmail(ctx, "demo@upkeep.local")
	if err != nil {
		log.Fatalf("Failed to get demo user: %v", err)
	}

	typeIDs, err := seedTypes(ctx, typeService, demo.ID)
	if err != nil {
		log.Fatalf("Failed to seed maintenance types: %v", err)
	}

	planID, err := seedPlan(ctx, planService, stageService, demo.ID, typeIDs)
	if err != nil {
		log.Fatalf("Failed to seed maintenance plan: %v", err)
	}

	if err := seedEquipment(ctx, equipmentService, demo.ID, planID); err != nil {
		log.Fatalf("Failed to seed equipment: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedUsers(ctx context.Context, authService *auth.Service) error {
	users := []*auth.RegisterRequest{
		{
			Email:    "admin@upkeep.local",
			Password: "admin-password",
			FullName: "Администратор UPKEEP",
			Role:     domain.RoleAdmin,
		},
		{
			Email:    "demo@upkeep.local",
			Password: "demo-password",
			FullName: "Демо Пользователь",
			Role:     domain.RoleUser,
		},
	}

	for _, req := range users {
		user, err := authService.Register(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", req.Email, err)
		}
		log.Printf("  ✓ Created user: %s (role: %s)", user.Email, user.Role)
	}

	return nil
}

// seedTypes строит двухуровневое дерево категорий и возвращает ID листьев
// по имени
func seedTypes(ctx context.Context, typeService *mtype.Service, ownerID uuid.UUID) (map[string]uuid.UUID, error) {
	tree := []struct {
		name     string
		children []string
	}{
		{name: "Двигатель", children: []string{"Замена масла", "Воздушный фильтр"}},
		{name: "Ходовая часть", children: []string{"Тормозные колодки"}},
		{name: "Электрика", children: nil},
	}

	ids := make(map[string]uuid.UUID)

	for _, node := range tree {
		root, err := typeService.CreateType(ctx, &mtype.CreateTypeRequest{
			OwnerID: ownerID,
			Type:    node.name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create type %q: %w", node.name, err)
		}
		ids[node.name] = root.ID
		log.Printf("  ✓ Created maintenance type: %s", root.Path)

		for _, childName := range node.children {
			parentID := root.ID
			child, err := typeService.CreateType(ctx, &mtype.CreateTypeRequest{
				OwnerID:  ownerID,
				Type:     childName,
				ParentID: &parentID,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create type %q: %w", childName, err)
			}
			ids[childName] = child.ID
			log.Printf("  ✓ Created maintenance type: %s", child.Path)
		}
	}

	return ids, nil
}

func seedPlan(ctx context.Context, planService *plan.Service, stageService *stage.Service, ownerID uuid.UUID, typeIDs map[string]uuid.UUID) (uuid.UUID, error) {
	p, err := planService.CreatePlan(ctx, &plan.CreatePlanRequest{
		OwnerID:     ownerID,
		Name:        "Регламент ТО грузовика",
		Description: "Базовый регламент планового обслуживания",
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create plan: %w", err)
	}
	log.Printf("  ✓ Created maintenance plan: %s", p.Name)

	stages := []struct {
		typeName   string
		kilometers int
		days       int
	}{
		{typeName: "Замена масла", kilometers: 15000, days: 365},
		{typeName: "Воздушный фильтр", kilometers: 30000, days: 730},
		{typeName: "Тормозные колодки", kilometers: 50000, days: 1095},
	}

	for _, st := range stages {
		created, err := stageService.CreateStage(ctx, ownerID, &stage.CreateStageRequest{
			PlanID:     p.ID,
			TypeID:     typeIDs[st.typeName],
			Kilometers: st.kilometers,
			Days:       st.days,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create stage %q: %w", st.typeName, err)
		}
		log.Printf("  ✓ Created stage #%d: %s (%d km / %d days)",
			created.StageIndex, st.typeName, st.kilometers, st.days)
	}

	return p.ID, nil
}

func seedEquipment(ctx context.Context, equipmentService *equipment.Service, ownerID, planID uuid.UUID) error {
	items := []*equipment.CreateEquipmentRequest{
		{
			OwnerID:           ownerID,
			EquipmentType:     "truck",
			LicensePlate:      "А123ВС777",
			Code:              "TRK-001",
			MaintenancePlanID: &planID,
		},
		{
			OwnerID:       ownerID,
			EquipmentType: "excavator",
			LicensePlate:  "В456ЕК777",
			Code:          "EXC-001",
		},
	}

	for _, req := range items {
		eq, err := equipmentService.CreateEquipment(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create equipment %s: %w", req.Code, err)
		}
		log.Printf("  ✓ Created equipment: %s (%s)", eq.Code, eq.EquipmentType)
	}

	return nil
}
