package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/vkuznets/upkeep/internal/delivery/http"
	"github.com/vkuznets/upkeep/internal/pkg/config"
	"github.com/vkuznets/upkeep/internal/pkg/database"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
	"github.com/vkuznets/upkeep/internal/pkg/redis"
	"github.com/vkuznets/upkeep/internal/repository/cached"
	"github.com/vkuznets/upkeep/internal/repository/postgres"
	"github.com/vkuznets/upkeep/internal/usecase/activity"
	"github.com/vkuznets/upkeep/internal/usecase/auth"
	"github.com/vkuznets/upkeep/internal/usecase/equipment"
	"github.com/vkuznets/upkeep/internal/usecase/mileage"
	"github.com/vkuznets/upkeep/internal/usecase/mtype"
	"github.com/vkuznets/upkeep/internal/usecase/plan"
	"github.com/vkuznets/upkeep/internal/usecase/record"
	"github.com/vkuznets/upkeep/internal/usecase/sparepart"
	"github.com/vkuznets/upkeep/internal/usecase/stage"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	log.Info("Starting UPKEEP API server", map[string]interface{}{
		"version": "1.0.0",
	})

	// =========================================================================
	// Миграции и подключение к PostgreSQL
	// =========================================================================

	ctx := context.Background()

	if err := database.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		log.Fatal("Failed to run migrations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Migrations applied")

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	// =========================================================================
	// Подключение к Redis
	// =========================================================================

	cache, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cache.Close()

	log.Info("Connected to Redis", map[string]interface{}{
		"host": cfg.Redis.Host,
		"port": cfg.Redis.Port,
	})

	// =========================================================================
	// Создание repositories
	// =========================================================================

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	equipmentRepo := postgres.NewEquipmentRepository(db)
	planRepo := postgres.NewMaintenancePlanRepository(db)
	stageRepo := postgres.NewMaintenanceStageRepository(db)
	recordRepo := postgres.NewMaintenanceRecordRepository(db)
	mileageRepo := postgres.NewMileageRecordRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	partRepo := postgres.NewSparePartRepository(db)

	// Дерево категорий читается часто и меняется редко - кэшируем в Redis
	typeRepo := cached.NewMaintenanceTypeRepository(postgres.NewMaintenanceTypeRepository(db), cache)

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("JWT token service initialized")

	// =========================================================================
	// Создание use case services
	// =========================================================================

	authService := auth.NewService(userRepo, refreshTokenRepo, tokenService, log)
	equipmentService := equipment.NewService(equipmentRepo, planRepo, log)
	planService := plan.NewService(planRepo, stageRepo, log)
	stageService := stage.NewService(stageRepo, planRepo, typeRepo, log)
	typeService := mtype.NewService(typeRepo, log)
	recordService := record.NewService(recordRepo, equipmentRepo, typeRepo, mileageRepo, log)
	mileageService := mileage.NewService(mileageRepo, equipmentRepo, log)
	activityService := activity.NewService(activityRepo, typeRepo, log)
	partService := sparepart.NewService(partRepo, log)

	log.Info("Use case services initialized")

	// =========================================================================
	// Создание HTTP handlers
	// =========================================================================

	authHandler := deliveryHTTP.NewAuthHandler(authService, log)
	equipmentHandler := deliveryHTTP.NewEquipmentHandler(equipmentService, log)
	planHandler := deliveryHTTP.NewPlanHandler(planService, log)
	stageHandler := deliveryHTTP.NewStageHandler(stageService, log)
	typeHandler := deliveryHTTP.NewTypeHandler(typeService, log)
	recordHandler := deliveryHTTP.NewRecordHandler(recordService, log)
	mileageHandler := deliveryHTTP.NewMileageHandler(mileageService, log)
	activityHandler := deliveryHTTP.NewActivityHandler(activityService, log)
	partHandler := deliveryHTTP.NewSparePartHandler(partService, log)

	log.Info("HTTP handlers initialized")

	// =========================================================================
	// Создание и настройка HTTP router
	// =========================================================================

	router := deliveryHTTP.NewRouter(
		authHandler,
		equipmentHandler,
		planHandler,
		stageHandler,
		typeHandler,
		recordHandler,
		mileageHandler,
		activityHandler,
		partHandler,
		tokenService,
		cfg,
		log,
	)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера в goroutine
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("Server error", map[string]interface{}{
			"error": err.Error(),
		})

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		// Даем серверу 30 секунд на graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Fatal("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
