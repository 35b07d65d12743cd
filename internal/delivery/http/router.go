package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/vkuznets/upkeep/internal/delivery/http/middleware"
	"github.com/vkuznets/upkeep/internal/domain"
	"github.com/vkuznets/upkeep/internal/pkg/config"
	"github.com/vkuznets/upkeep/internal/pkg/jwt"
	"github.com/vkuznets/upkeep/internal/pkg/logger"
)

// Router содержит все зависимости для HTTP роутера
type Router struct {
	authHandler      *AuthHandler
	equipmentHandler *EquipmentHandler
	planHandler      *PlanHandler
	stageHandler     *StageHandler
	typeHandler      *TypeHandler
	recordHandler    *RecordHandler
	mileageHandler   *MileageHandler
	activityHandler  *ActivityHandler
	partHandler      *SparePartHandler
	tokenService     *jwt.TokenService
	config           *config.Config
	logger           logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	authHandler *AuthHandler,
	equipmentHandler *EquipmentHandler,
	planHandler *PlanHandler,
	stageHandler *StageHandler,
	typeHandler *TypeHandler,
	recordHandler *RecordHandler,
	mileageHandler *MileageHandler,
	activityHandler *ActivityHandler,
	partHandler *SparePartHandler,
	tokenService *jwt.TokenService,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		authHandler:      authHandler,
		equipmentHandler: equipmentHandler,
		planHandler:      planHandler,
		stageHandler:     stageHandler,
		typeHandler:      typeHandler,
		recordHandler:    recordHandler,
		mileageHandler:   mileageHandler,
		activityHandler:  activityHandler,
		partHandler:      partHandler,
		tokenService:     tokenService,
		config:           config,
		logger:           logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))

	// Health check endpoint (публичный)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (без аутентификации)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)
		})

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokenService))

			r.Get("/auth/me", rt.authHandler.GetMe)

			// User administration (только для admin)
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Get("/", rt.authHandler.ListUsers)
				r.Put("/{id}", rt.authHandler.UpdateUser)
				r.Delete("/{id}", rt.authHandler.DeleteUser)
			})

			// Equipment endpoints
			r.Route("/equipment", func(r chi.Router) {
				r.Get("/", rt.equipmentHandler.ListEquipment)
				r.Get("/with-records", rt.equipmentHandler.ListEquipmentWithRecords)
				r.Post("/", rt.equipmentHandler.CreateEquipment)
				r.Get("/{id}", rt.equipmentHandler.GetEquipment)
				r.Put("/{id}", rt.equipmentHandler.UpdateEquipment)
				r.Delete("/{id}", rt.equipmentHandler.DeleteEquipment)
				r.Get("/{id}/mileage", rt.mileageHandler.ListMileage)
			})

			// Maintenance plan endpoints
			r.Route("/plans", func(r chi.Router) {
				r.Get("/", rt.planHandler.ListPlans)
				r.Post("/", rt.planHandler.CreatePlan)
				r.Get("/{id}", rt.planHandler.GetPlan)
				r.Put("/{id}", rt.planHandler.UpdatePlan)
				r.Delete("/{id}", rt.planHandler.DeletePlan)
				r.Get("/{id}/can-delete", rt.planHandler.CanDeletePlan)

				// Stage endpoints плана
				r.Get("/{id}/stages", rt.stageHandler.ListStages)
				r.Post("/{id}/stages", rt.stageHandler.CreateStage)
				r.Post("/{id}/stages/reorder", rt.stageHandler.ReorderStages)
			})

			// Stage endpoints (по ID этапа)
			r.Route("/stages", func(r chi.Router) {
				r.Put("/reorder", rt.stageHandler.ReorderStages)
				r.Get("/{id}", rt.stageHandler.GetStage)
				r.Put("/{id}", rt.stageHandler.UpdateStage)
				r.Delete("/{id}", rt.stageHandler.DeleteStage)
			})

			// Maintenance type endpoints
			r.Route("/maintenance-types", func(r chi.Router) {
				r.Get("/", rt.typeHandler.ListTypes)
				r.Post("/", rt.typeHandler.CreateType)
				r.Get("/{id}", rt.typeHandler.GetType)
				r.Put("/{id}", rt.typeHandler.UpdateType)
				r.Delete("/{id}", rt.typeHandler.DeleteType)
			})

			// Maintenance record endpoints
			r.Route("/maintenance-records", func(r chi.Router) {
				r.Get("/", rt.recordHandler.ListRecords)
				r.Post("/", rt.recordHandler.CreateRecord)
				r.Get("/{id}", rt.recordHandler.GetRecord)
				r.Put("/{id}", rt.recordHandler.UpdateRecord)
				r.Delete("/{id}", rt.recordHandler.DeleteRecord)
			})

			// Mileage endpoints
			r.Route("/mileage", func(r chi.Router) {
				r.Post("/", rt.mileageHandler.SubmitMileage)
				r.Get("/{id}", rt.mileageHandler.GetMileage)
				r.Delete("/{id}", rt.mileageHandler.DeleteMileage)
			})

			// Activity endpoints
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", rt.activityHandler.ListActivities)
				r.Post("/", rt.activityHandler.CreateActivity)
				r.Get("/{id}", rt.activityHandler.GetActivity)
				r.Put("/{id}", rt.activityHandler.UpdateActivity)
				r.Delete("/{id}", rt.activityHandler.DeleteActivity)
			})

			// Spare part endpoints
			r.Route("/spare-parts", func(r chi.Router) {
				r.Get("/", rt.partHandler.ListSpareParts)
				r.Post("/", rt.partHandler.CreateSparePart)
				r.Get("/{id}", rt.partHandler.GetSparePart)
				r.Put("/{id}", rt.partHandler.UpdateSparePart)
				r.Delete("/{id}", rt.partHandler.DeleteSparePart)
			})
		})
	})

	return r
}
