package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/middleware"
	"github.com/matbus-aora/aora-backend/internal/platform/config"
	"github.com/matbus-aora/aora-backend/internal/utils/mpesa"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerCustomValidators()

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes
	registerAuthRoutes(r, cfg, services)

	// API v1 routes behind the auth middleware
	setupAPIV1Routes(r, cfg, services)
}

// registerCustomValidators installs domain formats into gin's binding
// validator so DTO tags can reference them.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mpesacode", func(fl validator.FieldLevel) bool {
			return mpesa.ValidateCode(fl.Field().String())
		})
	}
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerCommandRoutes(v1, services.Dispatcher)
	registerEntityRoutes(v1, services.Entity)
	registerSupplyRequestRoutes(v1, services.Entity)
	registerMaterialRequestRoutes(v1, services.Entity, services.Identity)
	registerDonationRoutes(v1, services.Entity)
	registerBookingRoutes(v1, services.Entity)
	registerDutyRoutes(v1, services.Entity, services.Identity)
	registerLedgerRoutes(v1, services.Ledger, services.Identity)
	registerEventRoutes(v1, services.Notifier)
}
