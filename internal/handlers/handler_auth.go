package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/matbus-aora/aora-backend/internal/apperrors"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
	"github.com/matbus-aora/aora-backend/internal/platform/config"
)

// loginRate caps credential attempts per IP.
var loginRate = mustRate("5-M")

func mustRate(format string) limiter.Rate {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		panic("invalid rate format " + format + ": " + err.Error())
	}
	return rate
}

// authHandler handles login and actor registration.
type authHandler struct {
	identityService portssvc.IdentitySvcFacade
}

func newAuthHandler(is portssvc.IdentitySvcFacade) *authHandler {
	return &authHandler{identityService: is}
}

// registerAuthRoutes registers the public authentication routes.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newAuthHandler(services.Identity)

	// Credential endpoints get their own tight per-IP limit.
	ipLimiter := limiter.New(memory.NewStore(), loginRate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := r.Group("/api/v1/auth", limitMiddleware)
	{
		auth.POST("/login", h.login)
		auth.POST("/register", h.register)
	}
}

func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.identityService.Authenticate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.Error("Login failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, err := h.identityService.Register(c.Request.Context(), req, "self-registration")
	if err != nil {
		respondServiceError(c, logger, err, "Failed to register actor")
		return
	}

	c.JSON(http.StatusCreated, dto.ActorResponse{
		ActorID: actor.ActorID,
		Name:    actor.Name,
		Email:   actor.Email,
		Role:    string(actor.Role),
		County:  actor.County,
		Active:  actor.Active,
	})
}
