package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

type bookingHandler struct {
	entityService portssvc.EntitySvcFacade
}

func newBookingHandler(es portssvc.EntitySvcFacade) *bookingHandler {
	return &bookingHandler{entityService: es}
}

func registerBookingRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade) {
	h := newBookingHandler(entityService)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.create)
		bookings.GET("", h.list)
	}
}

func (h *bookingHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBooking", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entity, err := h.entityService.CreateBooking(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, dto.ToWorkflowEntityResponse(entity))
}

func (h *bookingHandler) list(c *gin.Context) {
	listEntitiesOfKind(c, h.entityService, domain.KindBooking)
}
