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

type donationHandler struct {
	entityService portssvc.EntitySvcFacade
}

func newDonationHandler(es portssvc.EntitySvcFacade) *donationHandler {
	return &donationHandler{entityService: es}
}

func registerDonationRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade) {
	h := newDonationHandler(entityService)

	donations := rg.Group("/donations")
	{
		donations.POST("", h.create)
		donations.GET("", h.list)
	}
}

func (h *donationHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDonation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entity, err := h.entityService.CreateDonation(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record donation")
		return
	}
	c.JSON(http.StatusCreated, dto.ToWorkflowEntityResponse(entity))
}

func (h *donationHandler) list(c *gin.Context) {
	listEntitiesOfKind(c, h.entityService, domain.KindDonation)
}
