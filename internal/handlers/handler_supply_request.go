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

type supplyRequestHandler struct {
	entityService portssvc.EntitySvcFacade
}

func newSupplyRequestHandler(es portssvc.EntitySvcFacade) *supplyRequestHandler {
	return &supplyRequestHandler{entityService: es}
}

func registerSupplyRequestRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade) {
	h := newSupplyRequestHandler(entityService)

	supplyRequests := rg.Group("/supply-requests")
	{
		supplyRequests.POST("", h.create)
		supplyRequests.GET("", h.list)
	}
}

func (h *supplyRequestHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSupplyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSupplyRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entity, err := h.entityService.CreateSupplyRequest(c.Request.Context(), req, actorID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create supply request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToWorkflowEntityResponse(entity))
}

func (h *supplyRequestHandler) list(c *gin.Context) {
	listEntitiesOfKind(c, h.entityService, domain.KindSupplyRequest)
}
