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

type materialRequestHandler struct {
	entityService   portssvc.EntitySvcFacade
	identityService portssvc.IdentitySvcFacade
}

func newMaterialRequestHandler(es portssvc.EntitySvcFacade, is portssvc.IdentitySvcFacade) *materialRequestHandler {
	return &materialRequestHandler{entityService: es, identityService: is}
}

func registerMaterialRequestRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade, identityService portssvc.IdentitySvcFacade) {
	h := newMaterialRequestHandler(entityService, identityService)

	materialRequests := rg.Group("/material-requests")
	{
		materialRequests.POST("", h.create)
		materialRequests.GET("", h.list)
	}
}

func (h *materialRequestHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateMaterialRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMaterialRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := resolveActor(c, h.identityService)
	if !ok {
		return
	}

	entity, err := h.entityService.CreateMaterialRequest(c.Request.Context(), req, *actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create material request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToWorkflowEntityResponse(entity))
}

func (h *materialRequestHandler) list(c *gin.Context) {
	listEntitiesOfKind(c, h.entityService, domain.KindMaterialRequest)
}
