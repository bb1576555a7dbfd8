package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// entityHandler serves the kind-independent reads: single entity and history.
type entityHandler struct {
	entityService portssvc.EntitySvcFacade
}

func newEntityHandler(es portssvc.EntitySvcFacade) *entityHandler {
	return &entityHandler{entityService: es}
}

func registerEntityRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade) {
	h := newEntityHandler(entityService)

	entities := rg.Group("/entities")
	{
		entities.GET("/:id", h.getEntity)
		entities.GET("/:id/history", h.getHistory)
	}
}

func (h *entityHandler) getEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entity, err := h.entityService.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entity")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowEntityResponse(entity))
}

func (h *entityHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entries, err := h.entityService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": dto.ToHistoryEntryResponses(entries)})
}

// listEntitiesOfKind is the shared list endpoint behind every kind's GET route.
func listEntitiesOfKind(c *gin.Context, entityService portssvc.EntitySvcFacade, kind domain.EntityKind) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntitiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := entityService.ListEntities(c.Request.Context(), kind, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entities")
		return
	}
	c.JSON(http.StatusOK, resp)
}
