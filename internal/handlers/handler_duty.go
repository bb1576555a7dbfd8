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

type dutyHandler struct {
	entityService   portssvc.EntitySvcFacade
	identityService portssvc.IdentitySvcFacade
}

func newDutyHandler(es portssvc.EntitySvcFacade, is portssvc.IdentitySvcFacade) *dutyHandler {
	return &dutyHandler{entityService: es, identityService: is}
}

func registerDutyRoutes(rg *gin.RouterGroup, entityService portssvc.EntitySvcFacade, identityService portssvc.IdentitySvcFacade) {
	h := newDutyHandler(entityService, identityService)

	duties := rg.Group("/duties")
	{
		duties.POST("", h.create)
		duties.GET("", h.list)
		duties.POST("/:id/enroll", h.enroll)
		duties.POST("/:id/attendance", h.markAttendance)
	}
}

func (h *dutyHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDuty", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := resolveActor(c, h.identityService)
	if !ok {
		return
	}

	entity, err := h.entityService.CreateDuty(c.Request.Context(), req, *actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create duty")
		return
	}
	c.JSON(http.StatusCreated, dto.ToWorkflowEntityResponse(entity))
}

func (h *dutyHandler) list(c *gin.Context) {
	listEntitiesOfKind(c, h.entityService, domain.KindDuty)
}

// enroll adds the authenticated youth to the duty.
func (h *dutyHandler) enroll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.entityService.EnrollYouth(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to enroll in duty")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "enrolled"})
}

func (h *dutyHandler) markAttendance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkAttendance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := resolveActor(c, h.identityService)
	if !ok {
		return
	}

	if err := h.entityService.MarkAttendance(c.Request.Context(), c.Param("id"), req, *actor); err != nil {
		respondServiceError(c, logger, err, "Failed to mark attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
