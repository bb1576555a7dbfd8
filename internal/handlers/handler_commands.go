package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/dto"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// commandHandler accepts transition commands and hands them to the dispatcher.
// There is one endpoint for every state change in the system; which changes
// are possible is decided entirely by the rule table, not by routing.
type commandHandler struct {
	dispatcherService portssvc.DispatcherSvc
}

func newCommandHandler(ds portssvc.DispatcherSvc) *commandHandler {
	return &commandHandler{dispatcherService: ds}
}

func registerCommandRoutes(rg *gin.RouterGroup, dispatcherService portssvc.DispatcherSvc) {
	h := newCommandHandler(dispatcherService)
	rg.POST("/commands", h.dispatch)
}

func (h *commandHandler) dispatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var cmd dto.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		logger.Warn("Failed to bind command", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.dispatcherService.Dispatch(c.Request.Context(), actorID, cmd)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to execute command")
		return
	}

	resp := dto.TransitionResponse{Entity: dto.ToWorkflowEntityResponse(result.Entity)}
	if result.Delta != nil {
		resp.LedgerDelta = &dto.LedgerDeltaResponse{
			SubjectRef: result.Delta.SubjectRef,
			Delta:      result.Delta.Delta,
			NewBalance: result.Delta.NewBalance,
		}
	}
	c.JSON(http.StatusOK, resp)
}
