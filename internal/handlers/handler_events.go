package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/middleware"
)

// eventsHandler streams transition events to clients over Server-Sent Events.
type eventsHandler struct {
	notifierService portssvc.NotifierSvc
}

func newEventsHandler(ns portssvc.NotifierSvc) *eventsHandler {
	return &eventsHandler{notifierService: ns}
}

func registerEventRoutes(rg *gin.RouterGroup, notifierService portssvc.NotifierSvc) {
	h := newEventsHandler(notifierService)
	rg.GET("/events", h.stream)
}

func (h *eventsHandler) stream(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, cancel := h.notifierService.Subscribe()
	defer cancel()

	logger.Info("SSE subscriber connected")
	defer logger.Info("SSE subscriber disconnected")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("transition", event)
			return true
		case <-clientGone:
			return false
		}
	})
}
