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

type ledgerHandler struct {
	ledgerService   portssvc.LedgerSvcFacade
	identityService portssvc.IdentitySvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, is portssvc.IdentitySvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, identityService: is}
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, identityService portssvc.IdentitySvcFacade) {
	h := newLedgerHandler(ledgerService, identityService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/accounts", h.createAccount)
		ledger.GET("/accounts", h.listAccounts)
		ledger.GET("/accounts/low-stock", h.listLowStock)
		ledger.GET("/accounts/:subjectRef", h.peek)
	}
}

func (h *ledgerHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := resolveActor(c, h.identityService)
	if !ok {
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), req, *actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create ledger account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerAccountResponse(account))
}

func (h *ledgerHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	kind := domain.LedgerSubjectKind(c.DefaultQuery("kind", string(domain.SubjectStock)))
	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), kind)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list ledger accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToLedgerAccountResponses(accounts)})
}

func (h *ledgerHandler) listLowStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.ledgerService.ListLowStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list low stock accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToLedgerAccountResponses(accounts)})
}

func (h *ledgerHandler) peek(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, err := h.ledgerService.Peek(c.Request.Context(), c.Param("subjectRef"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve ledger account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerAccountResponse(account))
}
