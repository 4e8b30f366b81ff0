package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// ledgerHandler handles HTTP requests for the posting engine.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// RegisterLedgerRoutes registers routes related to journal entries and lines.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}

	rg.GET("/accounts/:accountID/lines", h.listAccountLines)
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates and atomically posts a balanced journal entry. Replaying
// @Description the same idempotency key returns the originally posted entry.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   entry body dto.PostEntryRequest true "Entry to post"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Unbalanced or invalid entry"
// @Failure 409 {object} map[string]string "Closed period or conflicting state"
// @Security BearerAuth
// @Router /companies/{companyID}/entries [post]
func (h *ledgerHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.PostEntry(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted", slog.String("entry_id", entry.EntryID), slog.String("company_id", companyID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Param   includeReversals query bool false "Include reversed and reversing entries" default(false)
// @Success 200 {object} dto.ListEntriesResponse
// @Security BearerAuth
// @Router /companies/{companyID}/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry by ID
// @Description Retrieves an entry with all its lines
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /companies/{companyID}/entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), companyID, entryID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Posts the reversing entry and links the pair. Reversing an
// @Description already-reversed entry is rejected.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest false "Reversal overrides"
// @Success 201 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed or period closed"
// @Security BearerAuth
// @Router /companies/{companyID}/entries/{entryID}/reverse [post]
func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	entryID := c.Param("entryID")

	// The reversal body is optional
	var req dto.ReverseEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.ledgerService.ReverseEntry(c.Request.Context(), companyID, entryID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// listAccountLines godoc
// @Summary List an account's journal lines
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListLinesResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{companyID}/accounts/{accountID}/lines [get]
func (h *ledgerHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	accountID := c.Param("accountID")

	var params dto.ListLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.ledgerService.ListLinesByAccount(c.Request.Context(), companyID, accountID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list lines")
		return
	}
	c.JSON(http.StatusOK, resp)
}
