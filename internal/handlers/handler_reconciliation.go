package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// reconciliationHandler handles HTTP requests for bank reconciliation.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers routes related to bank reconciliation.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	txns := rg.Group("/bank-transactions")
	{
		txns.POST("/import", h.importTransactions)
		txns.GET("", h.listTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.GET("/:transactionID/suggestions", h.suggestMatches)
		txns.POST("/:transactionID/match", h.matchTransaction)
		txns.POST("/:transactionID/unmatch", h.unmatchTransaction)
		txns.POST("/:transactionID/ignore", h.ignoreTransaction)
	}
}

// importTransactions godoc
// @Summary Import bank statement rows
// @Description Ingests a batch of statement rows, skipping duplicates by external reference
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   batch body dto.ImportBankTransactionsRequest true "Statement rows"
// @Success 200 {object} dto.ImportBankTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/import [post]
func (h *reconciliationHandler) importTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.ImportBankTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportBankTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.reconciliationService.ImportBankTransactions(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to import bank transactions")
		return
	}

	logger.Info("Bank transactions imported", slog.Int("imported", result.Imported), slog.Int("skipped", result.Skipped))
	c.JSON(http.StatusOK, result)
}

// listTransactions godoc
// @Summary List bank transactions
// @Tags reconciliation
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   status query string false "Filter by match status (UNMATCHED, MATCHED, IGNORED)"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.BankTransactionResponse
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions [get]
func (h *reconciliationHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListBankTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txns, err := h.reconciliationService.ListBankTransactions(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list bank transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBankTransactionResponse(txns))
}

// getTransaction godoc
// @Summary Get a bank transaction by ID
// @Tags reconciliation
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transactionID path string true "Bank transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/{transactionID} [get]
func (h *reconciliationHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.reconciliationService.GetBankTransactionByID(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bank transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// suggestMatches godoc
// @Summary Suggest ledger lines for a bank transaction
// @Description Returns candidate lines ranked by amount closeness then date proximity
// @Tags reconciliation
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transactionID path string true "Bank transaction ID"
// @Param   windowDays query int false "Date window in days" default(7)
// @Param   limit query int false "Max suggestions" default(10)
// @Success 200 {array} dto.MatchCandidateResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/{transactionID}/suggestions [get]
func (h *reconciliationHandler) suggestMatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	var params dto.SuggestMatchesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	candidates, err := h.reconciliationService.SuggestMatches(c.Request.Context(), companyID, transactionID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to suggest matches")
		return
	}
	c.JSON(http.StatusOK, dto.ToMatchCandidateResponses(candidates))
}

// matchTransaction godoc
// @Summary Match a bank transaction to a ledger line
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transactionID path string true "Bank transaction ID"
// @Param   match body dto.MatchTransactionRequest true "Line to match"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 400 {object} map[string]string "Amount outside tolerance"
// @Failure 409 {object} map[string]string "Transaction or line already matched"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/{transactionID}/match [post]
func (h *reconciliationHandler) matchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	var req dto.MatchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.reconciliationService.MatchTransaction(c.Request.Context(), companyID, transactionID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to match transaction")
		return
	}

	logger.Info("Bank transaction matched", slog.String("transaction_id", transactionID), slog.String("line_id", req.LineID))
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// unmatchTransaction godoc
// @Summary Clear a bank transaction match
// @Tags reconciliation
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transactionID path string true "Bank transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 409 {object} map[string]string "Transaction is not matched"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/{transactionID}/unmatch [post]
func (h *reconciliationHandler) unmatchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.reconciliationService.UnmatchTransaction(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to unmatch transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// ignoreTransaction godoc
// @Summary Ignore a bank transaction
// @Description Marks the transaction as irrelevant for reconciliation. Idempotent.
// @Tags reconciliation
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transactionID path string true "Bank transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 409 {object} map[string]string "Transaction is matched"
// @Security BearerAuth
// @Router /companies/{companyID}/bank-transactions/{transactionID}/ignore [post]
func (h *reconciliationHandler) ignoreTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.reconciliationService.IgnoreTransaction(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to ignore transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}
