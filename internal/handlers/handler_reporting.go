package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/cashflow", h.cashflow)
		reports.GET("/ar-aging", h.arAging)
		reports.GET("/ap-aging", h.apAging)
	}
}

// parseAsOf reads the asOf query parameter, defaulting to now.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now().UTC(), true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC 3339"})
		return time.Time{}, false
	}
	return parsed, true
}

// parseBoundaries reads the optional buckets query parameter, a comma-separated
// list of day boundaries (e.g. "30,60,90"). Empty means the service defaults.
func parseBoundaries(c *gin.Context) ([]int, bool) {
	raw := c.Query("buckets")
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	boundaries := make([]int, 0, len(parts))
	for _, p := range parts {
		days, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "buckets must be a comma-separated list of day counts"})
			return nil, false
		}
		boundaries = append(boundaries, days)
	}
	return boundaries, true
}

// parseRange reads the required from and to query parameters.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var params dto.ReportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(time.RFC3339, params.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, params.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// trialBalance godoc
// @Summary Trial balance report
// @Description Per-account debit and credit totals as of a date
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   asOf query string false "Report date (RFC 3339), defaults to now"
// @Success 200 {object} domain.TrialBalanceReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), companyID, asOf, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// incomeStatement godoc
// @Summary Income statement report
// @Description Revenue and expenses over a date range
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   from query string true "Range start (RFC 3339)"
// @Param   to query string true "Range end (RFC 3339)"
// @Success 200 {object} domain.IncomeStatementReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/income-statement [get]
func (h *reportingHandler) incomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), companyID, from, to, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// balanceSheet godoc
// @Summary Balance sheet report
// @Description Assets, liabilities and equity as of a date
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   asOf query string false "Report date (RFC 3339), defaults to now"
// @Success 200 {object} domain.BalanceSheetReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/balance-sheet [get]
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), companyID, asOf, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// cashflow godoc
// @Summary Cashflow report
// @Description Inflows and outflows through cash accounts over a date range
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   from query string true "Range start (RFC 3339)"
// @Param   to query string true "Range end (RFC 3339)"
// @Success 200 {object} domain.CashflowReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/cashflow [get]
func (h *reportingHandler) cashflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.Cashflow(c.Request.Context(), companyID, from, to, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate cashflow report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// arAging godoc
// @Summary Accounts receivable aging report
// @Description Outstanding invoices bucketed by days overdue
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   asOf query string false "Report date (RFC 3339), defaults to now"
// @Param   buckets query string false "Comma-separated day boundaries" default(30,60,90)
// @Success 200 {object} domain.AgingReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/ar-aging [get]
func (h *reportingHandler) arAging(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	boundaries, ok := parseBoundaries(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.ARAging(c.Request.Context(), companyID, asOf, boundaries, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate AR aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// apAging godoc
// @Summary Accounts payable aging report
// @Description Outstanding bills bucketed by days overdue
// @Tags reports
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   asOf query string false "Report date (RFC 3339), defaults to now"
// @Param   buckets query string false "Comma-separated day boundaries" default(30,60,90)
// @Success 200 {object} domain.AgingReport
// @Security BearerAuth
// @Router /companies/{companyID}/reports/ap-aging [get]
func (h *reportingHandler) apAging(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	boundaries, ok := parseBoundaries(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reportingService.APAging(c.Request.Context(), companyID, asOf, boundaries, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate AP aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}
