package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// periodHandler handles HTTP requests related to accounting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

// newPeriodHandler creates a new periodHandler.
func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{
		periodService: ps,
	}
}

// registerPeriodRoutes registers routes related to accounting periods.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:periodID", h.getPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
	}
}

// createPeriod godoc
// @Summary Open a new accounting period
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid input or overlapping period"
// @Security BearerAuth
// @Router /companies/{companyID}/periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create period")
		return
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List accounting periods
// @Tags periods
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.PeriodResponse
// @Security BearerAuth
// @Router /companies/{companyID}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), companyID, userID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPeriodResponse(periods))
}

// getPeriod godoc
// @Summary Get a period by ID
// @Tags periods
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /companies/{companyID}/periods/{periodID} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	periodID := c.Param("periodID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), companyID, periodID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// closePeriod godoc
// @Summary Close a period
// @Description Closes a period so no further entries can be posted into it. Idempotent.
// @Tags periods
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /companies/{companyID}/periods/{periodID}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	periodID := c.Param("periodID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period, err := h.periodService.ClosePeriod(c.Request.Context(), companyID, periodID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to close period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// reopenPeriod godoc
// @Summary Reopen a closed period
// @Description Reopens a closed period. Admin only. Idempotent.
// @Tags periods
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /companies/{companyID}/periods/{periodID}/reopen [post]
func (h *periodHandler) reopenPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	periodID := c.Param("periodID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period, err := h.periodService.ReopenPeriod(c.Request.Context(), companyID, periodID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reopen period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
