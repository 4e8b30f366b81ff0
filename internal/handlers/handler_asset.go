package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// assetHandler handles HTTP requests related to fixed assets and depreciation.
type assetHandler struct {
	assetService portssvc.AssetSvcFacade
}

// newAssetHandler creates a new assetHandler.
func newAssetHandler(as portssvc.AssetSvcFacade) *assetHandler {
	return &assetHandler{
		assetService: as,
	}
}

// registerAssetRoutes registers routes related to fixed assets.
func registerAssetRoutes(rg *gin.RouterGroup, assetService portssvc.AssetSvcFacade) {
	h := newAssetHandler(assetService)

	assets := rg.Group("/assets")
	{
		assets.POST("", h.createAsset)
		assets.GET("", h.listAssets)
		assets.GET("/:assetID", h.getAsset)
		assets.GET("/:assetID/schedule", h.getSchedule)
		assets.DELETE("/:assetID", h.deactivateAsset)
	}

	rg.POST("/periods/:periodID/depreciation-run", h.runDepreciation)
}

// createAsset godoc
// @Summary Register a fixed asset
// @Tags assets
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   asset body dto.CreateAssetRequest true "Asset details"
// @Success 201 {object} dto.AssetResponse
// @Failure 400 {object} map[string]string "Invalid depreciation inputs"
// @Security BearerAuth
// @Router /companies/{companyID}/assets [post]
func (h *assetHandler) createAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAsset", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create asset")
		return
	}

	logger.Info("Asset created", slog.String("asset_id", asset.AssetID), slog.String("asset_code", asset.AssetCode))
	c.JSON(http.StatusCreated, dto.ToAssetResponse(asset))
}

// listAssets godoc
// @Summary List fixed assets
// @Tags assets
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   activeOnly query bool false "Only active assets" default(false)
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.AssetResponse
// @Security BearerAuth
// @Router /companies/{companyID}/assets [get]
func (h *assetHandler) listAssets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListAssetsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	assets, err := h.assetService.ListAssets(c.Request.Context(), companyID, userID, params.ActiveOnly, params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list assets")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAssetResponse(assets))
}

// getAsset godoc
// @Summary Get a fixed asset by ID
// @Tags assets
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   assetID path string true "Asset ID"
// @Success 200 {object} dto.AssetResponse
// @Failure 404 {object} map[string]string "Asset not found"
// @Security BearerAuth
// @Router /companies/{companyID}/assets/{assetID} [get]
func (h *assetHandler) getAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	assetID := c.Param("assetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	asset, err := h.assetService.GetAssetByID(c.Request.Context(), companyID, assetID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve asset")
		return
	}
	c.JSON(http.StatusOK, dto.ToAssetResponse(asset))
}

// getSchedule godoc
// @Summary Get an asset's depreciation schedule
// @Description Derives the full schedule from the asset's method, cost and life
// @Tags assets
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   assetID path string true "Asset ID"
// @Success 200 {array} dto.ScheduleLineResponse
// @Failure 404 {object} map[string]string "Asset not found"
// @Security BearerAuth
// @Router /companies/{companyID}/assets/{assetID}/schedule [get]
func (h *assetHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	assetID := c.Param("assetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	schedule, err := h.assetService.GetSchedule(c.Request.Context(), companyID, assetID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to derive schedule")
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// deactivateAsset godoc
// @Summary Deactivate a fixed asset
// @Description Marks an asset as no longer depreciable
// @Tags assets
// @Param   companyID path string true "Company ID"
// @Param   assetID path string true "Asset ID"
// @Success 204
// @Failure 404 {object} map[string]string "Asset not found"
// @Security BearerAuth
// @Router /companies/{companyID}/assets/{assetID} [delete]
func (h *assetHandler) deactivateAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	assetID := c.Param("assetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.assetService.DeactivateAsset(c.Request.Context(), companyID, assetID, userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate asset")
		return
	}
	c.Status(http.StatusNoContent)
}

// runDepreciation godoc
// @Summary Run depreciation for a period
// @Description Posts scheduled depreciation for every active asset. Re-running
// @Description a period skips assets that already posted.
// @Tags assets
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.DepreciationRunResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /companies/{companyID}/periods/{periodID}/depreciation-run [post]
func (h *assetHandler) runDepreciation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	periodID := c.Param("periodID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.assetService.RunPeriod(c.Request.Context(), companyID, periodID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to run depreciation")
		return
	}

	logger.Info("Depreciation run completed", slog.String("period_id", periodID), slog.Int("assets", len(result.Results)))
	c.JSON(http.StatusOK, result)
}
