package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// companyHandler handles HTTP requests related to companies and membership.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{
		companyService: cs,
	}
}

// registerCompanyRoutes registers company routes and all company-scoped resources.
func registerCompanyRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newCompanyHandler(services.Company)

	companies := rg.Group("/companies")
	{
		companies.POST("", h.createCompany)
		companies.GET("", h.listCompanies)
		companies.GET("/:companyID", h.getCompany)
		companies.DELETE("/:companyID", h.deactivateCompany)
		companies.GET("/:companyID/members", h.listMembers)
		companies.POST("/:companyID/members", h.addMember)
	}

	// Resources scoped to a single company
	scoped := companies.Group("/:companyID")
	registerAccountRoutes(scoped, services.Account)
	registerPeriodRoutes(scoped, services.Period)
	RegisterLedgerRoutes(scoped, services.Ledger)
	registerDocumentRoutes(scoped, services.Document)
	registerPaymentRoutes(scoped, services.Document)
	registerAssetRoutes(scoped, services.Asset)
	registerReconciliationRoutes(scoped, services.Reconciliation)
	registerReportingRoutes(scoped, services.Reporting)
}

// createCompany godoc
// @Summary Create a new company
// @Description Creates a company and enrolls the creator as its admin
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req.Name, req.BaseCurrencyCode, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create company")
		return
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// listCompanies godoc
// @Summary List the caller's companies
// @Description Lists all companies the authenticated user belongs to
// @Tags companies
// @Produce  json
// @Success 200 {array} dto.CompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	companies, err := h.companyService.ListUserCompanies(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list companies")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCompanyResponse(companies))
}

// getCompany godoc
// @Summary Get a company by ID
// @Tags companies
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{companyID} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve company")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// deactivateCompany godoc
// @Summary Deactivate a company
// @Description Marks a company as inactive. Admin only.
// @Tags companies
// @Param   companyID path string true "Company ID"
// @Success 204
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{companyID} [delete]
func (h *companyHandler) deactivateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.DeactivateCompany(c.Request.Context(), companyID, userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate company")
		return
	}
	c.Status(http.StatusNoContent)
}

// listMembers godoc
// @Summary List company members
// @Tags companies
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Success 200 {array} dto.MemberResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{companyID}/members [get]
func (h *companyHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.companyService.ListCompanyMembers(c.Request.Context(), companyID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToMemberResponses(members))
}

// addMember godoc
// @Summary Add a member to a company
// @Description Adds a user to a company with a role. Admin only.
// @Tags companies
// @Accept  json
// @Param   companyID path string true "Company ID"
// @Param   member body dto.AddMemberRequest true "Member details"
// @Success 201
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /companies/{companyID}/members [post]
func (h *companyHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.companyService.AddMember(c.Request.Context(), userID, req.UserID, companyID, req.Role); err != nil {
		respondError(c, logger, err, "Failed to add member")
		return
	}

	logger.Info("Member added", slog.String("company_id", companyID), slog.String("member_user_id", req.UserID))
	c.Status(http.StatusCreated)
}
