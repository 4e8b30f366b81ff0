package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// documentHandler handles HTTP requests for invoices, bills and counterparties.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{
		documentService: ds,
	}
}

// registerDocumentRoutes registers routes related to invoices, bills,
// customers and vendors.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.PUT("/:invoiceID", h.updateInvoice)
		invoices.DELETE("/:invoiceID", h.deleteInvoice)
		invoices.POST("/:invoiceID/finalize", h.finalizeInvoice)
		invoices.POST("/:invoiceID/void", h.voidInvoice)
	}

	bills := rg.Group("/bills")
	{
		bills.POST("", h.createBill)
		bills.GET("", h.listBills)
		bills.GET("/:billID", h.getBill)
		bills.PUT("/:billID", h.updateBill)
		bills.DELETE("/:billID", h.deleteBill)
		bills.POST("/:billID/finalize", h.finalizeBill)
		bills.POST("/:billID/void", h.voidBill)
	}

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
	}

	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.createVendor)
		vendors.GET("", h.listVendors)
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices [post]
func (h *documentHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created", slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   status query string false "Filter by document status"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.InvoiceResponse
// @Security BearerAuth
// @Router /companies/{companyID}/invoices [get]
func (h *documentHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoices, err := h.documentService.ListInvoices(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoiceResponse(invoices))
}

// getInvoice godoc
// @Summary Get an invoice by ID
// @Tags invoices
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices/{invoiceID} [get]
func (h *documentHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	invoiceID := c.Param("invoiceID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.documentService.GetInvoiceByID(c.Request.Context(), companyID, invoiceID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// updateInvoice godoc
// @Summary Update a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   invoiceID path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices/{invoiceID} [put]
func (h *documentHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	invoiceID := c.Param("invoiceID")

	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.documentService.UpdateInvoice(c.Request.Context(), companyID, invoiceID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// deleteInvoice godoc
// @Summary Delete a draft invoice
// @Tags invoices
// @Param   companyID path string true "Company ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 204
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices/{invoiceID} [delete]
func (h *documentHandler) deleteInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	invoiceID := c.Param("invoiceID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.documentService.DeleteInvoice(c.Request.Context(), companyID, invoiceID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete invoice")
		return
	}
	c.Status(http.StatusNoContent)
}

// finalizeInvoice godoc
// @Summary Finalize a draft invoice
// @Description Posts the invoice to the ledger and locks its contents
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   invoiceID path string true "Invoice ID"
// @Param   finalize body dto.FinalizeDocumentRequest false "Settlement account override"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice cannot be finalized from its current status"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices/{invoiceID}/finalize [post]
func (h *documentHandler) finalizeInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	invoiceID := c.Param("invoiceID")

	var req dto.FinalizeDocumentRequest
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

	invoice, err := h.documentService.FinalizeInvoice(c.Request.Context(), companyID, invoiceID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to finalize invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// voidInvoice godoc
// @Summary Void an invoice
// @Description Voids the invoice, reversing its ledger posting if finalized. Idempotent.
// @Tags invoices
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice cannot be voided from its current status"
// @Security BearerAuth
// @Router /companies/{companyID}/invoices/{invoiceID}/void [post]
func (h *documentHandler) voidInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	invoiceID := c.Param("invoiceID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invoice, err := h.documentService.VoidInvoice(c.Request.Context(), companyID, invoiceID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to void invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// createBill godoc
// @Summary Create a draft bill
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   bill body dto.CreateBillRequest true "Bill details"
// @Success 201 {object} dto.BillResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /companies/{companyID}/bills [post]
func (h *documentHandler) createBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBill", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bill, err := h.documentService.CreateBill(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create bill")
		return
	}

	logger.Info("Bill created", slog.String("bill_id", bill.BillID))
	c.JSON(http.StatusCreated, dto.ToBillResponse(bill))
}

// listBills godoc
// @Summary List bills
// @Tags bills
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   status query string false "Filter by document status"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.BillResponse
// @Security BearerAuth
// @Router /companies/{companyID}/bills [get]
func (h *documentHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bills, err := h.documentService.ListBills(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBillResponse(bills))
}

// getBill godoc
// @Summary Get a bill by ID
// @Tags bills
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   billID path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 404 {object} map[string]string "Bill not found"
// @Security BearerAuth
// @Router /companies/{companyID}/bills/{billID} [get]
func (h *documentHandler) getBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	billID := c.Param("billID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bill, err := h.documentService.GetBillByID(c.Request.Context(), companyID, billID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// updateBill godoc
// @Summary Update a draft bill
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   billID path string true "Bill ID"
// @Param   bill body dto.UpdateBillRequest true "Fields to update"
// @Success 200 {object} dto.BillResponse
// @Failure 409 {object} map[string]string "Bill is not a draft"
// @Security BearerAuth
// @Router /companies/{companyID}/bills/{billID} [put]
func (h *documentHandler) updateBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	billID := c.Param("billID")

	var req dto.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bill, err := h.documentService.UpdateBill(c.Request.Context(), companyID, billID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// deleteBill godoc
// @Summary Delete a draft bill
// @Tags bills
// @Param   companyID path string true "Company ID"
// @Param   billID path string true "Bill ID"
// @Success 204
// @Failure 409 {object} map[string]string "Bill is not a draft"
// @Security BearerAuth
// @Router /companies/{companyID}/bills/{billID} [delete]
func (h *documentHandler) deleteBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	billID := c.Param("billID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.documentService.DeleteBill(c.Request.Context(), companyID, billID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete bill")
		return
	}
	c.Status(http.StatusNoContent)
}

// finalizeBill godoc
// @Summary Finalize a draft bill
// @Description Posts the bill to the ledger and locks its contents
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   billID path string true "Bill ID"
// @Param   finalize body dto.FinalizeDocumentRequest false "Settlement account override"
// @Success 200 {object} dto.BillResponse
// @Failure 409 {object} map[string]string "Bill cannot be finalized from its current status"
// @Security BearerAuth
// @Router /companies/{companyID}/bills/{billID}/finalize [post]
func (h *documentHandler) finalizeBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	billID := c.Param("billID")

	var req dto.FinalizeDocumentRequest
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

	bill, err := h.documentService.FinalizeBill(c.Request.Context(), companyID, billID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to finalize bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// voidBill godoc
// @Summary Void a bill
// @Description Voids the bill, reversing its ledger posting if finalized. Idempotent.
// @Tags bills
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   billID path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 409 {object} map[string]string "Bill cannot be voided from its current status"
// @Security BearerAuth
// @Router /companies/{companyID}/bills/{billID}/void [post]
func (h *documentHandler) voidBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	billID := c.Param("billID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bill, err := h.documentService.VoidBill(c.Request.Context(), companyID, billID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to void bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// createCustomer godoc
// @Summary Create a customer
// @Tags parties
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /companies/{companyID}/customers [post]
func (h *documentHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.documentService.CreateCustomer(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// listCustomers godoc
// @Summary List customers
// @Tags parties
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.CustomerResponse
// @Security BearerAuth
// @Router /companies/{companyID}/customers [get]
func (h *documentHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customers, err := h.documentService.ListCustomers(c.Request.Context(), companyID, userID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCustomerResponse(customers))
}

// createVendor godoc
// @Summary Create a vendor
// @Tags parties
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   vendor body dto.CreateVendorRequest true "Vendor details"
// @Success 201 {object} dto.VendorResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /companies/{companyID}/vendors [post]
func (h *documentHandler) createVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	vendor, err := h.documentService.CreateVendor(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create vendor")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVendorResponse(vendor))
}

// listVendors godoc
// @Summary List vendors
// @Tags parties
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {array} dto.VendorResponse
// @Security BearerAuth
// @Router /companies/{companyID}/vendors [get]
func (h *documentHandler) listVendors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	vendors, err := h.documentService.ListVendors(c.Request.Context(), companyID, userID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list vendors")
		return
	}
	c.JSON(http.StatusOK, dto.ToListVendorResponse(vendors))
}
