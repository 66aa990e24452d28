package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{
		companyService: cs,
	}
}

// registerCompanyPublicRoutes registers the unauthenticated company signup route.
func registerCompanyPublicRoutes(rg *gin.Engine, services *portssvc.ServiceContainer) {
	h := newCompanyHandler(services.Company)
	rg.POST("/api/v1/companies", h.registerCompany)
}

// registerCompanyRoutes registers the authenticated company routes.
func registerCompanyRoutes(rg *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := newCompanyHandler(companyService)

	companies := rg.Group("/companies")
	{
		companies.GET("/:id", h.getCompany)
		companies.PUT("/:id", h.updateCompany) // Admin only
	}
}

// registerCompany godoc
// @Summary Register a new company
// @Description Creates a company together with its first Admin user. The company base currency is derived from the registration country.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.RegisterCompanyRequest true "Company and admin details"
// @Success 201 {object} dto.RegisterCompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Username already taken"
// @Failure 500 {object} map[string]string "Failed to register company"
// @Router /companies [post]
func (h *companyHandler) registerCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for company registration", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	company, admin, err := h.companyService.RegisterCompany(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to register company")
		return
	}

	logger.Info("Company registered",
		slog.String("company_id", company.CompanyID),
		slog.String("admin_user_id", admin.UserID))
	c.JSON(http.StatusCreated, dto.RegisterCompanyResponse{
		Company: dto.ToCompanyResponse(company),
		Admin:   dto.ToUserResponse(admin),
	})
}

// getCompany godoc
// @Summary Get a company by ID
// @Description Retrieves company details. Only members of the company may read it.
// @Tags companies
// @Produce  json
// @Param   id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), companyID, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve company")
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// updateCompany godoc
// @Summary Update a company
// @Description Updates company details. Admin only.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id path string true "Company ID"
// @Param   company body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *companyHandler) updateCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("id")

	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), companyID, req, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update company")
		return
	}

	logger.Info("Company updated", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}
