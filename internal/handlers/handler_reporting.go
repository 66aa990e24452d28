package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for dashboard reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	userService      portssvc.UserSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService, us portssvc.UserSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		userService:      us,
	}
}

// registerReportingRoutes registers all reporting-related routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService, userService portssvc.UserSvcFacade) {
	h := newReportingHandler(reportingService, userService)

	reports := rg.Group("/reports")
	{
		reports.GET("/dashboard", h.dashboard)
		reports.GET("/spend-by-submitter", h.spendBySubmitter)
	}
}

// reportWindow applies the default reporting period: the 30 days up to now.
func reportWindow(params dto.DashboardParams) (time.Time, time.Time) {
	to := params.To
	if to.IsZero() {
		to = time.Now()
	}
	from := params.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

// dashboard godoc
// @Summary Company expense dashboard
// @Description Summarizes the company's expenses for a period: counts by status and approved totals by category, converted to base currency. Managers and admins only.
// @Tags reports
// @Produce  json
// @Param   from query string false "Period start (YYYY-MM-DD), default 30 days ago"
// @Param   to query string false "Period end (YYYY-MM-DD), default now"
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (employees)"
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportingHandler) dashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.DashboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, to := reportWindow(params)

	requester, err := h.userService.GetUserByID(c.Request.Context(), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build dashboard")
		return
	}

	resp, err := h.reportingService.Dashboard(c.Request.Context(), requester.CompanyID, from, to, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// spendBySubmitter godoc
// @Summary Approved spend per submitter
// @Description Totals approved spend per submitter in base currency for a period. Managers and admins only.
// @Tags reports
// @Produce  json
// @Param   from query string false "Period start (YYYY-MM-DD), default 30 days ago"
// @Param   to query string false "Period end (YYYY-MM-DD), default now"
// @Success 200 {object} dto.SubmitterSpendResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (employees)"
// @Security BearerAuth
// @Router /reports/spend-by-submitter [get]
func (h *reportingHandler) spendBySubmitter(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.DashboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	from, to := reportWindow(params)

	requester, err := h.userService.GetUserByID(c.Request.Context(), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build submitter report")
		return
	}

	resp, err := h.reportingService.SpendBySubmitter(c.Request.Context(), requester.CompanyID, from, to, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build submitter report")
		return
	}

	c.JSON(http.StatusOK, resp)
}
