package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests related to expense claims and their
// approval decisions.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// registerExpenseRoutes registers all expense-related routes.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.submitExpense)
		expenses.GET("/mine", h.listMyExpenses)
		expenses.GET("/pending", h.listPendingApprovals)
		expenses.GET("/:id", h.getExpense)
		expenses.GET("/:id/resolution", h.getResolutionState)
		expenses.POST("/:id/decision", h.recordDecision)
	}
}

// submitExpense godoc
// @Summary Submit an expense claim
// @Description Normalizes the amount to company base currency, routes the claim to its initial approval level under the active policy, and persists it. Amounts within the auto-approval limit are approved immediately.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid amount or unknown currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No active policy"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for submit expense request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	submitterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.SubmitExpense(c.Request.Context(), req, submitterID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to submit expense")
		return
	}

	logger.Info("Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("status", string(expense.Status)),
		slog.Int("initial_level", expense.CurrentLevel))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// getExpense godoc
// @Summary Get an expense by ID
// @Description Retrieves an expense with its full approval ledger. Submitters see their own; approvers see their company's.
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), c.Param("id"), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve expense")
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// getResolutionState godoc
// @Summary Get an expense's resolution state
// @Description Replays the approval ledger and reports where the expense stands: current level, required role, and quorum progress.
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 200 {object} dto.ResolutionStateResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /expenses/{id}/resolution [get]
func (h *expenseHandler) getResolutionState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resolution, err := h.expenseService.GetResolutionState(c.Request.Context(), c.Param("id"), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to resolve expense state")
		return
	}

	c.JSON(http.StatusOK, dto.ToResolutionStateResponse(resolution))
}

// listMyExpenses godoc
// @Summary List my expenses
// @Description Retrieves the requesting user's own expenses, newest first, with token-based pagination.
// @Tags expenses
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from a previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /expenses/mine [get]
func (h *expenseHandler) listMyExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.expenseService.ListMyExpenses(c.Request.Context(), requestingUserID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list expenses")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listPendingApprovals godoc
// @Summary List expenses awaiting my decision
// @Description Retrieves pending expenses the requesting user can decide on at their role's level, optionally narrowed to one level.
// @Tags expenses
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from a previous page"
// @Param   level query int false "Approval level filter"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /expenses/pending [get]
func (h *expenseHandler) listPendingApprovals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.expenseService.ListPendingApprovals(c.Request.Context(), requestingUserID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list pending approvals")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// recordDecision godoc
// @Summary Record an approval decision
// @Description Appends one approve or reject decision to the expense's ledger. A reject is final; approvals advance the expense once the level's quorum is met.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   id path string true "Expense ID"
// @Param   decision body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid decision"
// @Failure 403 {object} map[string]string "Approver not authorized for this level"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Duplicate decision or stale level"
// @Security BearerAuth
// @Router /expenses/{id}/decision [post]
func (h *expenseHandler) recordDecision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for decision request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expenseID := c.Param("id")
	expense, err := h.expenseService.RecordDecision(c.Request.Context(), expenseID, req, approverID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record decision")
		return
	}

	logger.Info("Decision recorded",
		slog.String("expense_id", expenseID),
		slog.String("decision", string(req.Decision)),
		slog.String("status", string(expense.Status)))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
