package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// policyHandler handles HTTP requests related to approval workflow policies.
type policyHandler struct {
	policyService portssvc.PolicySvcFacade
	userService   portssvc.UserSvcFacade
}

// newPolicyHandler creates a new policyHandler.
func newPolicyHandler(ps portssvc.PolicySvcFacade, us portssvc.UserSvcFacade) *policyHandler {
	return &policyHandler{
		policyService: ps,
		userService:   us,
	}
}

// registerPolicyRoutes registers all policy-related routes.
func registerPolicyRoutes(rg *gin.RouterGroup, policyService portssvc.PolicySvcFacade, userService portssvc.UserSvcFacade) {
	h := newPolicyHandler(policyService, userService)

	policies := rg.Group("/policies")
	{
		policies.POST("", h.createPolicy) // Admin only
		policies.GET("", h.listPolicies)
		policies.GET("/active", h.getActivePolicy)
		policies.GET("/:id", h.getPolicy)
		policies.PUT("/:id", h.updatePolicy)             // Admin only
		policies.POST("/:id/activate", h.activatePolicy) // Admin only
	}
}

// createPolicy godoc
// @Summary Create an approval policy
// @Description Validates and persists a new workflow policy for the admin's company. The policy does not route expenses until activated.
// @Tags policies
// @Accept  json
// @Produce  json
// @Param   policy body dto.CreatePolicyRequest true "Policy definition"
// @Success 201 {object} dto.PolicyResponse
// @Failure 400 {object} map[string]string "Malformed policy"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (non-admin)"
// @Security BearerAuth
// @Router /policies [post]
func (h *policyHandler) createPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create policy request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	policy, err := h.policyService.CreatePolicy(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create policy")
		return
	}

	logger.Info("Policy created", slog.String("policy_id", policy.PolicyID))
	c.JSON(http.StatusCreated, dto.ToPolicyResponse(policy))
}

// getPolicy godoc
// @Summary Get a policy by ID
// @Tags policies
// @Produce  json
// @Param   id path string true "Policy ID"
// @Success 200 {object} dto.PolicyResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Policy not found"
// @Security BearerAuth
// @Router /policies/{id} [get]
func (h *policyHandler) getPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	policy, err := h.policyService.GetPolicyByID(c.Request.Context(), c.Param("id"), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve policy")
		return
	}

	c.JSON(http.StatusOK, dto.ToPolicyResponse(policy))
}

// getActivePolicy godoc
// @Summary Get the company's active policy
// @Description Retrieves the policy new expenses are currently routed under.
// @Tags policies
// @Produce  json
// @Success 200 {object} dto.PolicyResponse
// @Failure 404 {object} map[string]string "No active policy"
// @Security BearerAuth
// @Router /policies/active [get]
func (h *policyHandler) getActivePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requester, err := h.userService.GetUserByID(c.Request.Context(), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve active policy")
		return
	}

	policy, err := h.policyService.GetActivePolicy(c.Request.Context(), requester.CompanyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve active policy")
		return
	}

	c.JSON(http.StatusOK, dto.ToPolicyResponse(policy))
}

// listPolicies godoc
// @Summary List the company's policies
// @Tags policies
// @Produce  json
// @Success 200 {array} dto.PolicyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /policies [get]
func (h *policyHandler) listPolicies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requester, err := h.userService.GetUserByID(c.Request.Context(), requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list policies")
		return
	}

	policies, err := h.policyService.ListPolicies(c.Request.Context(), requester.CompanyID, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list policies")
		return
	}

	c.JSON(http.StatusOK, dto.ToListPolicyResponse(policies))
}

// updatePolicy godoc
// @Summary Update a policy
// @Description Replaces a policy's levels and rules. In-flight expenses keep resolving under the version they were routed with.
// @Tags policies
// @Accept  json
// @Produce  json
// @Param   id path string true "Policy ID"
// @Param   policy body dto.UpdatePolicyRequest true "Fields to update"
// @Success 200 {object} dto.PolicyResponse
// @Failure 400 {object} map[string]string "Malformed policy"
// @Failure 403 {object} map[string]string "Forbidden (non-admin)"
// @Failure 404 {object} map[string]string "Policy not found"
// @Security BearerAuth
// @Router /policies/{id} [put]
func (h *policyHandler) updatePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	policy, err := h.policyService.UpdatePolicy(c.Request.Context(), c.Param("id"), req, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update policy")
		return
	}

	logger.Info("Policy updated", slog.String("policy_id", policy.PolicyID))
	c.JSON(http.StatusOK, dto.ToPolicyResponse(policy))
}

// activatePolicy godoc
// @Summary Activate a policy
// @Description Makes the policy the one new expense submissions are routed under.
// @Tags policies
// @Produce  json
// @Param   id path string true "Policy ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden (non-admin)"
// @Failure 404 {object} map[string]string "Policy not found"
// @Security BearerAuth
// @Router /policies/{id}/activate [post]
func (h *policyHandler) activatePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	policyID := c.Param("id")
	if err := h.policyService.ActivatePolicy(c.Request.Context(), policyID, requestingUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to activate policy")
		return
	}

	logger.Info("Policy activated", slog.String("policy_id", policyID))
	c.Status(http.StatusNoContent)
}
