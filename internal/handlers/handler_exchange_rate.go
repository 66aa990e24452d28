package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(es portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: es,
	}
}

// registerExchangeRateRoutes registers all exchange-rate-related routes.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("", h.listLatestRates)
		rates.GET("/:code", h.getLatestRate)
	}
}

// createExchangeRate godoc
// @Summary Create an exchange rate
// @Description Records a rate quoted against a reference currency. One unit of reference equals Rate units of the quoted currency.
// @Tags exchange-rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created",
		slog.String("currency_code", rate.CurrencyCode),
		slog.String("reference_code", rate.ReferenceCode))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// getLatestRate godoc
// @Summary Get the latest rate for a currency
// @Tags exchange-rates
// @Produce  json
// @Param   code path string true "Quoted currency code"
// @Param   reference query string true "Reference currency code"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 404 {object} map[string]string "Rate not found"
// @Security BearerAuth
// @Router /exchange-rates/{code} [get]
func (h *exchangeRateHandler) getLatestRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	referenceCode := c.Query("reference")
	if referenceCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference query parameter required"})
		return
	}

	rate, err := h.exchangeRateService.GetLatestRate(c.Request.Context(), c.Param("code"), referenceCode)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// listLatestRates godoc
// @Summary List the latest rate of every quoted currency
// @Tags exchange-rates
// @Produce  json
// @Param   reference query string true "Reference currency code"
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Missing reference"
// @Security BearerAuth
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) listLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	referenceCode := c.Query("reference")
	if referenceCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference query parameter required"})
		return
	}

	rates, err := h.exchangeRateService.ListLatestRates(c.Request.Context(), referenceCode)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}
