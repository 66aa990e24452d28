package dto

import (
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// RegisterCompanyRequest defines the data for company signup. The first
// Admin user is created in the same transaction.
type RegisterCompanyRequest struct {
	CompanyName   string `json:"companyName" binding:"required,max=100"`
	Country       string `json:"country" binding:"required,len=2,uppercase"`
	AdminName     string `json:"adminName" binding:"required,max=100"`
	AdminUsername string `json:"adminUsername" binding:"required,min=3,max=50"`
	AdminEmail    string `json:"adminEmail" binding:"required,email"`
	AdminPassword string `json:"adminPassword" binding:"required,min=8"`
}

// UpdateCompanyRequest defines the data allowed for updating a company.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateCompanyRequest struct {
	Name *string `json:"name"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID        string    `json:"companyID"`
	Name             string    `json:"name"`
	Country          string    `json:"country"`
	BaseCurrencyCode string    `json:"baseCurrencyCode"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RegisterCompanyResponse bundles the new company and its Admin user.
type RegisterCompanyResponse struct {
	Company CompanyResponse `json:"company"`
	Admin   UserResponse    `json:"admin"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		Country:          c.Country,
		BaseCurrencyCode: c.BaseCurrencyCode,
		CreatedAt:        c.CreatedAt,
	}
}
