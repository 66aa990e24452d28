package services

import (
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/platform/config"
)

// Container bundles the service facades with the auth services that live
// outside the request-scoped ServiceContainer.
type Container struct {
	Services           *portssvc.ServiceContainer
	TokenService       portssvc.TokenSvcFacade
	GoogleOAuthHandler portssvc.GoogleOAuthHandlerSvcFacade
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *Container {
	container := &portssvc.ServiceContainer{}

	// User and currency services first since most others depend on them.
	container.User = NewUserService(repos.UserRepo)
	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)

	container.Company = NewCompanyService(repos.CompanyRepo, repos.UserRepo)
	container.Policy = NewPolicyService(repos.PolicyRepo, container.User)
	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.CompanyRepo,
		container.Policy,
		container.User,
		container.ExchangeRate,
	)
	container.Reporting = NewReportingService(
		repos.ReportingRepo,
		repos.CompanyRepo,
		container.User,
		container.ExchangeRate,
	)

	return &Container{
		Services:           container,
		TokenService:       NewTokenService(cfg, container.User),
		GoogleOAuthHandler: NewGoogleOAuthHandlerService(cfg),
	}
}

// Compile-time interface checks.
var (
	_ portssvc.ExpenseSvcFacade = (*expenseService)(nil)
	_ portssvc.PolicySvcFacade  = (*policyService)(nil)
	_ portssvc.UserSvcFacade    = (*userService)(nil)
)
