package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// RequireSameCompany rejects cross-company access. Every read and write is
// scoped to the caller's own company.
func (s *BaseService) RequireSameCompany(user *domain.User, companyID string) error {
	if user.CompanyID != companyID {
		return fmt.Errorf("%w: resource belongs to another company", apperrors.ErrForbidden)
	}
	return nil
}

// RequireRole rejects callers not holding one of the allowed roles.
func (s *BaseService) RequireRole(user *domain.User, allowed ...domain.Role) error {
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not perform this action", apperrors.ErrForbidden, user.Role)
}
