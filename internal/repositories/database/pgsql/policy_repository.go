package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPolicyRepository stores workflow policies. Levels and conditional rules
// are JSONB documents; the resolver treats a policy as one atomic value, so
// there is nothing to join on.
type PgxPolicyRepository struct {
	BaseRepository
}

func newPgxPolicyRepository(db *pgxpool.Pool) portsrepo.PolicyRepositoryFacade {
	return &PgxPolicyRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.PolicyRepositoryFacade = (*PgxPolicyRepository)(nil)

func (r *PgxPolicyRepository) SavePolicy(ctx context.Context, policy domain.WorkflowPolicy) error {
	levelsJSON, rulesJSON, err := marshalPolicy(policy)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_policies (policy_id, company_id, name, levels, rules,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.Pool.Exec(ctx, query,
		policy.PolicyID,
		policy.CompanyID,
		policy.Name,
		levelsJSON,
		rulesJSON,
		policy.CreatedAt,
		policy.CreatedBy,
		policy.LastUpdatedAt,
		policy.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}

func (r *PgxPolicyRepository) UpdatePolicy(ctx context.Context, policy domain.WorkflowPolicy) error {
	levelsJSON, rulesJSON, err := marshalPolicy(policy)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_policies
		SET name = $2, levels = $3, rules = $4, last_updated_at = $5, last_updated_by = $6
		WHERE policy_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		policy.PolicyID,
		policy.Name,
		levelsJSON,
		rulesJSON,
		policy.LastUpdatedAt,
		policy.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("policy %s not found for update", policy.PolicyID)
	}
	return nil
}

func (r *PgxPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.WorkflowPolicy, error) {
	query := `
		SELECT policy_id, company_id, name, levels, rules,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_policies
		WHERE policy_id = $1;
	`
	policy, err := scanPolicy(r.Pool.QueryRow(ctx, query, policyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find policy %s: %w", policyID, err)
	}
	return policy, nil
}

func (r *PgxPolicyRepository) FindActivePolicyByCompany(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error) {
	query := `
		SELECT p.policy_id, p.company_id, p.name, p.levels, p.rules,
		       p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
		FROM workflow_policies p
		JOIN company_active_policies a ON a.policy_id = p.policy_id
		WHERE a.company_id = $1;
	`
	policy, err := scanPolicy(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active policy for company %s: %w", companyID, err)
	}
	return policy, nil
}

func (r *PgxPolicyRepository) ListPoliciesByCompany(ctx context.Context, companyID string) ([]domain.WorkflowPolicy, error) {
	query := `
		SELECT policy_id, company_id, name, levels, rules,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM workflow_policies
		WHERE company_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var policies []domain.WorkflowPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy row: %w", err)
		}
		policies = append(policies, *policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy rows: %w", err)
	}
	return policies, nil
}

// SetActivePolicy upserts the company's single active-policy pointer.
func (r *PgxPolicyRepository) SetActivePolicy(ctx context.Context, companyID string, policyID string, updatedByUserID string) error {
	query := `
		INSERT INTO company_active_policies (company_id, policy_id, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE SET
			policy_id = EXCLUDED.policy_id,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query, companyID, policyID, time.Now(), updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to set active policy: %w", err)
	}
	return nil
}

func marshalPolicy(policy domain.WorkflowPolicy) ([]byte, []byte, error) {
	levelsJSON, err := json.Marshal(policy.Levels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal policy levels: %w", err)
	}
	rulesJSON, err := json.Marshal(policy.Rules)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal policy rules: %w", err)
	}
	return levelsJSON, rulesJSON, nil
}

func scanPolicy(row pgx.Row) (*domain.WorkflowPolicy, error) {
	var policy domain.WorkflowPolicy
	var levelsJSON, rulesJSON []byte
	err := row.Scan(
		&policy.PolicyID,
		&policy.CompanyID,
		&policy.Name,
		&levelsJSON,
		&rulesJSON,
		&policy.CreatedAt,
		&policy.CreatedBy,
		&policy.LastUpdatedAt,
		&policy.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(levelsJSON, &policy.Levels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy levels: %w", err)
	}
	if err := json.Unmarshal(rulesJSON, &policy.Rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy rules: %w", err)
	}
	return &policy, nil
}
