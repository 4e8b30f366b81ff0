package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const companyColumns = `company_id, name, base_currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryWithTx {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryWithTx
var _ portsrepo.CompanyRepositoryWithTx = (*PgxCompanyRepository)(nil)

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.CompanyID,
		&c.Name,
		&c.BaseCurrencyCode,
		&c.IsActive,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCompany persists a new company.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.BaseCurrencyCode,
		company.IsActive,
		company.CreatedAt,
		company.CreatedBy,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: company %s already exists", apperrors.ErrDuplicate, company.CompanyID)
		}
		return fmt.Errorf("failed to save company %s: %w", company.CompanyID, err)
	}
	return nil
}

// UpdateCompany updates an existing company's mutable details.
func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	query := `
		UPDATE companies
		SET name = $2,
		    is_active = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE company_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.IsActive,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update company "+company.CompanyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("company " + company.CompanyID + " not found for update")
	}
	return nil
}

// FindCompanyByID retrieves a company by its ID.
func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`

	c, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find company "+companyID, err)
	}
	return c, nil
}

// ListCompaniesByUserID retrieves all companies a user belongs to.
func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
		SELECT c.company_id, c.name, c.base_currency_code, c.is_active, c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
		FROM companies c
		JOIN company_members m ON c.company_id = m.company_id
		WHERE m.user_id = $1 AND m.role != 'REMOVED'
		ORDER BY c.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list companies for user "+userID, err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, scanErr := scanCompany(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan company row", scanErr)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating company rows", err)
	}
	return companies, nil
}

// AddMember adds a user to a company with a specific role, updating the role
// if the membership already exists.
func (r *PgxCompanyRepository) AddMember(ctx context.Context, membership domain.CompanyMember) error {
	query := `
		INSERT INTO company_members (user_id, company_id, role, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, company_id)
		DO UPDATE SET role = EXCLUDED.role, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.CompanyID,
		membership.Role,
		membership.CreatedAt,
		membership.CreatedBy,
		membership.LastUpdatedAt,
		membership.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add member "+membership.UserID+" to company "+membership.CompanyID, err)
	}
	return nil
}

// FindMemberRole retrieves the role of a user in a company.
func (r *PgxCompanyRepository) FindMemberRole(ctx context.Context, userID, companyID string) (*domain.CompanyMember, error) {
	query := `
		SELECT user_id, company_id, role, created_at, created_by, last_updated_at, last_updated_by
		FROM company_members
		WHERE user_id = $1 AND company_id = $2;
	`
	var m domain.CompanyMember
	err := r.Pool.QueryRow(ctx, query, userID, companyID).Scan(
		&m.UserID,
		&m.CompanyID,
		&m.Role,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find membership for user "+userID, err)
	}
	return &m, nil
}

// ListMembers retrieves all memberships for a company.
func (r *PgxCompanyRepository) ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	query := `
		SELECT user_id, company_id, role, created_at, created_by, last_updated_at, last_updated_by
		FROM company_members
		WHERE company_id = $1 AND role != 'REMOVED'
		ORDER BY user_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list members for company "+companyID, err)
	}
	defer rows.Close()

	members := []domain.CompanyMember{}
	for rows.Next() {
		var m domain.CompanyMember
		if scanErr := rows.Scan(
			&m.UserID,
			&m.CompanyID,
			&m.Role,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan membership row", scanErr)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating membership rows", err)
	}
	return members, nil
}
