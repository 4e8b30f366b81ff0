package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `period_id, company_id, name, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryWithTx {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryWithTx
var _ portsrepo.PeriodRepositoryWithTx = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var p domain.Period
	err := row.Scan(
		&p.PeriodID,
		&p.CompanyID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePeriod persists a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	query := `
		INSERT INTO periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.CompanyID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: period %s already exists in company", apperrors.ErrDuplicate, period.Name)
		}
		return fmt.Errorf("failed to save period %s: %w", period.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a period by its ID within a company.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, companyID string, periodID string) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE period_id = $1 AND company_id = $2;`

	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find period "+periodID, err)
	}
	return p, nil
}

// FindPeriodForDate retrieves the period whose date range contains the given date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, companyID string, date time.Time) (*domain.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE company_id = $1 AND start_date <= $2 AND end_date >= $2
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, companyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find period for date", err)
	}
	return p, nil
}

// FindOverlappingPeriod retrieves any period whose range overlaps [startDate, endDate].
func (r *PgxPeriodRepository) FindOverlappingPeriod(ctx context.Context, companyID string, startDate, endDate time.Time) (*domain.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE company_id = $1 AND start_date <= $3 AND end_date >= $2
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, companyID, startDate, endDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to check overlapping periods", err)
	}
	return p, nil
}

// ListPeriods retrieves a paginated list of periods ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, companyID string, limit int, offset int) ([]domain.Period, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + periodColumns + ` FROM periods WHERE company_id = $1 ORDER BY start_date LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list periods for company "+companyID, err)
	}
	defer rows.Close()

	periods := []domain.Period{}
	for rows.Next() {
		p, scanErr := scanPeriod(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period row", scanErr)
		}
		periods = append(periods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating period rows", err)
	}
	return periods, nil
}

// UpdatePeriodStatus transitions a period between open and closed.
func (r *PgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, companyID string, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	query := `
		UPDATE periods
		SET status = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE period_id = $1 AND company_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, periodID, companyID, status, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update period status for "+periodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("period " + periodID + " not found for update")
	}
	return nil
}
