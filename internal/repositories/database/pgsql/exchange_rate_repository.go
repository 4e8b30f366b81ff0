package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/models"
	"github.com/finbooks/finbooks_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exchangeRateColumns = `exchange_rate_id, from_currency_code, to_currency_code, rate, effective_date, created_at, created_by, last_updated_at, last_updated_by`

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for exchange rate data.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryWithTx {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExchangeRateRepository implements portsrepo.ExchangeRateRepositoryWithTx
var _ portsrepo.ExchangeRateRepositoryWithTx = (*PgxExchangeRateRepository)(nil)

// SaveExchangeRate persists a new exchange rate.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExchangeRateID,
		m.FromCode,
		m.ToCode,
		m.Rate,
		m.EffectiveDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: rate %s/%s for %s already exists", apperrors.ErrDuplicate, m.FromCode, m.ToCode, m.EffectiveDate.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to save exchange rate %s: %w", m.ExchangeRateID, err)
	}
	return nil
}

// FindExchangeRate retrieves the most recent rate between two currencies
// effective on or before the given date.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onDate time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND effective_date <= $3
		ORDER BY effective_date DESC
		LIMIT 1;
	`
	var m models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, fromCurrencyCode, toCurrencyCode, onDate).Scan(
		&m.ExchangeRateID,
		&m.FromCode,
		&m.ToCode,
		&m.Rate,
		&m.EffectiveDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate "+fromCurrencyCode+"/"+toCurrencyCode, err)
	}

	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}
