package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// currencyService provides currency lookup and registration operations.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// CreateCurrency persists a new currency.
func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	now := time.Now().UTC()
	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Precision:    req.Precision,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, err
	}
	return &currency, nil
}

// GetCurrencyByCode retrieves a specific currency by its code.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	return s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
}

// ListCurrencies retrieves all available currencies.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.currencyRepo.ListCurrencies(ctx)
}

// exchangeRateService provides exchange rate operations.
type exchangeRateService struct {
	exchangeRateRepo portsrepo.ExchangeRateRepositoryFacade
	currencySvc      portssvc.CurrencySvcFacade
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(exchangeRateRepo portsrepo.ExchangeRateRepositoryFacade, currencySvc portssvc.CurrencySvcFacade) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		exchangeRateRepo: exchangeRateRepo,
		currencySvc:      currencySvc,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// CreateExchangeRate persists a new exchange rate after validating both currencies.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currencies must differ", apperrors.ErrValidation)
	}
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	for _, code := range []string{req.FromCurrencyCode, req.ToCurrencyCode} {
		if _, err := s.currencySvc.GetCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency %s: %w", code, err)
		}
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		FromCode:       req.FromCurrencyCode,
		ToCode:         req.ToCurrencyCode,
		Rate:           req.Rate,
		EffectiveDate:  req.EffectiveDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.exchangeRateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

// GetExchangeRate retrieves the exchange rate between two currencies effective on a date.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, fromCode, toCode string, onDate time.Time) (*domain.ExchangeRate, error) {
	return s.exchangeRateRepo.FindExchangeRate(ctx, fromCode, toCode, onDate)
}
