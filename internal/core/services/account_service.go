package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

var (
	ErrParentNotLeafable = errors.New("account with posted lines cannot become a parent")
	ErrAccountInUse      = errors.New("account has posted lines and cannot be deactivated")
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	BaseService
	accountRepo   portsrepo.AccountRepositoryWithTx
	currencyRepo  portsrepo.CurrencyRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, currencyRepo portsrepo.CurrencyRepositoryFacade, reportingRepo portsrepo.ReportingRepository, authorizer portssvc.CompanyAuthorizerSvc) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService:   BaseService{CompanyAuthorizer: authorizer},
		accountRepo:   accountRepo,
		currencyRepo:  currencyRepo,
		reportingRepo: reportingRepo,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account after validating its currency and
// parent. A parent account with posted lines cannot gain children, since
// postings are leaf-only.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency: %w", err)
	}

	now := time.Now().UTC()

	var parent *domain.Account
	if req.ParentAccountID != nil {
		var err error
		parent, err = s.accountRepo.FindAccountByID(ctx, companyID, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, *req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to load parent account: %w", err)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("%w: parent account type %s does not match %s", apperrors.ErrValidation, parent.AccountType, req.AccountType)
		}
		if parent.IsLeaf {
			posted, err := s.accountRepo.HasPostedLines(ctx, companyID, parent.AccountID)
			if err != nil {
				return nil, fmt.Errorf("failed to check parent postings: %w", err)
			}
			if posted {
				return nil, fmt.Errorf("%w: account %s", ErrParentNotLeafable, parent.AccountID)
			}
		}
	}

	account := domain.Account{
		AccountID:       uuid.NewString(),
		CompanyID:       companyID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		NormalSide:      domain.NormalSideFor(req.AccountType),
		CurrencyCode:    req.CurrencyCode,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsLeaf:          true,
		IsCash:          req.IsCash,
		IsActive:        true,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("company_id", companyID), slog.String("code", req.Code))
		return nil, err
	}

	// Adding a child turns the parent into a non-leaf node.
	if parent != nil && parent.IsLeaf {
		parent.IsLeaf = false
		parent.LastUpdatedAt = now
		parent.LastUpdatedBy = userID
		if err := s.accountRepo.UpdateAccount(ctx, *parent); err != nil {
			s.LogError(ctx, err, "Failed to clear leaf flag on parent", slog.String("parent_id", parent.AccountID))
			return nil, err
		}
	}

	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, companyID string, accountID string, userID string) (*domain.Account, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.accountRepo.FindAccountByID(ctx, companyID, accountID)
}

// GetAccountByCode retrieves an account by its chart-of-accounts code.
func (s *accountService) GetAccountByCode(ctx context.Context, companyID string, code string, userID string) (*domain.Account, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.accountRepo.FindAccountByCode(ctx, companyID, code)
}

// ListAccounts retrieves a paginated list of accounts for a given company.
func (s *accountService) ListAccounts(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Account, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.accountRepo.ListAccounts(ctx, companyID, limit, offset)
}

// UpdateAccount updates an existing account's details.
func (s *accountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive so it no longer accepts
// postings. History is preserved.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return err
	}

	if _, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID); err != nil {
		return err
	}
	return s.accountRepo.DeactivateAccount(ctx, companyID, accountID, userID, time.Now().UTC())
}

// CalculateAccountBalance computes the signed balance of an account as of a date.
func (s *accountService) CalculateAccountBalance(ctx context.Context, companyID string, accountID string, asOf time.Time, userID string) (decimal.Decimal, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return decimal.Zero, err
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID); err != nil {
		return decimal.Zero, err
	}
	return s.reportingRepo.GetAccountBalanceAsOf(ctx, companyID, accountID, asOf)
}
