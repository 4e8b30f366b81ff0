package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/handlers"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) PostEntry(ctx context.Context, companyID string, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) ReverseEntry(ctx context.Context, companyID string, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) GetEntryByID(ctx context.Context, companyID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) ListEntries(ctx context.Context, companyID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, companyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}
func (m *MockLedgerService) ListLinesByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, companyID, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "finbooks-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockLedgerService = new(MockLedgerService)

	v1 := suite.router.Group("/api/v1/companies/:companyID")
	handlers.RegisterLedgerRoutes(v1, suite.mockLedgerService)
}

func (suite *LedgerHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestPostEntry_Success() {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	entryID := uuid.NewString()

	body := dto.PostEntryRequest{
		EntryDate:      time.Now().UTC(),
		Description:    "Office rent",
		CurrencyCode:   "USD",
		IdempotencyKey: uuid.NewString(),
		Lines: []dto.PostEntryLine{
			{AccountID: uuid.NewString(), Side: domain.DebitLine, Amount: decimal.NewFromInt(100)},
			{AccountID: uuid.NewString(), Side: domain.CreditLine, Amount: decimal.NewFromInt(100)},
		},
	}

	posted := &domain.JournalEntry{
		EntryID:      entryID,
		CompanyID:    companyID,
		Description:  body.Description,
		CurrencyCode: "USD",
		Status:       domain.Posted,
		Amount:       decimal.NewFromInt(100),
	}

	suite.mockLedgerService.On("PostEntry",
		mock.Anything,
		companyID,
		mock.MatchedBy(func(req dto.PostEntryRequest) bool {
			return req.IdempotencyKey == body.IdempotencyKey && len(req.Lines) == 2
		}),
		userID,
	).Return(posted, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/entries", companyID)
	w := suite.doRequest(http.MethodPost, url, userID, body)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entryID, resp.EntryID)
	suite.Equal(string(domain.Posted), resp.Status)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPostEntry_ClosedPeriodMapsToConflict() {
	companyID := uuid.NewString()
	userID := uuid.NewString()

	body := dto.PostEntryRequest{
		EntryDate:      time.Now().UTC(),
		CurrencyCode:   "USD",
		IdempotencyKey: uuid.NewString(),
		Lines: []dto.PostEntryLine{
			{AccountID: uuid.NewString(), Side: domain.DebitLine, Amount: decimal.NewFromInt(100)},
			{AccountID: uuid.NewString(), Side: domain.CreditLine, Amount: decimal.NewFromInt(100)},
		},
	}

	suite.mockLedgerService.On("PostEntry", mock.Anything, companyID, mock.Anything, userID).
		Return(nil, apperrors.ErrPeriodClosed).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/entries", companyID)
	w := suite.doRequest(http.MethodPost, url, userID, body)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestPostEntry_MissingTokenRejected() {
	url := fmt.Sprintf("/api/v1/companies/%s/entries", uuid.NewString())
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(nil))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestGetEntry_NotFound() {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockLedgerService.On("GetEntryByID", mock.Anything, companyID, entryID, userID).
		Return(nil, apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/entries/%s", companyID, entryID)
	w := suite.doRequest(http.MethodGet, url, userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestReverseEntry_EmptyBodyAllowed() {
	companyID := uuid.NewString()
	userID := uuid.NewString()
	entryID := uuid.NewString()
	reversalID := uuid.NewString()

	reversal := &domain.JournalEntry{
		EntryID:         reversalID,
		CompanyID:       companyID,
		Status:          domain.Posted,
		OriginalEntryID: &entryID,
		Amount:          decimal.NewFromInt(100),
	}

	suite.mockLedgerService.On("ReverseEntry", mock.Anything, companyID, entryID, dto.ReverseEntryRequest{}, userID).
		Return(reversal, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/entries/%s/reverse", companyID, entryID)
	w := suite.doRequest(http.MethodPost, url, userID, nil)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(reversalID, resp.EntryID)
	suite.Require().NotNil(resp.OriginalEntryID)
	suite.Equal(entryID, *resp.OriginalEntryID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestListEntries_PassesQueryParams() {
	companyID := uuid.NewString()
	userID := uuid.NewString()

	expected := &dto.ListEntriesResponse{
		Entries: []dto.EntryResponse{
			{EntryID: uuid.NewString(), Status: string(domain.Posted), Amount: decimal.NewFromInt(42)},
		},
	}

	suite.mockLedgerService.On("ListEntries", mock.Anything, companyID, userID,
		mock.MatchedBy(func(p dto.ListEntriesParams) bool {
			return p.Limit == 5 && p.IncludeReversals
		}),
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/entries?limit=5&includeReversals=true", companyID)
	w := suite.doRequest(http.MethodGet, url, userID, nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Entries, 1)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestLedgerHandler(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
