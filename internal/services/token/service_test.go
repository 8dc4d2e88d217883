package token

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/gateway"
	"sumitpay/internal/models"
	"sumitpay/internal/utils/logger"
	"sumitpay/internal/utils/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, token *models.PaymentToken) error {
	args := m.Called(ctx, token)
	if args.Error(0) == nil {
		token.ID = 42
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, tokenID uint, ownerID *uint) (*models.PaymentToken, error) {
	args := m.Called(ctx, tokenID, ownerID)
	t, _ := args.Get(0).(*models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, tokenID uint, ownerID *uint) (bool, error) {
	args := m.Called(ctx, tokenID, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.PaymentToken, error) {
	args := m.Called(ctx, ownerID)
	t, _ := args.Get(0).([]models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockRepository) ListActiveByOwner(ctx context.Context, ownerID uint, asOf time.Time) ([]models.PaymentToken, error) {
	args := m.Called(ctx, ownerID, asOf)
	t, _ := args.Get(0).([]models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockRepository) GetDefault(ctx context.Context, ownerID uint) (*models.PaymentToken, error) {
	args := m.Called(ctx, ownerID)
	t, _ := args.Get(0).(*models.PaymentToken)
	return t, args.Error(1)
}

func (m *MockRepository) SetDefault(ctx context.Context, tokenID, ownerID uint) error {
	return m.Called(ctx, tokenID, ownerID).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, body interface{}, path string, includeClientIP bool) (*gateway.Response, error) {
	args := m.Called(ctx, body, path, includeClientIP)
	r, _ := args.Get(0).(*gateway.Response)
	return r, args.Error(1)
}

var fixedNow = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func testConfig(mode config.PCIMode) config.Configuration {
	var cfg config.Configuration
	cfg.Credentials.CompanyID = "1001"
	cfg.Credentials.APIKey = "secret"
	cfg.Payment.PCIMode = mode
	cfg.Payment.TokenParam = "J5"
	return cfg
}

func newTestService(repo *MockRepository, gw *MockGateway, mode config.PCIMode) Service {
	return NewService(repo, gw, testConfig(mode), logger.Discard(), WithClock(func() time.Time { return fixedNow }))
}

func goodCard() models.PaymentMethod {
	return models.PaymentMethod{
		CardNumber: "4580123456789012",
		CVV:        "123",
		ExpMonth:   "3",
		ExpYear:    models.FlexString(strconv.Itoa(fixedNow.Year() + 2)),
		CitizenID:  "000000018",
	}
}

func approvedTokenResponse() *gateway.Response {
	return &gateway.Response{
		Status: "0",
		Data: &gateway.ResponseData{
			Success:         true,
			CardToken:       "tok-abc",
			CardPattern:     "458012******9012",
			Brand:           "Visa",
			ExpirationMonth: "3",
			ExpirationYear:  "2028",
			CitizenID:       "000000018",
		},
	}
}

func TestCreateToken_DirectMode(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw, config.PCIModeDirect)

	gw.On("Send", mock.Anything, mock.MatchedBy(func(req tokenizeRequest) bool {
		return req.CardNumber == "4580123456789012" &&
			req.ExpirationMonth == "03" &&
			req.ParamJ == "J5" &&
			req.Amount == 1 &&
			req.SingleUseToken == "" &&
			req.Credentials.APIKey == "secret"
	}), gateway.PathTransaction, false).Return(approvedTokenResponse(), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.PaymentToken")).Return(nil)

	token, err := svc.CreateToken(context.Background(), goodCard(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), token.UserID)
	assert.Equal(t, "tok-abc", token.Token)
	assert.Equal(t, "9012", token.CardLast4)
	assert.Equal(t, "****9012", token.MaskedCardNumber())
	assert.Equal(t, "03/2028", token.FormattedExpiration())
	assert.False(t, token.IsExpired(fixedNow))
	assert.False(t, token.IsDefault)

	gw.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreateToken_TokenizedModeForwardsSingleUseToken(t *testing.T) {
	repo := new(MockRepository)
	gw := new(MockGateway)
	svc := newTestService(repo, gw, config.PCIModeTokenized)

	gw.On("Send", mock.Anything, mock.MatchedBy(func(req tokenizeRequest) bool {
		return req.SingleUseToken == "su-1" && req.CardNumber == "" && req.CVV == ""
	}), gateway.PathTransaction, false).Return(approvedTokenResponse(), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// Raw card fields are ignored outside direct mode.
	m := goodCard()
	m.SingleUseToken = "su-1"
	_, err := svc.CreateToken(context.Background(), m, 7)
	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestCreateToken_Failures(t *testing.T) {
	tests := []struct {
		name       string
		mode       config.PCIMode
		method     models.PaymentMethod
		response   *gateway.Response
		sendErr    error
		wantIs     error
		wantMsg    string
		expectSend bool
	}{
		{
			name:       "gateway decline keeps its text",
			mode:       config.PCIModeDirect,
			method:     goodCard(),
			response:   &gateway.Response{Status: "0", Data: &gateway.ResponseData{Success: false, ResultDescription: "Card blocked"}},
			wantIs:     apperrors.ErrGatewayDeclined,
			wantMsg:    "Card blocked",
			expectSend: true,
		},
		{
			name:       "decline without text falls back",
			mode:       config.PCIModeDirect,
			method:     goodCard(),
			response:   &gateway.Response{Status: "1"},
			wantIs:     apperrors.ErrGatewayDeclined,
			wantMsg:    tokenCreationFailed,
			expectSend: true,
		},
		{
			name:       "transport failure",
			mode:       config.PCIModeDirect,
			method:     goodCard(),
			sendErr:    apperrors.ErrNoResponse.Wrap(errors.New("timeout")),
			wantIs:     apperrors.ErrNoResponse,
			expectSend: true,
		},
		{
			name:       "success without a token",
			mode:       config.PCIModeDirect,
			method:     goodCard(),
			response:   &gateway.Response{Status: "0", Data: &gateway.ResponseData{Success: true}},
			wantIs:     apperrors.ErrMalformedResponse,
			expectSend: true,
		},
		{
			name:   "invalid card never reaches the gateway",
			mode:   config.PCIModeDirect,
			method: models.PaymentMethod{CardNumber: "abc"},
		},
		{
			name:   "redirect mode requires a single-use token",
			mode:   config.PCIModeRedirect,
			method: models.PaymentMethod{},
		},
		{
			name:   "redirect mode refuses a raw card",
			mode:   config.PCIModeRedirect,
			method: goodCard(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gw := new(MockGateway)
			svc := newTestService(repo, gw, tt.mode)
			if tt.expectSend {
				gw.On("Send", mock.Anything, mock.Anything, gateway.PathTransaction, false).Return(tt.response, tt.sendErr)
			}

			token, err := svc.CreateToken(context.Background(), tt.method, 7)
			require.Error(t, err)
			assert.Nil(t, token)

			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				var verrs validation.Errors
				assert.ErrorAs(t, err, &verrs)
				assert.NotEmpty(t, verrs)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apperrors.Message(err, ""))
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			gw.AssertExpectations(t)
		})
	}
}

func TestSetDefault(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), config.PCIModeDirect)

	repo.On("SetDefault", mock.Anything, uint(1), uint(7)).Return(nil)
	repo.On("SetDefault", mock.Anything, uint(2), uint(7)).Return(apperrors.ErrTokenNotFound)
	repo.On("SetDefault", mock.Anything, uint(3), uint(7)).Return(errors.New("db down"))

	ok, err := svc.SetDefault(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.SetDefault(context.Background(), 2, 7)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.SetDefault(context.Background(), 3, 7)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestListActiveTokensUsesClock(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), config.PCIModeDirect)

	repo.On("ListActiveByOwner", mock.Anything, uint(7), fixedNow).Return([]models.PaymentToken{{ID: 1}}, nil)

	tokens, err := svc.ListActiveTokens(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
	repo.AssertExpectations(t)
}

func TestDeleteToken(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockGateway), config.PCIModeDirect)
	owner := uint(7)

	repo.On("Delete", mock.Anything, uint(1), &owner).Return(true, nil).Once()
	repo.On("Delete", mock.Anything, uint(1), &owner).Return(false, nil).Once()

	deleted, err := svc.DeleteToken(context.Background(), 1, &owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteToken(context.Background(), 1, &owner)
	require.NoError(t, err)
	assert.False(t, deleted)
}
