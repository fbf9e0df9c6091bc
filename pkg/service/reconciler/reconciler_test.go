package reconciler_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	infraeventbus "github.com/shillingix/backend/infra/eventbus"
	"github.com/shillingix/backend/infra/provider/mockpayment"
	"github.com/shillingix/backend/infra/provider/mocksettlement"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/domain/events"
	"github.com/shillingix/backend/pkg/domain/ledger"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/provider/payment"
	"github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store   *fixtures.Store
	payment *mockpayment.Provider
	gateway *mocksettlement.Gateway
	bus     *infraeventbus.MemoryEventBus
	svc     *reconciler.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := fixtures.NewStore()
	pay := mockpayment.New()
	gw := mocksettlement.New()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := reconciler.NewService(config.Deps{
		Uow:               fixtures.NewUoW(store),
		PaymentProvider:   pay,
		SettlementGateway: gw,
		EventBus:          bus,
		Logger:            slog.Default(),
	})
	return &harness{store: store, payment: pay, gateway: gw, bus: bus, svc: svc}
}

func kes(major float64) money.Money {
	m, err := money.New(major, money.DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return m
}

func seedBondProduct(h *harness, available int64) uuid.UUID {
	id := uuid.New()
	h.store.SeedProduct(dto.ProductCreate{
		ID:                id,
		Name:              "Infrastructure Bond 2030",
		Type:              "infrastructure",
		InterestRate:      12.5,
		TermDays:          365,
		MinInvestment:     50000,   // KES 500
		AvailableAmount:   available,
		Status:            "active",
		BlockchainAssetID: "asset-1",
	})
	return id
}

func TestInvest_HappyPath(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)

	receipt, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.NoError(t, err)

	assert.Equal(t, int64(400_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(9_400_00), h.store.ProductAvailable(productID))
	assert.Equal(t, "active", h.store.InvestmentStatus(receipt.InvestmentID))
	assert.Equal(t, ledger.StatusCompleted, receipt.Status)
	assert.True(t, receipt.Settlement.OnChain())
	assert.NotEmpty(t, receipt.Settlement.TxHash())

	require.Len(t, h.bus.Published(), 1)
	settled, ok := h.bus.Published()[0].(events.InvestmentSettled)
	require.True(t, ok)
	assert.True(t, settled.OnChain)
	assert.Equal(t, receipt.InvestmentID, settled.InvestmentID)
}

func TestInvest_InsufficientFundsLeavesInventoryIntact(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 100_00)
	productID := seedBondProduct(h, 10_000_00)

	_, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.ErrorIs(t, err, common.ErrInsufficientFunds)

	assert.Equal(t, int64(100_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(10_000_00), h.store.ProductAvailable(productID))
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))
	// The rejection happens before the external trade: the chain must not
	// record a buy the ledger never will.
	assert.Empty(t, h.gateway.Trades())
	assert.Empty(t, h.bus.Published())
}

func TestInvest_GatewayDownFallsBackToLocalSettlement(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)
	h.gateway.Down = true

	receipt, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.NoError(t, err)

	// The purchase itself is indistinguishable from the mirrored path.
	assert.Equal(t, int64(400_00), h.store.WalletBalance(userID))
	assert.False(t, receipt.Settlement.OnChain())
	assert.Empty(t, receipt.Settlement.TxHash())

	require.Len(t, h.bus.Published(), 1)
	settled := h.bus.Published()[0].(events.InvestmentSettled)
	assert.False(t, settled.OnChain)
}

func TestInvest_BelowMinimumRejected(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)

	_, err := h.svc.Invest(context.Background(), userID, productID, kes(100))
	require.ErrorIs(t, err, common.ErrBelowMinimumInvestment)
	assert.Equal(t, int64(1_000_00), h.store.WalletBalance(userID))
}

func TestInvest_ExhaustedInventoryRejectedAtomically(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 500_00)

	_, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.ErrorIs(t, err, common.ErrProductUnavailable)

	assert.Equal(t, int64(1_000_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(500_00), h.store.ProductAvailable(productID))
	assert.Empty(t, h.gateway.Trades())
}

func TestInvest_NonPositiveAmount(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Invest(context.Background(), uuid.New(), uuid.New(), money.Zero(money.KES))
	require.ErrorIs(t, err, common.ErrAmountMustBePositive)
}

func TestSell_HappyPath(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)

	receipt, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.NoError(t, err)
	h.bus.ClearPublished()

	sold, err := h.svc.Sell(context.Background(), userID, receipt.InvestmentID)
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(10_000_00), h.store.ProductAvailable(productID))
	assert.Equal(t, "sold", h.store.InvestmentStatus(receipt.InvestmentID))
	assert.True(t, sold.Settlement.OnChain())

	// Invest then sell conserves value: ledger deltas sum to zero.
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))

	require.Len(t, h.bus.Published(), 1)
	_, ok := h.bus.Published()[0].(events.InvestmentSold)
	assert.True(t, ok)
}

func TestSell_TwiceCreditsOnlyOnce(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)

	receipt, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.NoError(t, err)

	_, err = h.svc.Sell(context.Background(), userID, receipt.InvestmentID)
	require.NoError(t, err)
	_, err = h.svc.Sell(context.Background(), userID, receipt.InvestmentID)
	require.ErrorIs(t, err, common.ErrInvestmentNotFound)

	assert.Equal(t, int64(1_000_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))
}

func TestSell_ForeignPositionRejected(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	intruder := uuid.New()
	h.store.SeedWallet(owner, 1_000_00)
	productID := seedBondProduct(h, 10_000_00)

	receipt, err := h.svc.Invest(context.Background(), owner, productID, kes(600))
	require.NoError(t, err)

	_, err = h.svc.Sell(context.Background(), intruder, receipt.InvestmentID)
	require.ErrorIs(t, err, common.ErrInvestmentNotFound)
	assert.Equal(t, "active", h.store.InvestmentStatus(receipt.InvestmentID))
}

func TestDeposit_PendingUntilCallback(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)

	receipt, err := h.svc.Deposit(context.Background(), userID, "0712345678", kes(250))
	require.NoError(t, err)

	assert.Equal(t, ledger.StatusPending, receipt.Status)
	assert.NotEmpty(t, receipt.CheckoutRequestID)
	// Nothing lands in the wallet before the callback.
	assert.Equal(t, int64(0), h.store.WalletBalance(userID))

	require.Len(t, h.payment.Pushes(), 1)
	assert.Equal(t, "254712345678", h.payment.Pushes()[0].PhoneNumber)
	assert.InDelta(t, 250.0, h.payment.Pushes()[0].Amount, 0.001)

	require.Len(t, h.bus.Published(), 1)
	_, ok := h.bus.Published()[0].(events.DepositPending)
	assert.True(t, ok)
}

func TestDeposit_RejectedPushWritesNothing(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)
	h.payment.FailPush = true

	_, err := h.svc.Deposit(context.Background(), userID, "0712345678", kes(250))
	require.Error(t, err)
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))
	assert.Empty(t, h.bus.Published())
}

func TestDeposit_InvalidPhoneRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Deposit(context.Background(), uuid.New(), "12345", kes(250))
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, h.payment.Pushes())
}

func TestConfirmDeposit_CreditsWalletOnce(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)

	receipt, err := h.svc.Deposit(context.Background(), userID, "0712345678", kes(250))
	require.NoError(t, err)
	h.bus.ClearPublished()

	callback := &payment.CallbackResult{
		CheckoutRequestID: receipt.CheckoutRequestID,
		Success:           true,
		Amount:            250,
		Receipt:           "SGR7TY1XKQ",
	}
	require.NoError(t, h.svc.ConfirmDeposit(context.Background(), callback))
	assert.Equal(t, int64(250_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(250_00), h.store.LedgerSum(userID))

	// A replayed callback must not credit again.
	require.NoError(t, h.svc.ConfirmDeposit(context.Background(), callback))
	assert.Equal(t, int64(250_00), h.store.WalletBalance(userID))

	require.Len(t, h.bus.Published(), 1)
	confirmed, ok := h.bus.Published()[0].(events.DepositConfirmed)
	require.True(t, ok)
	assert.Equal(t, "SGR7TY1XKQ", confirmed.MpesaReceipt)
}

func TestConfirmDeposit_FailureLeavesWalletUntouched(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)

	receipt, err := h.svc.Deposit(context.Background(), userID, "0712345678", kes(250))
	require.NoError(t, err)
	h.bus.ClearPublished()

	require.NoError(t, h.svc.ConfirmDeposit(context.Background(), &payment.CallbackResult{
		CheckoutRequestID: receipt.CheckoutRequestID,
		Success:           false,
		ResultCode:        1032,
		ResultDescription: "Request cancelled by user",
	}))

	assert.Equal(t, int64(0), h.store.WalletBalance(userID))
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))

	require.Len(t, h.bus.Published(), 1)
	failed, ok := h.bus.Published()[0].(events.DepositFailed)
	require.True(t, ok)
	assert.Equal(t, "Request cancelled by user", failed.Reason)
}

func TestConfirmDeposit_UnknownCheckoutID(t *testing.T) {
	h := newHarness(t)
	err := h.svc.ConfirmDeposit(context.Background(), &payment.CallbackResult{
		CheckoutRequestID: "ws_CO_unknown",
		Success:           true,
	})
	require.ErrorIs(t, err, common.ErrTransactionNotFound)
}

func TestWithdraw_HappyPath(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 500_00)

	receipt, err := h.svc.Withdraw(context.Background(), userID, "0712345678", kes(200))
	require.NoError(t, err)

	assert.Equal(t, int64(300_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(-200_00), h.store.LedgerSum(userID))
	assert.Equal(t, ledger.StatusCompleted, receipt.Status)

	require.Len(t, h.payment.Payouts(), 1)
	assert.Equal(t, "254712345678", h.payment.Payouts()[0].PhoneNumber)

	require.Len(t, h.bus.Published(), 1)
	_, ok := h.bus.Published()[0].(events.WithdrawalCompleted)
	assert.True(t, ok)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 100_00)

	_, err := h.svc.Withdraw(context.Background(), userID, "0712345678", kes(200))
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Equal(t, int64(100_00), h.store.WalletBalance(userID))
	assert.Empty(t, h.payment.Payouts())
}

func TestWithdraw_PayoutFailureReversesDebit(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 500_00)
	h.payment.Err = assert.AnError

	_, err := h.svc.Withdraw(context.Background(), userID, "0712345678", kes(200))
	require.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, int64(500_00), h.store.WalletBalance(userID))
	// The reversed entry stays on the ledger as failed, contributing no
	// completed value.
	assert.Equal(t, int64(0), h.store.LedgerSum(userID))
	assert.Empty(t, h.bus.Published())
}

func TestMature_CreditsPrincipalPlusInterest(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)
	productID := seedBondProduct(h, 10_000_00)

	matured := time.Now().AddDate(-1, 0, 0)
	invID := uuid.New()
	h.store.SeedInvestment(dto.InvestmentCreate{
		ID:           invID,
		UserID:       userID,
		ProductID:    productID,
		Name:         "Infrastructure Bond 2030",
		Type:         "infrastructure",
		Amount:       1_000_00,
		InterestRate: 12.5,
		Status:       "active",
		MaturityDate: &matured,
	})

	receipt, err := h.svc.Mature(context.Background(), userID, invID)
	require.NoError(t, err)

	// 12.5% simple interest on KES 1000 over 365 days = KES 125.
	assert.Equal(t, int64(1_125_00), h.store.WalletBalance(userID))
	assert.Equal(t, int64(1_125_00), h.store.LedgerSum(userID))
	assert.Equal(t, "completed", h.store.InvestmentStatus(invID))
	assert.Equal(t, int64(1_125_00), receipt.Amount.Amount())

	require.Len(t, h.bus.Published(), 1)
	ev, ok := h.bus.Published()[0].(events.InvestmentMatured)
	require.True(t, ok)
	assert.Equal(t, int64(1_000_00), ev.Principal.Amount())
	assert.Equal(t, int64(12_500), ev.Interest.Amount())
}

func TestMature_NotYetMaturedRejected(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)
	productID := seedBondProduct(h, 10_000_00)

	future := time.Now().AddDate(0, 6, 0)
	invID := uuid.New()
	h.store.SeedInvestment(dto.InvestmentCreate{
		ID:           invID,
		UserID:       userID,
		ProductID:    productID,
		Name:         "Infrastructure Bond 2030",
		Type:         "infrastructure",
		Amount:       1_000_00,
		InterestRate: 12.5,
		Status:       "active",
		MaturityDate: &future,
	})

	_, err := h.svc.Mature(context.Background(), userID, invID)
	require.ErrorIs(t, err, common.ErrInvalidStatusTransition)
	assert.Equal(t, int64(0), h.store.WalletBalance(userID))
}

func TestBalanceConservationAcrossOperations(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.store.SeedWallet(userID, 0)
	productID := seedBondProduct(h, 10_000_00)

	// Deposit 1000, invest 600, sell, withdraw 300.
	dep, err := h.svc.Deposit(context.Background(), userID, "0712345678", kes(1000))
	require.NoError(t, err)
	require.NoError(t, h.svc.ConfirmDeposit(context.Background(), &payment.CallbackResult{
		CheckoutRequestID: dep.CheckoutRequestID,
		Success:           true,
		Receipt:           "SGR0000001",
	}))

	inv, err := h.svc.Invest(context.Background(), userID, productID, kes(600))
	require.NoError(t, err)
	_, err = h.svc.Sell(context.Background(), userID, inv.InvestmentID)
	require.NoError(t, err)
	_, err = h.svc.Withdraw(context.Background(), userID, "0712345678", kes(300))
	require.NoError(t, err)

	// Wallet balance equals the signed sum of completed ledger entries.
	assert.Equal(t, int64(700_00), h.store.WalletBalance(userID))
	assert.Equal(t, h.store.LedgerSum(userID), h.store.WalletBalance(userID))
}
