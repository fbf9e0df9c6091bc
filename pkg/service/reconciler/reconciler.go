// Package reconciler implements the balance/position reconciler: the
// operations that move value between a user's wallet, their positions, and
// the ledger. Every operation applies its multi-row mutation inside one unit
// of work, so wallets, positions, and ledger entries never drift apart.
//
// Purchases and disposals optionally mirror settlement to the external
// ledger through the settlement gateway. Gateway failures are never fatal:
// the operation falls back to persistence-only settlement and records the
// fallback on the ledger entry.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/domain/events"
	"github.com/shillingix/backend/pkg/domain/investment"
	"github.com/shillingix/backend/pkg/domain/ledger"
	"github.com/shillingix/backend/pkg/domain/product"
	"github.com/shillingix/backend/pkg/domain/wallet"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/eventbus"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/provider/payment"
	"github.com/shillingix/backend/pkg/provider/settlement"
	"github.com/shillingix/backend/pkg/repository"
	"github.com/shillingix/backend/pkg/utils"
)

// Receipt summarizes the outcome of a reconciler operation.
type Receipt struct {
	TransactionID uuid.UUID
	InvestmentID  uuid.UUID // zero for deposits and withdrawals
	Amount        money.Money
	Status        ledger.Status
	Settlement    ledger.Settlement
	// CheckoutRequestID is set on pending deposits awaiting mobile-money
	// confirmation.
	CheckoutRequestID string
}

// Service coordinates wallet, position, and ledger mutations.
type Service struct {
	uow     repository.UnitOfWork
	payment payment.Payment
	gateway settlement.Gateway
	bus     eventbus.Bus
	logger  *slog.Logger
}

// NewService creates a new Service with the provided dependencies. The
// settlement gateway may be nil, which disables on-ledger mirroring.
func NewService(deps config.Deps) *Service {
	return &Service{
		uow:     deps.Uow,
		payment: deps.PaymentProvider,
		gateway: deps.SettlementGateway,
		bus:     deps.EventBus,
		logger:  deps.Logger,
	}
}

// Invest purchases a position in a product. The wallet debit, inventory
// reservation, position row, and ledger entry commit atomically; settlement
// is mirrored to the external ledger when the gateway is reachable.
func (s *Service) Invest(
	ctx context.Context,
	userID, productID uuid.UUID,
	amount money.Money,
) (*Receipt, error) {
	logger := s.logger.With("op", "Invest", "userID", userID, "productID", productID)
	if !amount.IsPositive() {
		return nil, common.ErrAmountMustBePositive
	}

	prodRepo, err := s.uow.ProductRepository()
	if err != nil {
		return nil, err
	}
	prodRead, err := prodRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	prod, err := hydrateProduct(prodRead)
	if err != nil {
		return nil, err
	}
	if err = prod.AcceptsInvestment(amount); err != nil {
		return nil, err
	}
	if ok, err := prod.AvailableAmount.GreaterThanOrEqual(amount); err != nil {
		return nil, err
	} else if !ok {
		return nil, common.ErrProductUnavailable
	}

	walletRepo, err := s.uow.WalletRepository()
	if err != nil {
		return nil, err
	}
	wRead, err := walletRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	w, err := hydrateWallet(wRead)
	if err != nil {
		return nil, err
	}
	if ok, err := w.CanDebit(amount); err != nil {
		return nil, err
	} else if !ok {
		return nil, common.ErrInsufficientFunds
	}

	// Mirror to the external ledger only after the purchase passed the
	// funds and inventory checks. The conditional updates inside the unit
	// of work stay authoritative; if a concurrent mutation still fails the
	// commit, the local DB is canonical and the stray on-chain trade is an
	// accepted observability concern.
	stl := s.settleTrade(ctx, logger, settleBuy, &settlement.TradeParams{
		UserRef: userID.String(),
		AssetID: prod.BlockchainAssetID,
		Amount:  amount.Amount(),
	})

	now := time.Now()
	inv, err := investment.New().
		WithUserID(userID).
		WithName(prod.Name).
		WithType(prod.Type).
		WithAmount(amount.Amount()).
		WithInterestRate(prod.InterestRate).
		WithMaturityDate(prod.MaturityDateFrom(now)).
		Build()
	if err != nil {
		return nil, err
	}
	txID := uuid.New()

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		walletRepo, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		if err = walletRepo.DebitIfSufficient(ctx, userID, amount.Amount()); err != nil {
			return err
		}
		products, err := uow.ProductRepository()
		if err != nil {
			return err
		}
		if err = products.ReserveAmount(ctx, productID, amount.Amount()); err != nil {
			return err
		}
		investments, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		if err = investments.Create(ctx, dto.InvestmentCreate{
			ID:           inv.ID,
			UserID:       inv.UserID,
			ProductID:    productID,
			Name:         inv.Name,
			Type:         string(inv.Type),
			Amount:       inv.Amount.Amount(),
			InterestRate: inv.InterestRate,
			Status:       string(inv.Status),
			MaturityDate: inv.MaturityDate,
		}); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, dto.TransactionCreate{
			ID:               txID,
			UserID:           userID,
			Type:             string(ledger.TypeInvestment),
			Amount:           -amount.Amount(),
			Source:           prod.Name,
			Description:      fmt.Sprintf("Investment in %s", prod.Name),
			Status:           string(ledger.StatusCompleted),
			BlockchainTxHash: stl.TxHash(),
		})
	})
	if err != nil {
		logger.Error("Invest failed", "error", err)
		return nil, err
	}

	s.emit(ctx, logger, events.InvestmentSettled{
		UserID:       userID,
		InvestmentID: inv.ID,
		ProductID:    productID,
		Amount:       amount,
		OnChain:      stl.OnChain(),
		TxHash:       stl.TxHash(),
	})
	logger.Info("Invest completed", "investmentID", inv.ID, "onChain", stl.OnChain())
	return &Receipt{
		TransactionID: txID,
		InvestmentID:  inv.ID,
		Amount:        amount,
		Status:        ledger.StatusCompleted,
		Settlement:    stl,
	}, nil
}

// Sell disposes of an active position: the position flips to sold, the
// principal returns to the wallet, inventory goes back on the book, and a
// sale entry is appended to the ledger. Selling the same position twice
// returns common.ErrInvestmentNotFound from the status guard, so the
// principal is credited at most once.
func (s *Service) Sell(ctx context.Context, userID, investmentID uuid.UUID) (*Receipt, error) {
	logger := s.logger.With("op", "Sell", "userID", userID, "investmentID", investmentID)

	invRepo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	invRead, err := invRepo.Get(ctx, investmentID, userID)
	if err != nil {
		return nil, err
	}
	if invRead.Status != string(investment.StatusActive) {
		return nil, common.ErrInvestmentNotFound
	}
	principal, err := money.New(invRead.Amount, money.Code(invRead.Currency))
	if err != nil {
		return nil, err
	}

	assetID := ""
	if prodRepo, repoErr := s.uow.ProductRepository(); repoErr == nil {
		if prodRead, getErr := prodRepo.Get(ctx, invRead.ProductID); getErr == nil {
			assetID = prodRead.BlockchainAssetID
		}
	}
	stl := s.settleTrade(ctx, logger, settleSell, &settlement.TradeParams{
		UserRef: userID.String(),
		AssetID: assetID,
		Amount:  principal.Amount(),
	})

	txID := uuid.New()
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		investments, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		// The conditional flip is the idempotency guard.
		if err = investments.MarkSold(ctx, investmentID, userID); err != nil {
			return err
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		if err = wallets.Credit(ctx, userID, principal.Amount()); err != nil {
			return err
		}
		products, err := uow.ProductRepository()
		if err != nil {
			return err
		}
		if err = products.ReleaseAmount(ctx, invRead.ProductID, principal.Amount()); err != nil {
			// A retired product no longer takes inventory back.
			if !errors.Is(err, common.ErrProductNotFound) {
				return err
			}
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, dto.TransactionCreate{
			ID:               txID,
			UserID:           userID,
			Type:             string(ledger.TypeSale),
			Amount:           principal.Amount(),
			Source:           invRead.Name,
			Description:      fmt.Sprintf("Sale of %s", invRead.Name),
			Status:           string(ledger.StatusCompleted),
			BlockchainTxHash: stl.TxHash(),
		})
	})
	if err != nil {
		logger.Error("Sell failed", "error", err)
		return nil, err
	}

	s.emit(ctx, logger, events.InvestmentSold{
		UserID:       userID,
		InvestmentID: investmentID,
		Amount:       principal,
		OnChain:      stl.OnChain(),
		TxHash:       stl.TxHash(),
	})
	logger.Info("Sell completed", "onChain", stl.OnChain())
	return &Receipt{
		TransactionID: txID,
		InvestmentID:  investmentID,
		Amount:        principal,
		Status:        ledger.StatusCompleted,
		Settlement:    stl,
	}, nil
}

// Deposit initiates a mobile-money deposit. An STK push goes to the user's
// phone and a pending ledger entry records the expected inflow; the wallet
// is credited only when ConfirmDeposit processes the provider callback.
func (s *Service) Deposit(
	ctx context.Context,
	userID uuid.UUID,
	phoneNumber string,
	amount money.Money,
) (*Receipt, error) {
	logger := s.logger.With("op", "Deposit", "userID", userID)
	if !amount.IsPositive() {
		return nil, common.ErrAmountMustBePositive
	}
	msisdn, ok := utils.NormalizePhoneNumber(phoneNumber)
	if !ok {
		return nil, fmt.Errorf("%w: invalid phone number", common.ErrValidation)
	}

	resp, err := s.payment.InitiateSTKPush(ctx, &payment.STKPushParams{
		PhoneNumber:      msisdn,
		Amount:           amount.AmountFloat(),
		AccountReference: userID.String(),
		Description:      "Wallet deposit",
	})
	if err != nil {
		logger.Error("Deposit failed: STK push error", "error", err)
		return nil, err
	}
	if !resp.Accepted() {
		logger.Warn("Deposit rejected by payment gateway",
			"responseCode", resp.ResponseCode, "description", resp.ResponseDescription)
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, resp.ResponseDescription)
	}

	txID := uuid.New()
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, dto.TransactionCreate{
			ID:                txID,
			UserID:            userID,
			Type:              string(ledger.TypeDeposit),
			Amount:            amount.Amount(),
			Source:            "M-Pesa",
			Description:       "M-Pesa deposit",
			Status:            string(ledger.StatusPending),
			CheckoutRequestID: resp.CheckoutRequestID,
		})
	})
	if err != nil {
		logger.Error("Deposit failed: ledger write error", "error", err)
		return nil, err
	}

	s.emit(ctx, logger, events.DepositPending{
		UserID:            userID,
		TransactionID:     txID,
		Amount:            amount,
		PhoneNumber:       msisdn,
		CheckoutRequestID: resp.CheckoutRequestID,
	})
	logger.Info("Deposit pending", "checkoutRequestID", resp.CheckoutRequestID)
	return &Receipt{
		TransactionID:     txID,
		Amount:            amount,
		Status:            ledger.StatusPending,
		Settlement:        ledger.LocalOnly(),
		CheckoutRequestID: resp.CheckoutRequestID,
	}, nil
}

// ConfirmDeposit settles a pending deposit from the mobile-money callback.
// On success the pending entry flips to completed and the wallet is
// credited, atomically; the conditional flip makes callback replays no-ops.
// A failed callback marks the entry failed without touching the wallet.
func (s *Service) ConfirmDeposit(ctx context.Context, result *payment.CallbackResult) error {
	logger := s.logger.With("op", "ConfirmDeposit", "checkoutRequestID", result.CheckoutRequestID)

	txRepo, err := s.uow.TransactionRepository()
	if err != nil {
		return err
	}
	txRead, err := txRepo.GetByCheckoutRequestID(ctx, result.CheckoutRequestID)
	if err != nil {
		logger.Warn("ConfirmDeposit: no matching deposit", "error", err)
		return err
	}
	amount, err := money.New(txRead.Amount, money.Code(txRead.Currency))
	if err != nil {
		return err
	}

	if !result.Success {
		failed := string(ledger.StatusFailed)
		desc := fmt.Sprintf("M-Pesa deposit failed: %s", result.ResultDescription)
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			transactions, err := uow.TransactionRepository()
			if err != nil {
				return err
			}
			return transactions.Update(ctx, txRead.ID, dto.TransactionUpdate{
				Status:      &failed,
				Description: &desc,
			})
		})
		if err != nil {
			return err
		}
		s.emit(ctx, logger, events.DepositFailed{
			UserID:        txRead.UserID,
			TransactionID: txRead.ID,
			Amount:        amount,
			Reason:        result.ResultDescription,
		})
		logger.Info("ConfirmDeposit: deposit failed", "resultCode", result.ResultCode)
		return nil
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err = transactions.ConfirmPending(ctx, txRead.ID, result.Receipt); err != nil {
			return err
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		return wallets.Credit(ctx, txRead.UserID, amount.Amount())
	})
	if errors.Is(err, common.ErrTransactionNotFound) {
		// The pending row was already flipped: a replayed callback.
		logger.Info("ConfirmDeposit: callback replay ignored")
		return nil
	}
	if err != nil {
		logger.Error("ConfirmDeposit failed", "error", err)
		return err
	}

	s.emit(ctx, logger, events.DepositConfirmed{
		UserID:        txRead.UserID,
		TransactionID: txRead.ID,
		Amount:        amount,
		MpesaReceipt:  result.Receipt,
	})
	logger.Info("ConfirmDeposit: wallet credited", "receipt", result.Receipt)
	return nil
}

// Withdraw moves funds from the wallet to the user's phone. The debit and
// the ledger entry commit first; a payout initiation failure then reverses
// both with a compensating credit, so funds are never lost in flight.
func (s *Service) Withdraw(
	ctx context.Context,
	userID uuid.UUID,
	phoneNumber string,
	amount money.Money,
) (*Receipt, error) {
	logger := s.logger.With("op", "Withdraw", "userID", userID)
	if !amount.IsPositive() {
		return nil, common.ErrAmountMustBePositive
	}
	msisdn, ok := utils.NormalizePhoneNumber(phoneNumber)
	if !ok {
		return nil, fmt.Errorf("%w: invalid phone number", common.ErrValidation)
	}

	txID := uuid.New()
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		if err = wallets.DebitIfSufficient(ctx, userID, amount.Amount()); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, dto.TransactionCreate{
			ID:          txID,
			UserID:      userID,
			Type:        string(ledger.TypeWithdrawal),
			Amount:      -amount.Amount(),
			Source:      "M-Pesa",
			Description: fmt.Sprintf("Withdrawal to %s", msisdn),
			Status:      string(ledger.StatusCompleted),
		})
	})
	if err != nil {
		logger.Error("Withdraw failed", "error", err)
		return nil, err
	}

	if _, payErr := s.payment.InitiatePayout(ctx, &payment.PayoutParams{
		PhoneNumber: msisdn,
		Amount:      amount.AmountFloat(),
		Description: "Wallet withdrawal",
	}); payErr != nil {
		logger.Error("Withdraw: payout initiation failed, reversing debit", "error", payErr)
		failed := string(ledger.StatusFailed)
		desc := "Withdrawal reversed: payout initiation failed"
		revErr := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			wallets, err := uow.WalletRepository()
			if err != nil {
				return err
			}
			if err = wallets.Credit(ctx, userID, amount.Amount()); err != nil {
				return err
			}
			transactions, err := uow.TransactionRepository()
			if err != nil {
				return err
			}
			return transactions.Update(ctx, txID, dto.TransactionUpdate{
				Status:      &failed,
				Description: &desc,
			})
		})
		if revErr != nil {
			logger.Error("Withdraw: compensating credit failed", "error", revErr)
			return nil, revErr
		}
		return nil, payErr
	}

	s.emit(ctx, logger, events.WithdrawalCompleted{
		UserID:        userID,
		TransactionID: txID,
		Amount:        amount,
		PhoneNumber:   msisdn,
	})
	logger.Info("Withdraw completed")
	return &Receipt{
		TransactionID: txID,
		Amount:        amount,
		Status:        ledger.StatusCompleted,
		Settlement:    ledger.LocalOnly(),
	}, nil
}

// Mature completes an active position that reached its maturity date:
// principal plus accrued simple interest return to the wallet and two
// ledger entries record the redemption and the interest separately.
func (s *Service) Mature(ctx context.Context, userID, investmentID uuid.UUID) (*Receipt, error) {
	logger := s.logger.With("op", "Mature", "userID", userID, "investmentID", investmentID)

	invRepo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	invRead, err := invRepo.Get(ctx, investmentID, userID)
	if err != nil {
		return nil, err
	}
	inv, err := hydrateInvestment(invRead)
	if err != nil {
		return nil, err
	}
	if !inv.IsMatured(time.Now()) {
		return nil, common.ErrInvalidStatusTransition
	}

	termDays := 0
	if prodRepo, repoErr := s.uow.ProductRepository(); repoErr == nil {
		if prodRead, getErr := prodRepo.Get(ctx, invRead.ProductID); getErr == nil {
			termDays = prodRead.TermDays
		}
	}
	interest := inv.AccruedInterest(termDays)
	total, err := inv.Amount.Add(interest)
	if err != nil {
		return nil, err
	}

	txID := uuid.New()
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		investments, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		if err = investments.MarkCompleted(ctx, investmentID, userID); err != nil {
			return err
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		if err = wallets.Credit(ctx, userID, total.Amount()); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err = transactions.Create(ctx, dto.TransactionCreate{
			ID:          txID,
			UserID:      userID,
			Type:        string(ledger.TypeSale),
			Amount:      inv.Amount.Amount(),
			Source:      inv.Name,
			Description: fmt.Sprintf("Maturity redemption of %s", inv.Name),
			Status:      string(ledger.StatusCompleted),
		}); err != nil {
			return err
		}
		if interest.IsPositive() {
			return transactions.Create(ctx, dto.TransactionCreate{
				ID:          uuid.New(),
				UserID:      userID,
				Type:        string(ledger.TypeInterest),
				Amount:      interest.Amount(),
				Source:      inv.Name,
				Description: fmt.Sprintf("Interest on %s", inv.Name),
				Status:      string(ledger.StatusCompleted),
			})
		}
		return nil
	})
	if err != nil {
		logger.Error("Mature failed", "error", err)
		return nil, err
	}

	s.emit(ctx, logger, events.InvestmentMatured{
		UserID:       userID,
		InvestmentID: investmentID,
		Principal:    inv.Amount,
		Interest:     interest,
	})
	logger.Info("Mature completed", "interest", interest.Amount())
	return &Receipt{
		TransactionID: txID,
		InvestmentID:  investmentID,
		Amount:        total,
		Status:        ledger.StatusCompleted,
		Settlement:    ledger.LocalOnly(),
	}, nil
}

type settleKind int

const (
	settleBuy settleKind = iota
	settleSell
)

// settleTrade attempts to mirror a trade on the external ledger. Any failure
// is logged and reported as local-only settlement.
func (s *Service) settleTrade(
	ctx context.Context,
	logger *slog.Logger,
	kind settleKind,
	params *settlement.TradeParams,
) ledger.Settlement {
	if s.gateway == nil || params.AssetID == "" {
		return ledger.LocalOnly()
	}
	if !s.gateway.IsConnected(ctx) {
		logger.Warn("settlement gateway unreachable, settling locally")
		return ledger.LocalOnly()
	}
	var (
		res *settlement.TradeResult
		err error
	)
	if kind == settleBuy {
		res, err = s.gateway.BuyAssetFor(ctx, params)
	} else {
		res, err = s.gateway.SellAssetFor(ctx, params)
	}
	if err != nil {
		logger.Warn("settlement gateway trade failed, settling locally", "error", err)
		return ledger.LocalOnly()
	}
	return ledger.Settled(res.BlockchainTxHash)
}

func (s *Service) emit(ctx context.Context, logger *slog.Logger, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		logger.Warn("event emit failed", "event", event.Type(), "error", err)
	}
}

func hydrateWallet(read *dto.WalletRead) (*wallet.Wallet, error) {
	balance, err := money.New(read.Balance, money.Code(read.Currency))
	if err != nil {
		return nil, err
	}
	return wallet.New().
		WithID(read.ID).
		WithUserID(read.UserID).
		WithBalance(balance.Amount()).
		WithCreatedAt(read.CreatedAt).
		WithUpdatedAt(read.UpdatedAt).
		Build()
}

func hydrateProduct(read *dto.ProductRead) (*product.Product, error) {
	minInv, err := money.New(read.MinInvestment, money.Code(read.Currency))
	if err != nil {
		return nil, err
	}
	available, err := money.New(read.AvailableAmount, money.Code(read.Currency))
	if err != nil {
		return nil, err
	}
	return product.New().
		WithID(read.ID).
		WithName(read.Name).
		WithType(investment.Type(read.Type)).
		WithDescription(read.Description).
		WithInterestRate(read.InterestRate).
		WithTermDays(read.TermDays).
		WithMinInvestment(minInv.Amount()).
		WithAvailableAmount(available.Amount()).
		WithStatus(product.Status(read.Status)).
		WithBlockchainAssetID(read.BlockchainAssetID).
		WithCreatedAt(read.CreatedAt).
		Build()
}

func hydrateInvestment(read *dto.InvestmentRead) (*investment.Investment, error) {
	amount, err := money.New(read.Amount, money.Code(read.Currency))
	if err != nil {
		return nil, err
	}
	return investment.New().
		WithID(read.ID).
		WithUserID(read.UserID).
		WithName(read.Name).
		WithType(investment.Type(read.Type)).
		WithAmount(amount.Amount()).
		WithInterestRate(read.InterestRate).
		WithStatus(investment.Status(read.Status)).
		WithCreatedAt(read.CreatedAt).
		WithMaturityDate(read.MaturityDate).
		Build()
}
