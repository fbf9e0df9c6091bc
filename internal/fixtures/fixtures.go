// Package fixtures provides an in-memory repository.UnitOfWork for service
// tests. The fake honors transaction semantics: Do snapshots the store and
// restores it when the callback returns an error, so a failing multi-row
// mutation leaves no partial writes behind.
package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
)

type walletRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type investmentRow struct {
	dto.InvestmentCreate
	CreatedAt time.Time
}

type transactionRow struct {
	dto.TransactionCreate
	MpesaReceipt string
	CreatedAt    time.Time
}

type productRow struct {
	dto.ProductCreate
	CreatedAt time.Time
}

type userRow struct {
	dto.UserCreate
	CreatedAt time.Time
}

// Store is the shared backing state for all fake repositories.
type Store struct {
	mu           sync.Mutex
	wallets      map[uuid.UUID]*walletRow // keyed by user ID
	investments  map[uuid.UUID]*investmentRow
	transactions map[uuid.UUID]*transactionRow
	products     map[uuid.UUID]*productRow
	users        map[uuid.UUID]*userRow
	seq          int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		wallets:      make(map[uuid.UUID]*walletRow),
		investments:  make(map[uuid.UUID]*investmentRow),
		transactions: make(map[uuid.UUID]*transactionRow),
		products:     make(map[uuid.UUID]*productRow),
		users:        make(map[uuid.UUID]*userRow),
	}
}

func (s *Store) snapshot() *Store {
	c := NewStore()
	for k, v := range s.wallets {
		w := *v
		c.wallets[k] = &w
	}
	for k, v := range s.investments {
		i := *v
		c.investments[k] = &i
	}
	for k, v := range s.transactions {
		t := *v
		c.transactions[k] = &t
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	c.seq = s.seq
	return c
}

func (s *Store) restore(snap *Store) {
	s.wallets = snap.wallets
	s.investments = snap.investments
	s.transactions = snap.transactions
	s.products = snap.products
	s.users = snap.users
	s.seq = snap.seq
}

// SeedWallet creates a wallet with the given balance in minor units.
func (s *Store) SeedWallet(userID uuid.UUID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.wallets[userID] = &walletRow{
		ID: uuid.New(), UserID: userID, Balance: balance,
		CreatedAt: now, UpdatedAt: now,
	}
}

// SeedProduct inserts a catalog product.
func (s *Store) SeedProduct(create dto.ProductCreate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[create.ID] = &productRow{ProductCreate: create, CreatedAt: time.Now()}
}

// SeedInvestment inserts a position row.
func (s *Store) SeedInvestment(create dto.InvestmentCreate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments[create.ID] = &investmentRow{InvestmentCreate: create, CreatedAt: time.Now()}
}

// SeedUser inserts a user row.
func (s *Store) SeedUser(create dto.UserCreate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[create.ID] = &userRow{UserCreate: create, CreatedAt: time.Now()}
}

// WalletBalance returns the raw minor-unit balance, or zero when absent.
func (s *Store) WalletBalance(userID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[userID]; ok {
		return w.Balance
	}
	return 0
}

// ProductAvailable returns the raw minor-unit inventory of a product.
func (s *Store) ProductAvailable(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.AvailableAmount
	}
	return 0
}

// InvestmentStatus returns the stored status of a position, empty if absent.
func (s *Store) InvestmentStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.investments[id]; ok {
		return i.Status
	}
	return ""
}

// LedgerSum returns the signed sum of all ledger amounts for a user,
// counting only completed entries.
func (s *Store) LedgerSum(userID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.transactions {
		if t.UserID == userID && t.Status == "completed" {
			sum += t.Amount
		}
	}
	return sum
}

// UnitOfWork is the fake repository.UnitOfWork. FailWith, when set, makes Do
// fail after running the callback, exercising rollback paths.
type UnitOfWork struct {
	store *Store

	// FailWith, when non-nil, is returned from Do after fn succeeds, and
	// the store is rolled back.
	FailWith error
}

// NewUoW creates a fake unit of work over the store.
func NewUoW(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Do implements repository.UnitOfWork with snapshot/restore semantics.
func (u *UnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	u.store.mu.Lock()
	snap := u.store.snapshot()
	u.store.mu.Unlock()
	err := fn(u)
	if err == nil && u.FailWith != nil {
		err = u.FailWith
	}
	if err != nil {
		u.store.mu.Lock()
		u.store.restore(snap)
		u.store.mu.Unlock()
	}
	return err
}

// WalletRepository implements repository.UnitOfWork.
func (u *UnitOfWork) WalletRepository() (repository.WalletRepository, error) {
	return &walletRepo{u.store}, nil
}

// InvestmentRepository implements repository.UnitOfWork.
func (u *UnitOfWork) InvestmentRepository() (repository.InvestmentRepository, error) {
	return &investmentRepo{u.store}, nil
}

// TransactionRepository implements repository.UnitOfWork.
func (u *UnitOfWork) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{u.store}, nil
}

// ProductRepository implements repository.UnitOfWork.
func (u *UnitOfWork) ProductRepository() (repository.ProductRepository, error) {
	return &productRepo{u.store}, nil
}

// UserRepository implements repository.UnitOfWork.
func (u *UnitOfWork) UserRepository() (repository.UserRepository, error) {
	return &userRepo{u.store}, nil
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

func major(minor int64) float64 {
	return money.NewFromData(minor, string(money.DefaultCurrency)).AmountFloat()
}

type walletRepo struct{ s *Store }

func (r *walletRepo) Get(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}
	return walletRead(w), nil
}

func (r *walletRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		now := time.Now()
		w = &walletRow{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.wallets[userID] = w
	}
	return walletRead(w), nil
}

func (r *walletRepo) Credit(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		now := time.Now()
		w = &walletRow{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.wallets[userID] = w
	}
	w.Balance += amount
	w.UpdatedAt = time.Now()
	return nil
}

func (r *walletRepo) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok || w.Balance < amount {
		return common.ErrInsufficientFunds
	}
	w.Balance -= amount
	w.UpdatedAt = time.Now()
	return nil
}

func walletRead(w *walletRow) *dto.WalletRead {
	return &dto.WalletRead{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   major(w.Balance),
		Currency:  string(money.DefaultCurrency),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type investmentRepo struct{ s *Store }

func (r *investmentRepo) Create(ctx context.Context, create dto.InvestmentCreate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.investments[create.ID] = &investmentRow{InvestmentCreate: create, CreatedAt: time.Now()}
	return nil
}

func (r *investmentRepo) Get(ctx context.Context, id, userID uuid.UUID) (*dto.InvestmentRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.investments[id]
	if !ok || row.UserID != userID {
		return nil, common.ErrInvestmentNotFound
	}
	return investmentRead(row), nil
}

func (r *investmentRepo) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]*dto.InvestmentRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.InvestmentRead
	for _, row := range r.s.investments {
		if row.UserID != userID {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		out = append(out, investmentRead(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *investmentRepo) MarkSold(ctx context.Context, id, userID uuid.UUID) error {
	return r.flip(id, userID, "active", "sold")
}

func (r *investmentRepo) MarkCompleted(ctx context.Context, id, userID uuid.UUID) error {
	return r.flip(id, userID, "active", "completed")
}

func (r *investmentRepo) flip(id, userID uuid.UUID, from, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.investments[id]
	if !ok || row.UserID != userID || row.Status != from {
		return common.ErrInvestmentNotFound
	}
	row.Status = to
	return nil
}

func (r *investmentRepo) ListMaturedActive(ctx context.Context, asOf time.Time) ([]*dto.InvestmentRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.InvestmentRead
	for _, row := range r.s.investments {
		if row.Status != "active" || row.MaturityDate == nil || row.MaturityDate.After(asOf) {
			continue
		}
		out = append(out, investmentRead(row))
	}
	return out, nil
}

func investmentRead(row *investmentRow) *dto.InvestmentRead {
	return &dto.InvestmentRead{
		ID:           row.ID,
		UserID:       row.UserID,
		ProductID:    row.ProductID,
		Name:         row.Name,
		Type:         row.Type,
		Amount:       major(row.Amount),
		Currency:     string(money.DefaultCurrency),
		InterestRate: row.InterestRate,
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
		MaturityDate: row.MaturityDate,
	}
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(ctx context.Context, create dto.TransactionCreate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	r.s.transactions[create.ID] = &transactionRow{
		TransactionCreate: create,
		CreatedAt:         time.Now().Add(time.Duration(r.s.seq) * time.Microsecond),
	}
	return nil
}

func (r *transactionRepo) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.transactions[id]
	if !ok {
		return nil, common.ErrTransactionNotFound
	}
	return transactionRead(row), nil
}

func (r *transactionRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*dto.TransactionRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.transactions {
		if row.CheckoutRequestID == checkoutRequestID && checkoutRequestID != "" {
			return transactionRead(row), nil
		}
	}
	return nil, common.ErrTransactionNotFound
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.TransactionRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.TransactionRead
	for _, row := range r.s.transactions {
		if row.UserID == userID {
			out = append(out, transactionRead(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionListFilter) ([]*dto.TransactionRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.TransactionRead
	for _, row := range r.s.transactions {
		if filter.UserID != nil && row.UserID != *filter.UserID {
			continue
		}
		if filter.Type != nil && row.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		out = append(out, transactionRead(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *transactionRepo) Update(ctx context.Context, id uuid.UUID, update dto.TransactionUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.transactions[id]
	if !ok {
		return common.ErrTransactionNotFound
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.Description != nil {
		row.Description = *update.Description
	}
	return nil
}

func (r *transactionRepo) ConfirmPending(ctx context.Context, id uuid.UUID, mpesaReceipt string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.transactions[id]
	if !ok || row.Status != "pending" {
		return common.ErrTransactionNotFound
	}
	row.Status = "completed"
	row.MpesaReceipt = mpesaReceipt
	return nil
}

func transactionRead(row *transactionRow) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:                row.ID,
		UserID:            row.UserID,
		Type:              row.Type,
		Amount:            major(row.Amount),
		Currency:          string(money.DefaultCurrency),
		Source:            row.Source,
		Description:       row.Description,
		Status:            row.Status,
		BlockchainTxHash:  row.BlockchainTxHash,
		CheckoutRequestID: row.CheckoutRequestID,
		MpesaReceipt:      row.MpesaReceipt,
		CreatedAt:         row.CreatedAt,
	}
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, create dto.ProductCreate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[create.ID] = &productRow{ProductCreate: create, CreatedAt: time.Now()}
	return nil
}

func (r *productRepo) Get(ctx context.Context, id uuid.UUID) (*dto.ProductRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok {
		return nil, common.ErrProductNotFound
	}
	return productRead(row), nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductListFilter) ([]*dto.ProductRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.ProductRead
	for _, row := range r.s.products {
		if filter.Type != nil && row.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		out = append(out, productRead(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, update dto.ProductUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok {
		return common.ErrProductNotFound
	}
	if update.Description != nil {
		row.Description = *update.Description
	}
	if update.InterestRate != nil {
		row.InterestRate = *update.InterestRate
	}
	if update.AvailableAmount != nil {
		row.AvailableAmount = *update.AvailableAmount
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.BlockchainAssetID != nil {
		row.BlockchainAssetID = *update.BlockchainAssetID
	}
	return nil
}

func (r *productRepo) ReserveAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok || row.AvailableAmount < amount {
		return common.ErrProductUnavailable
	}
	row.AvailableAmount -= amount
	return nil
}

func (r *productRepo) ReleaseAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok {
		return common.ErrProductNotFound
	}
	row.AvailableAmount += amount
	return nil
}

func productRead(row *productRow) *dto.ProductRead {
	return &dto.ProductRead{
		ID:                row.ID,
		Name:              row.Name,
		Type:              row.Type,
		Description:       row.Description,
		InterestRate:      row.InterestRate,
		TermDays:          row.TermDays,
		MinInvestment:     major(row.MinInvestment),
		AvailableAmount:   major(row.AvailableAmount),
		Currency:          string(money.DefaultCurrency),
		Status:            row.Status,
		BlockchainAssetID: row.BlockchainAssetID,
		CreatedAt:         row.CreatedAt,
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, create dto.UserCreate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[create.ID] = &userRow{UserCreate: create, CreatedAt: time.Now()}
	return nil
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return userRead(row), nil
}

func (r *userRepo) GetByIdentity(ctx context.Context, identity string) (*dto.UserRead, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.users {
		if row.Username == identity || row.Email == identity {
			return userRead(row), row.Password, nil
		}
	}
	return nil, "", common.ErrUserNotFound
}

func (r *userRepo) List(ctx context.Context, limit int) ([]*dto.UserRead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*dto.UserRead
	for _, row := range r.s.users {
		out = append(out, userRead(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok {
		return common.ErrUserNotFound
	}
	if update.PhoneNumber != nil {
		row.PhoneNumber = *update.PhoneNumber
	}
	if update.Role != nil {
		row.Role = *update.Role
	}
	return nil
}

func userRead(row *userRow) *dto.UserRead {
	return &dto.UserRead{
		ID:          row.ID,
		Username:    row.Username,
		Email:       row.Email,
		PhoneNumber: row.PhoneNumber,
		Role:        row.Role,
		CreatedAt:   row.CreatedAt,
	}
}
