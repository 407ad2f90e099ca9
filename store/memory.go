package store

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"horizon-api/models"
)

// MemoryStore is the in-memory reference backend. A single RWMutex
// serializes every mutation, so cross-account operations (transfers)
// complete inside one critical section and readers always observe a
// consistent snapshot.
//
// Collections keep insertion order in id slices beside the lookup maps;
// listings return records in stored order, transfers newest first.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[string]models.User
	userOrder    []string
	sessions     map[string]models.Session // keyed by refresh token
	banks        map[string]models.Bank
	bankOrder    []string
	accounts     map[string]models.Account
	transactions map[string][]models.Transaction // accountID -> feed, date desc
	transfers    []models.Transfer               // newest first
	institutions map[string]models.Institution
	instOrder    []string

	now Clock
}

// NewMemoryStore returns an empty store. Most callers want NewSeededStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]models.User),
		sessions:     make(map[string]models.Session),
		banks:        make(map[string]models.Bank),
		accounts:     make(map[string]models.Account),
		transactions: make(map[string][]models.Transaction),
		institutions: make(map[string]models.Institution),
		now:          SystemClock,
	}
}

// SetClock replaces the store's time source. Test use only.
func (m *MemoryStore) SetClock(c Clock) { m.now = c }

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

func (m *MemoryStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = NewID("user")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return u, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u := m.users[id]; strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *MemoryStore) UpdateUserTOTP(_ context.Context, id, secret string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.TOTPSecret = secret
	u.TOTPEnabled = enabled
	m.users[id] = u
	return nil
}

// ----------------------------------------------------------------------------
// Sessions
// ----------------------------------------------------------------------------

func (m *MemoryStore) CreateSession(_ context.Context, s models.Session) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = NewID("session")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	m.sessions[s.RefreshToken] = s
	return s, nil
}

func (m *MemoryStore) GetSessionByToken(_ context.Context, refreshToken string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[refreshToken]
	if !ok || s.ExpiresAt.Before(m.now()) {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, refreshToken)
	return nil
}

// ----------------------------------------------------------------------------
// Banks
// ----------------------------------------------------------------------------

func (m *MemoryStore) CreateBank(_ context.Context, b models.Bank) (models.Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = NewID("bank")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.now()
	}
	m.banks[b.ID] = b
	m.bankOrder = append(m.bankOrder, b.ID)
	return b, nil
}

func (m *MemoryStore) GetBankByID(_ context.Context, id string) (models.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.banks[id]
	if !ok {
		return models.Bank{}, ErrBankNotFound
	}
	return b, nil
}

func (m *MemoryStore) GetBanksByUserID(_ context.Context, userID string) ([]models.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var banks []models.Bank
	for _, id := range m.bankOrder {
		if b := m.banks[id]; b.UserID == userID {
			banks = append(banks, b)
		}
	}
	return banks, nil
}

func (m *MemoryStore) GetBankByAccountID(_ context.Context, accountID string) (models.Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.bankOrder {
		if b := m.banks[id]; b.AccountID == accountID {
			return b, nil
		}
	}
	return models.Bank{}, ErrBankNotFound
}

// ----------------------------------------------------------------------------
// Accounts
// ----------------------------------------------------------------------------

func (m *MemoryStore) CreateAccount(_ context.Context, a models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = NewID("account")
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *MemoryStore) GetAccountByID(_ context.Context, id string) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *MemoryStore) UpdateAccountBalances(_ context.Context, accountID string, delta decimal.Decimal) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustBalances(accountID, delta)
}

// adjustBalances mutates both balance fields; callers hold the write lock.
func (m *MemoryStore) adjustBalances(accountID string, delta decimal.Decimal) (models.Account, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	a.AvailableBalance = a.AvailableBalance.Add(delta)
	a.CurrentBalance = a.CurrentBalance.Add(delta)
	m.accounts[accountID] = a
	return a, nil
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

func (m *MemoryStore) GetTransactionsByAccountID(_ context.Context, accountID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	feed := m.transactions[accountID]
	out := make([]models.Transaction, len(feed))
	copy(out, feed)
	return out, nil
}

// SeedTransactions installs the fixed external feed for an account.
// Seeding only; the feed is immutable afterwards.
func (m *MemoryStore) SeedTransactions(accountID string, feed []models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[accountID] = feed
}

// ----------------------------------------------------------------------------
// Transfers
// ----------------------------------------------------------------------------

func (m *MemoryStore) GetTransfersByBankID(_ context.Context, bankID string) ([]models.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Transfer
	for _, t := range m.transfers {
		if t.SenderBankID == bankID || t.ReceiverBankID == bankID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemoryStore) ApplyTransfer(_ context.Context, t models.Transfer, senderAccountID, receiverAccountID string) (models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, ok := m.accounts[senderAccountID]
	if !ok {
		return models.Transfer{}, ErrAccountNotFound
	}
	if _, ok := m.accounts[receiverAccountID]; !ok {
		return models.Transfer{}, ErrAccountNotFound
	}
	if sender.AvailableBalance.LessThan(t.Amount) {
		return models.Transfer{}, ErrInsufficientFunds
	}

	if _, err := m.adjustBalances(senderAccountID, t.Amount.Neg()); err != nil {
		return models.Transfer{}, err
	}
	if _, err := m.adjustBalances(receiverAccountID, t.Amount); err != nil {
		return models.Transfer{}, err
	}

	if t.ID == "" {
		t.ID = NewID("transfer")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	// Newest first, matching insertion order of the reference feed.
	m.transfers = append([]models.Transfer{t}, m.transfers...)
	return t, nil
}

// SeedTransfer installs a historical transfer without touching balances.
func (m *MemoryStore) SeedTransfer(t models.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append([]models.Transfer{t}, m.transfers...)
}

// ----------------------------------------------------------------------------
// Institutions
// ----------------------------------------------------------------------------

func (m *MemoryStore) GetInstitutionByID(_ context.Context, id string) (models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.institutions[id]
	if !ok {
		return models.Institution{}, ErrInstitutionNotFound
	}
	return inst, nil
}

func (m *MemoryStore) ListInstitutions(_ context.Context) ([]models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Institution, 0, len(m.instOrder))
	for _, id := range m.instOrder {
		out = append(out, m.institutions[id])
	}
	return out, nil
}

// SeedInstitution installs a directory record. Seeding only.
func (m *MemoryStore) SeedInstitution(inst models.Institution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.institutions[inst.ID] = inst
	m.instOrder = append(m.instOrder, inst.ID)
}

var _ Store = (*MemoryStore)(nil)
