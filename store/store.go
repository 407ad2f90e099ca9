// Package store holds the entity collections behind the ledger: users,
// bank links, accounts, transactions, transfers, institutions, and
// refresh-token sessions.
//
// Two backends implement Store: an in-memory one seeded with fixture
// data (the reference behavior) and an optional Postgres one selected
// when DATABASE_URL is set. Both guarantee that ApplyTransfer is
// all-or-nothing: no reader observes a half-applied transfer.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"horizon-api/models"
)

// Domain errors. Bulk aggregation tolerates ErrInconsistentBank by
// skipping the record; single-record lookups and the transfer engine
// surface these to the caller.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBankNotFound        = errors.New("bank not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInconsistentBank    = errors.New("bank references a missing account or institution")
)

// Store is the entity store contract. Implementations provide lookup
// and mutation primitives only; business rules live in the services.
// Context is honored by the Postgres backend and ignored in memory.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUserTOTP(ctx context.Context, id, secret string, enabled bool) error

	// Sessions
	CreateSession(ctx context.Context, s models.Session) (models.Session, error)
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error

	// Banks
	CreateBank(ctx context.Context, b models.Bank) (models.Bank, error)
	GetBankByID(ctx context.Context, id string) (models.Bank, error)
	GetBanksByUserID(ctx context.Context, userID string) ([]models.Bank, error)
	GetBankByAccountID(ctx context.Context, accountID string) (models.Bank, error)

	// Accounts
	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)
	GetAccountByID(ctx context.Context, id string) (models.Account, error)
	// UpdateAccountBalances adds delta to both the available and the
	// current balance of the identified account.
	UpdateAccountBalances(ctx context.Context, accountID string, delta decimal.Decimal) (models.Account, error)

	// Transactions (fixed external feed, read-only)
	GetTransactionsByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error)

	// Transfers
	GetTransfersByBankID(ctx context.Context, bankID string) ([]models.Transfer, error)
	// ApplyTransfer atomically checks the sender's available balance,
	// debits the sender account, credits the receiver account, and
	// appends the transfer record. On ErrInsufficientFunds nothing is
	// mutated. Newest transfers are returned first by GetTransfersByBankID.
	ApplyTransfer(ctx context.Context, t models.Transfer, senderAccountID, receiverAccountID string) (models.Transfer, error)

	// Institutions (static directory)
	GetInstitutionByID(ctx context.Context, id string) (models.Institution, error)
	ListInstitutions(ctx context.Context) ([]models.Institution, error)
}

// NewID returns a fresh opaque identifier with a collection prefix,
// e.g. "bank-2f1c...". Prefixes keep ids readable in logs and fixtures.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Clock abstracts time.Now so tests can pin transfer timestamps.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time { return time.Now().UTC() }
