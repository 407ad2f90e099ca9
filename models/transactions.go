package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry direction in a transaction history.
const (
	EntryDebit  = "debit"
	EntryCredit = "credit"
)

// Transaction is an externally-sourced activity record tied to one
// account. The feed is read-only in this core: records are seeded as
// fixed history and never mutated.
//
// Amount is signed: negative means money leaving the account (a debit),
// positive means money arriving (a refund or deposit).
type Transaction struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	Category       string          `json:"category"`
	PaymentChannel string          `json:"payment_channel"` // "online", "in store", "other"
	Pending        bool            `json:"pending"`
}

// Transfer is an internally recorded money movement between two bank
// links. Created exclusively by the transfer engine, immutable after.
// Amount is unsigned; direction is derived from which side of the
// transfer a given bank is on.
type Transfer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	SenderID       string          `json:"sender_id"`
	SenderBankID   string          `json:"sender_bank_id"`
	ReceiverID     string          `json:"receiver_id"`
	ReceiverBankID string          `json:"receiver_bank_id"`
	Email          string          `json:"email"`
	Channel        string          `json:"channel"`  // always "online"
	Category       string          `json:"category"` // always "Transfer"
	CreatedAt      time.Time       `json:"created_at"`
}

// HistoryEntry is the normalized shape shared by external transactions
// and transfers in an account's merged history. Amount keeps the signed
// convention of Transaction; Type carries the derived direction.
type HistoryEntry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
	Date     time.Time       `json:"date"`
	Category string          `json:"category"`
	Channel  string          `json:"channel"`
	Pending  bool            `json:"pending"`
}

// AccountDetail is a single account view plus its full merged history.
type AccountDetail struct {
	Account      AccountView    `json:"account"`
	Transactions []HistoryEntry `json:"transactions"`
}

// TransferRequest asks the transfer engine to move money between two
// bank links. Amount is a positive decimal string.
type TransferRequest struct {
	SenderBankID   string `json:"sender_bank_id" binding:"required"`
	ReceiverBankID string `json:"receiver_bank_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
}
