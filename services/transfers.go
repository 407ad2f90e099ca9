package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/store"
)

// TransferService is the transfer engine: it validates a transfer
// request against the current ledger and applies it as one atomic step.
// There is no settlement state machine here; a transfer either commits
// fully or leaves no trace.
type TransferService struct {
	store store.Store
}

func NewTransferService(s store.Store) *TransferService {
	return &TransferService{store: s}
}

// Transfer validates and executes a money movement between two bank
// links. Validation runs in a fixed order so each failure mode is
// distinct: bank resolution, account resolution, amount, then funds.
// On success both accounts' available and current balances have moved
// by exactly the amount and one transfer record exists; on any failure
// nothing is mutated.
func (s *TransferService) Transfer(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	senderBank, err := s.store.GetBankByID(ctx, req.SenderBankID)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("sender: %w", err)
	}
	receiverBank, err := s.store.GetBankByID(ctx, req.ReceiverBankID)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("receiver: %w", err)
	}

	if _, err := s.store.GetAccountByID(ctx, senderBank.AccountID); err != nil {
		return models.Transfer{}, fmt.Errorf("sender: %w", err)
	}
	if _, err := s.store.GetAccountByID(ctx, receiverBank.AccountID); err != nil {
		return models.Transfer{}, fmt.Errorf("receiver: %w", err)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return models.Transfer{}, err
	}

	transfer := models.Transfer{
		Name:           req.Name,
		Amount:         amount,
		SenderID:       senderBank.UserID,
		SenderBankID:   senderBank.ID,
		ReceiverID:     receiverBank.UserID,
		ReceiverBankID: receiverBank.ID,
		Email:          req.Email,
		Channel:        "online",
		Category:       "Transfer",
	}

	// The store applies funds check, double mutation, and record append
	// under one lock; insufficient funds surfaces from there with the
	// ledger untouched.
	created, err := s.store.ApplyTransfer(ctx, transfer, senderBank.AccountID, receiverBank.AccountID)
	if err != nil {
		return models.Transfer{}, err
	}
	return created, nil
}

// ListByBank returns the transfers a bank link participated in, newest
// first, as either sender or receiver.
func (s *TransferService) ListByBank(ctx context.Context, bankID string) ([]models.Transfer, error) {
	if _, err := s.store.GetBankByID(ctx, bankID); err != nil {
		return nil, err
	}
	return s.store.GetTransfersByBankID(ctx, bankID)
}

// parseAmount accepts a positive decimal string. Zero, negatives, and
// unparseable input all reject with ErrInvalidAmount.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", store.ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrInvalidAmount, amount)
	}
	return amount, nil
}
