package services

import (
	"context"
	"fmt"
	"sort"

	"horizon-api/models"
	"horizon-api/store"
)

// PageSize is the history page size the UI layer slices with: 10 rows
// per page, pages 1-indexed.
const PageSize = 10

// HistoryService assembles one account's merged transaction history
// from its two sources: the fixed external feed keyed by account id and
// the transfer ledger keyed by bank id.
type HistoryService struct {
	store store.Store
}

func NewHistoryService(s store.Store) *HistoryService {
	return &HistoryService{store: s}
}

// GetHistory returns the complete merged history, date descending.
// External transactions pass through with their signed amounts; a
// transfer becomes a debit (negative) when the queried bank sent it and
// a credit (positive) when it received it. On equal dates external
// entries deterministically sort before transfer entries.
//
// Pagination is the caller's concern; this always returns everything.
func (s *HistoryService) GetHistory(ctx context.Context, accountID, bankID string) ([]models.HistoryEntry, error) {
	feed, err := s.store.GetTransactionsByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("external feed: %w", err)
	}
	transfers, err := s.store.GetTransfersByBankID(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("transfer feed: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(feed)+len(transfers))
	for _, tx := range feed {
		direction := models.EntryDebit
		if tx.Amount.IsPositive() {
			direction = models.EntryCredit
		}
		entries = append(entries, models.HistoryEntry{
			ID:       tx.ID,
			Name:     tx.Name,
			Amount:   tx.Amount,
			Type:     direction,
			Date:     tx.Date,
			Category: tx.Category,
			Channel:  tx.PaymentChannel,
			Pending:  tx.Pending,
		})
	}
	for _, t := range transfers {
		amount := t.Amount
		direction := models.EntryCredit
		if t.SenderBankID == bankID {
			amount = amount.Neg()
			direction = models.EntryDebit
		}
		entries = append(entries, models.HistoryEntry{
			ID:       t.ID,
			Name:     t.Name,
			Amount:   amount,
			Type:     direction,
			Date:     t.CreatedAt,
			Category: t.Category,
			Channel:  t.Channel,
		})
	}

	// Stable sort over the external-then-transfer input keeps ties
	// deterministic: external entries first on equal dates.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// Paginate slices a full history into the given 1-indexed page of
// PageSize rows. Out-of-range pages yield an empty slice.
func Paginate(entries []models.HistoryEntry, page int) []models.HistoryEntry {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(entries) {
		return []models.HistoryEntry{}
	}
	end := start + PageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

// TotalPages reports how many pages a history of n entries spans.
func TotalPages(n int) int {
	if n == 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}
