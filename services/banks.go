package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/store"
)

// BankService handles bank-link records: listing a user's links and
// creating new ones when a bank is linked.
type BankService struct {
	store store.Store
}

func NewBankService(s store.Store) *BankService {
	return &BankService{store: s}
}

// ListBanks returns the user's bank links in stored order.
func (s *BankService) ListBanks(ctx context.Context, userID string) ([]models.Bank, error) {
	return s.store.GetBanksByUserID(ctx, userID)
}

// GetBank returns one bank link by id.
func (s *BankService) GetBank(ctx context.Context, bankID string) (models.Bank, error) {
	return s.store.GetBankByID(ctx, bankID)
}

// LinkBank creates the account record delivered by the provider at link
// time, then the bank-link record pointing at it. The user and the
// institution must already exist; the generated access token and
// funding-source reference stand in for the real provider exchange.
func (s *BankService) LinkBank(ctx context.Context, userID string, req models.CreateBankLinkRequest) (models.Bank, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return models.Bank{}, err
	}
	if _, err := s.store.GetInstitutionByID(ctx, req.InstitutionID); err != nil {
		return models.Bank{}, err
	}

	available, err := parseBalance(req.AvailableBalance)
	if err != nil {
		return models.Bank{}, err
	}
	current, err := parseBalance(req.CurrentBalance)
	if err != nil {
		return models.Bank{}, err
	}

	account, err := s.store.CreateAccount(ctx, models.Account{
		Name:             req.AccountName,
		OfficialName:     req.OfficialName,
		Mask:             req.Mask,
		Type:             req.Type,
		Subtype:          req.Subtype,
		AvailableBalance: available,
		CurrentBalance:   current,
		InstitutionID:    req.InstitutionID,
	})
	if err != nil {
		return models.Bank{}, fmt.Errorf("create account: %w", err)
	}

	bank, err := s.store.CreateBank(ctx, models.Bank{
		UserID:           userID,
		AccountID:        account.ID,
		InstitutionID:    req.InstitutionID,
		AccessToken:      "access-sandbox-" + uuid.NewString(),
		FundingSourceURL: "https://payments.sandbox.example.com/funding-sources/" + uuid.NewString(),
		ShareableID:      "shareable-" + uuid.NewString(),
	})
	if err != nil {
		return models.Bank{}, fmt.Errorf("create bank: %w", err)
	}
	return bank, nil
}

// parseBalance treats an empty string as zero; anything else must be a
// valid decimal (negatives allowed: credit-card current balances).
func parseBalance(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", store.ErrInvalidAmount, raw)
	}
	return amount, nil
}
