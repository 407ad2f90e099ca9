// Package services implements the business rules of the ledger on top
// of the entity store: account aggregation, transaction history
// assembly, the transfer engine, and bank linking.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/store"
)

// AccountService computes per-user views over the entity store.
type AccountService struct {
	store   store.Store
	history *HistoryService
}

func NewAccountService(s store.Store) *AccountService {
	return &AccountService{store: s, history: NewHistoryService(s)}
}

// GetAccountsForUser returns the user's accounts in bank-link order,
// each enriched with its institution, plus the bank count and the
// decimal-exact sum of current balances.
//
// An unknown user yields an empty result, not an error. Bank links
// whose account or institution cannot be resolved are skipped: bulk
// aggregation degrades gracefully instead of failing the whole listing.
func (s *AccountService) GetAccountsForUser(ctx context.Context, userID string) (models.AccountList, error) {
	banks, err := s.store.GetBanksByUserID(ctx, userID)
	if err != nil {
		return models.AccountList{}, fmt.Errorf("list banks: %w", err)
	}

	list := models.AccountList{
		Accounts:            []models.AccountView{},
		TotalCurrentBalance: decimal.Zero,
	}
	for _, bank := range banks {
		view, err := s.resolveView(ctx, bank)
		if err != nil {
			if errors.Is(err, store.ErrInconsistentBank) {
				continue
			}
			return models.AccountList{}, err
		}
		list.Accounts = append(list.Accounts, view)
		list.TotalCurrentBalance = list.TotalCurrentBalance.Add(view.CurrentBalance)
	}
	list.TotalBanks = len(list.Accounts)
	return list, nil
}

// GetAccountDetail returns the single account view for a bank link plus
// its full merged transaction history. Unlike bulk aggregation, a
// missing bank, account, or institution is a hard NotFound here.
func (s *AccountService) GetAccountDetail(ctx context.Context, bankID string) (models.AccountDetail, error) {
	bank, err := s.store.GetBankByID(ctx, bankID)
	if err != nil {
		return models.AccountDetail{}, err
	}

	// Single-record lookups surface broken references instead of
	// filtering them out; the error chain keeps both the inconsistency
	// marker and the underlying not-found.
	view, err := s.resolveView(ctx, bank)
	if err != nil {
		return models.AccountDetail{}, err
	}

	history, err := s.history.GetHistory(ctx, bank.AccountID, bank.ID)
	if err != nil {
		return models.AccountDetail{}, err
	}

	return models.AccountDetail{Account: view, Transactions: history}, nil
}

// resolveView joins a bank link with its account and institution.
// A missing account or institution comes back as ErrInconsistentBank
// wrapping the underlying not-found, so callers can pick their policy.
func (s *AccountService) resolveView(ctx context.Context, bank models.Bank) (models.AccountView, error) {
	account, err := s.store.GetAccountByID(ctx, bank.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return models.AccountView{}, fmt.Errorf("%w: %w", store.ErrInconsistentBank, err)
		}
		return models.AccountView{}, err
	}

	institution, err := s.store.GetInstitutionByID(ctx, bank.InstitutionID)
	if err != nil {
		if errors.Is(err, store.ErrInstitutionNotFound) {
			return models.AccountView{}, fmt.Errorf("%w: %w", store.ErrInconsistentBank, err)
		}
		return models.AccountView{}, err
	}

	return models.AccountView{
		ID:               account.ID,
		Name:             account.Name,
		OfficialName:     account.OfficialName,
		Mask:             account.Mask,
		Type:             account.Type,
		Subtype:          account.Subtype,
		AvailableBalance: account.AvailableBalance,
		CurrentBalance:   account.CurrentBalance,
		InstitutionID:    institution.ID,
		InstitutionName:  institution.Name,
		BankID:           bank.ID,
		ShareableID:      bank.ShareableID,
	}, nil
}
