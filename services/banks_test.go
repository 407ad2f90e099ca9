package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"horizon-api/models"
	"horizon-api/services"
	"horizon-api/store"
)

func TestLinkBankCreatesAccountAndLink(t *testing.T) {
	m := newFixtureStore(t)
	svc := services.NewBankService(m)
	ctx := context.Background()

	bank, err := svc.LinkBank(ctx, "user-a", models.CreateBankLinkRequest{
		InstitutionID:    "ins-2",
		AccountName:      "Second Checking",
		OfficialName:     "Second Federal Total Checking",
		Mask:             "9999",
		Type:             "depository",
		Subtype:          "checking",
		AvailableBalance: "300.00",
		CurrentBalance:   "280.50",
	})
	if err != nil {
		t.Fatalf("LinkBank: %v", err)
	}

	if bank.UserID != "user-a" || bank.InstitutionID != "ins-2" {
		t.Errorf("bank link = %+v", bank)
	}
	if !strings.HasPrefix(bank.AccessToken, "access-sandbox-") {
		t.Errorf("access token = %q", bank.AccessToken)
	}
	if bank.ShareableID == "" {
		t.Error("expected generated shareable id")
	}

	account, err := m.GetAccountByID(ctx, bank.AccountID)
	if err != nil {
		t.Fatalf("linked account: %v", err)
	}
	if !account.AvailableBalance.Equal(mustDec(t, "300.00")) {
		t.Errorf("available = %s, want 300.00", account.AvailableBalance)
	}
	if !account.CurrentBalance.Equal(mustDec(t, "280.50")) {
		t.Errorf("current = %s, want 280.50", account.CurrentBalance)
	}

	banks, _ := svc.ListBanks(ctx, "user-a")
	if len(banks) != 3 {
		t.Errorf("user now has %d banks, want 3", len(banks))
	}
}

func TestLinkBankDefaultsEmptyBalancesToZero(t *testing.T) {
	m := newFixtureStore(t)
	ctx := context.Background()

	bank, err := services.NewBankService(m).LinkBank(ctx, "user-a", models.CreateBankLinkRequest{
		InstitutionID: "ins-1",
		AccountName:   "Fresh",
		Mask:          "0001",
		Type:          "depository",
		Subtype:       "checking",
	})
	if err != nil {
		t.Fatalf("LinkBank: %v", err)
	}
	account, _ := m.GetAccountByID(ctx, bank.AccountID)
	if !account.AvailableBalance.IsZero() || !account.CurrentBalance.IsZero() {
		t.Errorf("balances = %s/%s, want zero", account.AvailableBalance, account.CurrentBalance)
	}
}

func TestLinkBankAllowsNegativeCurrentBalance(t *testing.T) {
	m := newFixtureStore(t)
	ctx := context.Background()

	bank, err := services.NewBankService(m).LinkBank(ctx, "user-a", models.CreateBankLinkRequest{
		InstitutionID:    "ins-1",
		AccountName:      "Card",
		Mask:             "0002",
		Type:             "credit",
		Subtype:          "credit card",
		AvailableBalance: "2000.00",
		CurrentBalance:   "-350.75",
	})
	if err != nil {
		t.Fatalf("LinkBank: %v", err)
	}
	account, _ := m.GetAccountByID(ctx, bank.AccountID)
	if !account.CurrentBalance.Equal(mustDec(t, "-350.75")) {
		t.Errorf("current = %s, want -350.75", account.CurrentBalance)
	}
}

func TestLinkBankValidation(t *testing.T) {
	svc := services.NewBankService(newFixtureStore(t))
	ctx := context.Background()

	base := models.CreateBankLinkRequest{
		InstitutionID: "ins-1",
		AccountName:   "X",
		Mask:          "0003",
		Type:          "depository",
		Subtype:       "checking",
	}

	_, err := svc.LinkBank(ctx, "user-nobody", base)
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}

	req := base
	req.InstitutionID = "ins-nope"
	if _, err := svc.LinkBank(ctx, "user-a", req); !errors.Is(err, store.ErrInstitutionNotFound) {
		t.Errorf("unknown institution: expected ErrInstitutionNotFound, got %v", err)
	}

	req = base
	req.AvailableBalance = "lots"
	if _, err := svc.LinkBank(ctx, "user-a", req); !errors.Is(err, store.ErrInvalidAmount) {
		t.Errorf("bad balance: expected ErrInvalidAmount, got %v", err)
	}
}
