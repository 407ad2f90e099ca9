package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Institution is static reference data for a financial provider.
// The directory is read-only; records are keyed by institution id.
type Institution struct {
	ID           string `json:"institution_id"`
	Name         string `json:"name"`
	PrimaryColor string `json:"primary_color"`
	URL          string `json:"url"`
}

// Bank is a bank-link record: it connects one user to one external
// account, together with the (mocked) provider credentials.
type Bank struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AccountID        string    `json:"account_id"`
	InstitutionID    string    `json:"institution_id"`
	AccessToken      string    `json:"-"` // provider credential, internal use only
	FundingSourceURL string    `json:"funding_source_url,omitempty"`
	ShareableID      string    `json:"shareable_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Account is a financial account at a linked institution.
//
// Available and current balance are tracked independently (available may
// exclude pending holds), but this core moves both in lockstep on
// transfers; pending-settlement lag is not modeled.
type Account struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"official_name"`
	Mask             string          `json:"mask"`
	Type             string          `json:"type"`    // "depository", "credit"
	Subtype          string          `json:"subtype"` // "checking", "savings", "credit card"
	AvailableBalance decimal.Decimal `json:"available_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	InstitutionID    string          `json:"institution_id"`
}

// AccountView is an account enriched with its bank link, as returned by
// account aggregation.
type AccountView struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"official_name"`
	Mask             string          `json:"mask"`
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	InstitutionID    string          `json:"institution_id"`
	InstitutionName  string          `json:"institution_name"`
	BankID           string          `json:"bank_id"`
	ShareableID      string          `json:"shareable_id"`
}

// AccountList is the aggregate result of listing a user's accounts.
type AccountList struct {
	Accounts            []AccountView   `json:"accounts"`
	TotalBanks          int             `json:"total_banks"`
	TotalCurrentBalance decimal.Decimal `json:"total_current_balance"`
}

// CreateBankLinkRequest links a new bank for the session user. The
// account fields describe the external account delivered by the (mocked)
// provider at link time.
type CreateBankLinkRequest struct {
	InstitutionID    string `json:"institution_id" binding:"required"`
	AccountName      string `json:"account_name" binding:"required"`
	OfficialName     string `json:"official_name"`
	Mask             string `json:"mask" binding:"required,len=4"`
	Type             string `json:"type" binding:"required"`
	Subtype          string `json:"subtype" binding:"required"`
	AvailableBalance string `json:"available_balance"`
	CurrentBalance   string `json:"current_balance"`
}
