package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/store"
)

// accountPage mirrors the GetAccount response shape.
type accountPage struct {
	Account           models.AccountView    `json:"account"`
	Transactions      []models.HistoryEntry `json:"transactions"`
	TotalTransactions int                   `json:"total_transactions"`
	Page              int                   `json:"page"`
	TotalPages        int                   `json:"total_pages"`
}

func TestGetAccountsAggregates(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/accounts", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var list models.AccountList
	decodeInto(t, w, &list)
	if list.TotalBanks != 3 || len(list.Accounts) != 3 {
		t.Fatalf("got %d banks, %d accounts, want 3/3", list.TotalBanks, len(list.Accounts))
	}
	if want := decimal.RequireFromString("22750.75"); !list.TotalCurrentBalance.Equal(want) {
		t.Errorf("total_current_balance = %s, want %s", list.TotalCurrentBalance, want)
	}
	if list.Accounts[0].InstitutionName != "Chase" {
		t.Errorf("first institution = %q, want Chase", list.Accounts[0].InstitutionName)
	}
}

func TestGetAccountPaginatesHistory(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/accounts/"+store.SeedBankChase, auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var page accountPage
	decodeInto(t, w, &page)

	if page.Page != 1 {
		t.Errorf("default page = %d, want 1", page.Page)
	}
	if len(page.Transactions) > 10 {
		t.Errorf("page has %d rows, want at most 10", len(page.Transactions))
	}
	if page.TotalTransactions < len(page.Transactions) {
		t.Errorf("total %d < page size %d", page.TotalTransactions, len(page.Transactions))
	}
	if page.Account.ID != store.SeedAccountChase {
		t.Errorf("account id = %s", page.Account.ID)
	}

	// History is returned newest first within the page.
	for i := 1; i < len(page.Transactions); i++ {
		if page.Transactions[i].Date.After(page.Transactions[i-1].Date) {
			t.Errorf("entries %d and %d out of date order", i-1, i)
		}
	}

	// A page past the end is empty but well-formed.
	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts/"+store.SeedBankChase+"?page=999", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("far page: status %d", w.Code)
	}
	decodeInto(t, w, &page)
	if len(page.Transactions) != 0 {
		t.Errorf("far page has %d rows, want 0", len(page.Transactions))
	}
	if page.Page != 999 {
		t.Errorf("far page echoes %d, want 999", page.Page)
	}
}

func TestGetAccountRejectsBadPageParam(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	for _, raw := range []string{"abc", "0", "-1"} {
		w := doJSON(t, r, http.MethodGet, "/api/v1/accounts/"+store.SeedBankChase+"?page="+raw, auth.AccessToken, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("page=%q: status %d, want 400", raw, w.Code)
		}
	}
}

func TestGetAccountUnknownBank(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/accounts/bank-nope", auth.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestGetInstitution(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/institutions/ins_56", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var inst models.Institution
	decodeInto(t, w, &inst)
	if inst.Name != "Chase" || inst.PrimaryColor != "0071ce" {
		t.Errorf("institution = %+v", inst)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/institutions/ins_nope", auth.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown institution: status %d, want 404", w.Code)
	}
}

func TestCreateBankLinkEndpoint(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/banks", auth.AccessToken, gin.H{
		"institution_id":    "ins_116944",
		"account_name":      "Wells Checking",
		"official_name":     "Wells Fargo Everyday Checking",
		"mask":              "5555",
		"type":              "depository",
		"subtype":           "checking",
		"available_balance": "1200.00",
		"current_balance":   "1200.00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var bank models.Bank
	decodeInto(t, w, &bank)
	if bank.ID == "" || bank.AccountID == "" {
		t.Fatalf("bank link missing ids: %+v", bank)
	}

	// The new link shows up in aggregation.
	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", auth.AccessToken, nil)
	var list models.AccountList
	decodeInto(t, w, &list)
	if list.TotalBanks != 4 {
		t.Errorf("total_banks = %d after linking, want 4", list.TotalBanks)
	}

	// Binding rejects a short mask before the service runs.
	w = doJSON(t, r, http.MethodPost, "/api/v1/banks", auth.AccessToken, gin.H{
		"institution_id": "ins_56",
		"account_name":   "Bad",
		"mask":           "12",
		"type":           "depository",
		"subtype":        "checking",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short mask: status %d, want 400", w.Code)
	}

	// Unknown institution is a 404 from the service.
	w = doJSON(t, r, http.MethodPost, "/api/v1/banks", auth.AccessToken, gin.H{
		"institution_id": "ins_nope",
		"account_name":   "Ghost",
		"mask":           "1234",
		"type":           "depository",
		"subtype":        "checking",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown institution: status %d, want 404", w.Code)
	}
}

func TestGetBanksEndpoint(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/banks", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		Banks []models.Bank `json:"banks"`
	}
	decodeInto(t, w, &resp)
	if len(resp.Banks) != 3 {
		t.Errorf("got %d banks, want 3", len(resp.Banks))
	}
}
