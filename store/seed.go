package store

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/utils"
)

// Fixture identifiers, stable so tests and demo clients can reference them.
const (
	SeedUserDemo = "user-demo"
	SeedUserJane = "user-jane"

	SeedBankChase = "bank-chase-1"
	SeedBankBofA  = "bank-bofa-1"
	SeedBankWells = "bank-wells-1"

	SeedAccountChase = "account-chase-001"
	SeedAccountBofA  = "account-bofa-001"
	SeedAccountWells = "account-wells-001"
)

// seedFeedSize is the number of generated external transactions per seed run.
const seedFeedSize = 60

// NewSeededStore builds a MemoryStore populated with the demo dataset:
// two users, three institutions, three linked banks and accounts, a
// generated 60-entry external transaction feed over the trailing 90
// days, and two historical transfers. The feed generator uses a fixed
// PRNG seed, so repeated runs produce the same dataset.
func NewSeededStore() *MemoryStore {
	m := NewMemoryStore()
	ctx := context.Background()

	// Demo credentials: demo@banking.com / demo12345 and
	// jane.smith@example.com / password123.
	demoPassword, err := utils.HashPassword("demo12345")
	if err != nil {
		panic("seed: " + err.Error())
	}
	janePassword, err := utils.HashPassword("password123")
	if err != nil {
		panic("seed: " + err.Error())
	}

	users := []models.User{
		{
			ID:                 SeedUserDemo,
			Email:              "demo@banking.com",
			PasswordHash:       demoPassword,
			FirstName:          "John",
			LastName:           "Doe",
			Address1:           "123 Main Street",
			City:               "San Francisco",
			State:              "CA",
			PostalCode:         "94102",
			DateOfBirth:        "1990-01-15",
			SSN:                "***-**-1234",
			PaymentCustomerID:  "customer-demo-1",
			PaymentCustomerURL: "https://payments.sandbox.example.com/customers/customer-demo-1",
		},
		{
			ID:                 SeedUserJane,
			Email:              "jane.smith@example.com",
			PasswordHash:       janePassword,
			FirstName:          "Jane",
			LastName:           "Smith",
			Address1:           "456 Oak Avenue",
			City:               "Los Angeles",
			State:              "CA",
			PostalCode:         "90001",
			DateOfBirth:        "1985-05-20",
			SSN:                "***-**-5678",
			PaymentCustomerID:  "customer-jane-1",
			PaymentCustomerURL: "https://payments.sandbox.example.com/customers/customer-jane-1",
		},
	}
	for _, u := range users {
		if _, err := m.CreateUser(ctx, u); err != nil {
			panic("seed: " + err.Error())
		}
	}

	for _, inst := range []models.Institution{
		{ID: "ins_56", Name: "Chase", PrimaryColor: "0071ce", URL: "https://www.chase.com"},
		{ID: "ins_127989", Name: "Bank of America", PrimaryColor: "e31837", URL: "https://www.bankofamerica.com"},
		{ID: "ins_116944", Name: "Wells Fargo", PrimaryColor: "d71e28", URL: "https://www.wellsfargo.com"},
	} {
		m.SeedInstitution(inst)
	}

	accounts := []models.Account{
		{
			ID:               SeedAccountChase,
			Name:             "Chase Checking",
			OfficialName:     "Chase Total Checking",
			Mask:             "4321",
			Type:             "depository",
			Subtype:          "checking",
			AvailableBalance: decimal.RequireFromString("15420.50"),
			CurrentBalance:   decimal.RequireFromString("15420.50"),
			InstitutionID:    "ins_56",
		},
		{
			ID:               SeedAccountBofA,
			Name:             "BofA Savings",
			OfficialName:     "Bank of America Advantage Savings",
			Mask:             "8765",
			Type:             "depository",
			Subtype:          "savings",
			AvailableBalance: decimal.RequireFromString("8750.25"),
			CurrentBalance:   decimal.RequireFromString("8750.25"),
			InstitutionID:    "ins_127989",
		},
		{
			ID:               SeedAccountWells,
			Name:             "Wells Fargo Credit",
			OfficialName:     "Wells Fargo Platinum Credit Card",
			Mask:             "1234",
			Type:             "credit",
			Subtype:          "credit card",
			AvailableBalance: decimal.RequireFromString("4580.00"),
			// Negative for credit cards: amount owed.
			CurrentBalance: decimal.RequireFromString("-1420.00"),
			InstitutionID:  "ins_116944",
		},
	}
	for _, a := range accounts {
		if _, err := m.CreateAccount(ctx, a); err != nil {
			panic("seed: " + err.Error())
		}
	}

	banks := []models.Bank{
		{
			ID:               SeedBankChase,
			UserID:           SeedUserDemo,
			AccountID:        SeedAccountChase,
			InstitutionID:    "ins_56",
			AccessToken:      "access-sandbox-chase-001",
			FundingSourceURL: "https://payments.sandbox.example.com/funding-sources/funding-1",
			ShareableID:      "shareable-chase-001",
		},
		{
			ID:               SeedBankBofA,
			UserID:           SeedUserDemo,
			AccountID:        SeedAccountBofA,
			InstitutionID:    "ins_127989",
			AccessToken:      "access-sandbox-bofa-001",
			FundingSourceURL: "https://payments.sandbox.example.com/funding-sources/funding-2",
			ShareableID:      "shareable-bofa-001",
		},
		{
			ID:               SeedBankWells,
			UserID:           SeedUserDemo,
			AccountID:        SeedAccountWells,
			InstitutionID:    "ins_116944",
			AccessToken:      "access-sandbox-wells-001",
			FundingSourceURL: "https://payments.sandbox.example.com/funding-sources/funding-3",
			ShareableID:      "shareable-wells-001",
		},
	}
	for _, b := range banks {
		if _, err := m.CreateBank(ctx, b); err != nil {
			panic("seed: " + err.Error())
		}
	}

	feeds := generateTransactionFeed(time.Now().UTC())
	for accountID, feed := range feeds {
		m.SeedTransactions(accountID, feed)
	}

	// Two historical transfers between the demo accounts. Seeded oldest
	// first so the stored ledger ends up newest first.
	m.SeedTransfer(models.Transfer{
		ID:             "transfer-seed-2",
		Name:           "Received from Freelance Work",
		Amount:         decimal.RequireFromString("1500.00"),
		SenderID:       SeedUserJane,
		SenderBankID:   SeedBankBofA,
		ReceiverID:     SeedUserDemo,
		ReceiverBankID: SeedBankChase,
		Email:          "demo@banking.com",
		Channel:        "online",
		Category:       "Transfer",
		CreatedAt:      time.Now().UTC().AddDate(0, 0, -12),
	})
	m.SeedTransfer(models.Transfer{
		ID:             "transfer-seed-1",
		Name:           "Transfer to Jane Smith",
		Amount:         decimal.RequireFromString("250.00"),
		SenderID:       SeedUserDemo,
		SenderBankID:   SeedBankChase,
		ReceiverID:     SeedUserJane,
		ReceiverBankID: SeedBankBofA,
		Email:          "jane.smith@example.com",
		Channel:        "online",
		Category:       "Transfer",
		CreatedAt:      time.Now().UTC().AddDate(0, 0, -5),
	})

	return m
}

var seedMerchants = []struct {
	name     string
	category string
}{
	{"Starbucks", "Food and Drink"},
	{"Whole Foods", "Food and Drink"},
	{"Amazon", "Shopping"},
	{"Netflix", "Entertainment"},
	{"Uber", "Travel"},
	{"Shell Gas Station", "Travel"},
	{"CVS Pharmacy", "Healthcare"},
	{"Target", "Shopping"},
	{"McDonald's", "Food and Drink"},
	{"Best Buy", "Shopping"},
	{"Home Depot", "Shopping"},
	{"Costco", "Shopping"},
	{"Walmart", "Shopping"},
	{"Delta Airlines", "Travel"},
	{"Marriott Hotel", "Travel"},
	{"Apple Store", "Shopping"},
	{"Spotify", "Entertainment"},
	{"AT&T", "Bills"},
	{"Pacific Gas & Electric", "Bills"},
	{"California Water Service", "Bills"},
}

var seedChannels = []string{"online", "in store", "other"}

// generateTransactionFeed produces the fixed external feed: 60 entries
// spread over the trailing 90 days across the two depository accounts,
// amounts between 5.00 and 505.00, roughly one in five a credit
// (refund/deposit), the three most recent entries pending. The PRNG
// seed is fixed so the dataset is reproducible.
func generateTransactionFeed(now time.Time) map[string][]models.Transaction {
	rng := rand.New(rand.NewSource(42))
	accounts := []string{SeedAccountChase, SeedAccountBofA}

	all := make([]models.Transaction, 0, seedFeedSize)
	for i := 0; i < seedFeedSize; i++ {
		daysAgo := rng.Intn(90)
		merchant := seedMerchants[rng.Intn(len(seedMerchants))]
		cents := rng.Int63n(50000) + 500 // 5.00 .. 505.00
		amount := decimal.New(cents, -2).Neg()
		if rng.Float64() > 0.8 {
			amount = amount.Neg() // credit: refund or deposit
		}

		all = append(all, models.Transaction{
			ID:             NewID("transaction"),
			AccountID:      accounts[rng.Intn(len(accounts))],
			Name:           merchant.name,
			Amount:         amount,
			Date:           now.AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour),
			Category:       merchant.category,
			PaymentChannel: seedChannels[rng.Intn(len(seedChannels))],
		})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	for i := 0; i < 3 && i < len(all); i++ {
		all[i].Pending = true
	}

	feeds := make(map[string][]models.Transaction)
	for _, tx := range all {
		feeds[tx.AccountID] = append(feeds[tx.AccountID], tx)
	}
	return feeds
}
