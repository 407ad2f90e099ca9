package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"horizon-api/middleware"
	"horizon-api/models"
	"horizon-api/services"
	"horizon-api/store"
)

// BankingHandler exposes the read side of the ledger: account
// aggregation, single-account detail with paginated history, bank-link
// listing and creation, and the institution directory.
type BankingHandler struct {
	Accounts *services.AccountService
	Banks    *services.BankService
	Store    store.Store
}

func NewBankingHandler(s store.Store) *BankingHandler {
	return &BankingHandler{
		Accounts: services.NewAccountService(s),
		Banks:    services.NewBankService(s),
		Store:    s,
	}
}

// GetAccounts lists the session user's accounts with aggregates.
func (h *BankingHandler) GetAccounts(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.Accounts.GetAccountsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accounts"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetAccount returns one account with a page of its merged history.
// The full history is assembled by the service; slicing to 10 rows per
// 1-indexed page happens here, at the UI boundary.
func (h *BankingHandler) GetAccount(c *gin.Context) {
	bankID := c.Param("id")

	detail, err := h.Accounts.GetAccountDetail(c.Request.Context(), bankID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = parsed
	}

	total := len(detail.Transactions)
	c.JSON(http.StatusOK, gin.H{
		"account":            detail.Account,
		"transactions":       services.Paginate(detail.Transactions, page),
		"total_transactions": total,
		"page":               page,
		"total_pages":        services.TotalPages(total),
	})
}

// GetBanks lists the session user's bank links.
func (h *BankingHandler) GetBanks(c *gin.Context) {
	userID := middleware.GetUserID(c)

	banks, err := h.Banks.ListBanks(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banks"})
		return
	}
	if banks == nil {
		banks = []models.Bank{}
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

// CreateBankLink links a new bank for the session user.
func (h *BankingHandler) CreateBankLink(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateBankLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bank, err := h.Banks.LinkBank(c.Request.Context(), userID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bank)
}

// GetInstitution returns directory metadata for one institution.
func (h *BankingHandler) GetInstitution(c *gin.Context) {
	inst, err := h.Store.GetInstitutionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// writeDomainError maps domain errors onto HTTP statuses: not-found
// variants to 404, invalid amounts to 400, insufficient funds to 402.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrBankNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrInstitutionNotFound),
		errors.Is(err, store.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
