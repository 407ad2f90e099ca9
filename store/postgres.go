package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"horizon-api/models"
	"horizon-api/utils"
)

// PostgresStore is the optional persistent backend, selected when
// DATABASE_URL is set. It implements the same Store contract as the
// in-memory backend; ApplyTransfer runs inside one SQL transaction with
// row locks taken in account-id order so two concurrent transfers
// touching the same pair cannot deadlock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

const userColumns = `id, email, password_hash, first_name, last_name, address1, city, state,
	postal_code, date_of_birth, ssn, totp_secret, totp_enabled,
	payment_customer_id, payment_customer_url, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Address1, &u.City, &u.State, &u.PostalCode, &u.DateOfBirth, &u.SSN,
		&u.TOTPSecret, &u.TOTPEnabled, &u.PaymentCustomerID, &u.PaymentCustomerURL,
		&u.CreatedAt)
	return u, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = NewID("user")
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", u.Email,
	).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, address1,
			city, state, postal_code, date_of_birth, ssn, totp_secret, totp_enabled,
			payment_customer_id, payment_customer_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Address1, u.City,
		u.State, u.PostalCode, u.DateOfBirth, u.SSN, u.TOTPSecret, u.TOTPEnabled,
		u.PaymentCustomerID, u.PaymentCustomerURL).Scan(&u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *PostgresStore) UpdateUserTOTP(ctx context.Context, id, secret string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET totp_secret = $1, totp_enabled = $2 WHERE id = $3", secret, enabled, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ----------------------------------------------------------------------------
// Sessions
// ----------------------------------------------------------------------------

func (s *PostgresStore) CreateSession(ctx context.Context, sess models.Session) (models.Session, error) {
	if sess.ID == "" {
		sess.ID = NewID("session")
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, sess.ID, sess.UserID, sess.RefreshToken, sess.ExpiresAt).Scan(&sess.CreatedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token, expires_at, created_at
		FROM sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`, refreshToken).Scan(&sess.ID, &sess.UserID, &sess.RefreshToken, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE refresh_token = $1", refreshToken)
	return err
}

// ----------------------------------------------------------------------------
// Banks
// ----------------------------------------------------------------------------

const bankColumns = `id, user_id, account_id, institution_id, access_token,
	funding_source_url, shareable_id, created_at`

func scanBank(row interface{ Scan(...any) error }) (models.Bank, error) {
	var b models.Bank
	err := row.Scan(&b.ID, &b.UserID, &b.AccountID, &b.InstitutionID,
		&b.AccessToken, &b.FundingSourceURL, &b.ShareableID, &b.CreatedAt)
	return b, err
}

func (s *PostgresStore) CreateBank(ctx context.Context, b models.Bank) (models.Bank, error) {
	if b.ID == "" {
		b.ID = NewID("bank")
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO banks (id, user_id, account_id, institution_id, access_token,
			funding_source_url, shareable_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, b.ID, b.UserID, b.AccountID, b.InstitutionID, b.AccessToken,
		b.FundingSourceURL, b.ShareableID).Scan(&b.CreatedAt)
	if err != nil {
		return models.Bank{}, fmt.Errorf("failed to create bank: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) GetBankByID(ctx context.Context, id string) (models.Bank, error) {
	b, err := scanBank(s.db.QueryRowContext(ctx,
		`SELECT `+bankColumns+` FROM banks WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Bank{}, ErrBankNotFound
	}
	return b, err
}

func (s *PostgresStore) GetBanksByUserID(ctx context.Context, userID string) ([]models.Bank, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bankColumns+` FROM banks WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []models.Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (s *PostgresStore) GetBankByAccountID(ctx context.Context, accountID string) (models.Bank, error) {
	b, err := scanBank(s.db.QueryRowContext(ctx,
		`SELECT `+bankColumns+` FROM banks WHERE account_id = $1`, accountID))
	if err == sql.ErrNoRows {
		return models.Bank{}, ErrBankNotFound
	}
	return b, err
}

// ----------------------------------------------------------------------------
// Accounts
// ----------------------------------------------------------------------------

const accountColumns = `id, name, official_name, mask, type, subtype,
	available_balance, current_balance, institution_id`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.OfficialName, &a.Mask, &a.Type, &a.Subtype,
		&a.AvailableBalance, &a.CurrentBalance, &a.InstitutionID)
	return a, err
}

func (s *PostgresStore) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == "" {
		a.ID = NewID("account")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, official_name, mask, type, subtype,
			available_balance, current_balance, institution_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.Name, a.OfficialName, a.Mask, a.Type, a.Subtype,
		a.AvailableBalance, a.CurrentBalance, a.InstitutionID)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) GetAccountByID(ctx context.Context, id string) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Account{}, ErrAccountNotFound
	}
	return a, err
}

func (s *PostgresStore) UpdateAccountBalances(ctx context.Context, accountID string, delta decimal.Decimal) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET available_balance = available_balance + $1,
		    current_balance = current_balance + $1
		WHERE id = $2
		RETURNING `+accountColumns, delta, accountID))
	if err == sql.ErrNoRows {
		return models.Account{}, ErrAccountNotFound
	}
	return a, err
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

func (s *PostgresStore) GetTransactionsByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, name, amount, date, category, payment_channel, pending
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Name, &tx.Amount, &tx.Date,
			&tx.Category, &tx.PaymentChannel, &tx.Pending); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// ----------------------------------------------------------------------------
// Transfers
// ----------------------------------------------------------------------------

const transferColumns = `id, name, amount, sender_id, sender_bank_id, receiver_id,
	receiver_bank_id, email, channel, category, created_at`

func scanTransfer(row interface{ Scan(...any) error }) (models.Transfer, error) {
	var t models.Transfer
	err := row.Scan(&t.ID, &t.Name, &t.Amount, &t.SenderID, &t.SenderBankID,
		&t.ReceiverID, &t.ReceiverBankID, &t.Email, &t.Channel, &t.Category, &t.CreatedAt)
	return t, err
}

func (s *PostgresStore) GetTransfersByBankID(ctx context.Context, bankID string) ([]models.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transferColumns+`
		FROM transfers
		WHERE sender_bank_id = $1 OR receiver_bank_id = $1
		ORDER BY created_at DESC, id
	`, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (s *PostgresStore) ApplyTransfer(ctx context.Context, t models.Transfer, senderAccountID, receiverAccountID string) (models.Transfer, error) {
	if t.ID == "" {
		t.ID = NewID("transfer")
	}

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		// Lock both rows in id order so concurrent transfers over the
		// same pair never deadlock.
		first, second := senderAccountID, receiverAccountID
		if second < first {
			first, second = second, first
		}
		for _, id := range []string{first, second} {
			var locked string
			if err := tx.QueryRowContext(ctx,
				"SELECT id FROM accounts WHERE id = $1 FOR UPDATE", id).Scan(&locked); err != nil {
				if err == sql.ErrNoRows {
					return ErrAccountNotFound
				}
				return err
			}
		}

		var available decimal.Decimal
		if err := tx.QueryRowContext(ctx,
			"SELECT available_balance FROM accounts WHERE id = $1", senderAccountID).Scan(&available); err != nil {
			return err
		}
		if available.LessThan(t.Amount) {
			return ErrInsufficientFunds
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET available_balance = available_balance - $1,
			    current_balance = current_balance - $1
			WHERE id = $2
		`, t.Amount, senderAccountID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET available_balance = available_balance + $1,
			    current_balance = current_balance + $1
			WHERE id = $2
		`, t.Amount, receiverAccountID); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO transfers (id, name, amount, sender_id, sender_bank_id,
				receiver_id, receiver_bank_id, email, channel, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`, t.ID, t.Name, t.Amount, t.SenderID, t.SenderBankID, t.ReceiverID,
			t.ReceiverBankID, t.Email, t.Channel, t.Category).Scan(&t.CreatedAt)
	})
	if err != nil {
		return models.Transfer{}, err
	}
	return t, nil
}

// ----------------------------------------------------------------------------
// Institutions
// ----------------------------------------------------------------------------

func (s *PostgresStore) GetInstitutionByID(ctx context.Context, id string) (models.Institution, error) {
	var inst models.Institution
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, primary_color, url FROM institutions WHERE id = $1", id,
	).Scan(&inst.ID, &inst.Name, &inst.PrimaryColor, &inst.URL)
	if err == sql.ErrNoRows {
		return models.Institution{}, ErrInstitutionNotFound
	}
	if err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

func (s *PostgresStore) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, primary_color, url FROM institutions ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insts []models.Institution
	for rows.Next() {
		var inst models.Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.PrimaryColor, &inst.URL); err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
