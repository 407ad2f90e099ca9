package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"

	"horizon-api/models"
	"horizon-api/store"
)

func TestSignupCreatesSessionUser(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":      "new.user@example.com",
		"password":   "supersecret1",
		"first_name": "New",
		"last_name":  "User",
		"ssn":        "123456789",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp models.AuthResponse
	decodeInto(t, w, &resp)
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens in signup response")
	}
	if resp.User.SSN != "***-**-6789" {
		t.Errorf("ssn stored as %q, want masked", resp.User.SSN)
	}
	if strings.Contains(w.Body.String(), "supersecret1") {
		t.Error("response leaks the password")
	}
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Error("response leaks the password hash")
	}

	// The new account can sign in immediately.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "new.user@example.com",
		"password": "supersecret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login after signup: status %d", w.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":      "demo@banking.com",
		"password":   "whatever123",
		"first_name": "Dup",
		"last_name":  "User",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "demo@banking.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: status %d, want 401", w.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": auth.RefreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status %d, body %s", w.Code, w.Body.String())
	}
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	decodeInto(t, w, &refreshed)
	if refreshed.AccessToken == "" {
		t.Fatal("expected a fresh access token")
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, gin.H{
		"refresh_token": auth.RefreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	// The session is gone; the refresh token no longer works.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": auth.RefreshToken,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status %d, want 401", w.Code)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": "made-up-token",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())

	w := doJSON(t, r, http.MethodGet, "/api/v1/accounts", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", w.Code)
	}
}

func TestTOTPLifecycle(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/user/2fa/setup", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("setup: status %d, body %s", w.Code, w.Body.String())
	}
	var setup models.TOTPSetupResponse
	decodeInto(t, w, &setup)
	if setup.Secret == "" {
		t.Fatal("expected a generated secret")
	}

	// Setup alone does not enable the factor: login still works bare.
	if w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "demo@banking.com", "password": "demo12345",
	}); w.Code != http.StatusOK {
		t.Fatalf("login before verify: status %d", w.Code)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/user/2fa/verify", auth.AccessToken, gin.H{"code": code})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status %d, body %s", w.Code, w.Body.String())
	}

	// Enabled now: a bare login is challenged, a code-carrying one passes.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "demo@banking.com", "password": "demo12345",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login without code: status %d, want 401", w.Code)
	}
	var challenge struct {
		Requires2FA bool `json:"requires_2fa"`
	}
	decodeInto(t, w, &challenge)
	if !challenge.Requires2FA {
		t.Error("expected requires_2fa flag in challenge")
	}

	code, err = totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "demo@banking.com", "password": "demo12345", "totp_code": code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login with code: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/user/2fa/disable", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("disable: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "demo@banking.com", "password": "demo12345",
	}); w.Code != http.StatusOK {
		t.Errorf("login after disable: status %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	r := newTestRouter(store.NewSeededStore())
	auth := loginDemo(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/user/profile", auth.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var user models.User
	decodeInto(t, w, &user)
	if user.Email != "demo@banking.com" {
		t.Errorf("profile email = %q", user.Email)
	}
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Error("profile leaks the password hash")
	}
}
