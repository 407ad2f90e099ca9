package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"horizon-api/handlers"
	"horizon-api/middleware"
	"horizon-api/models"
	"horizon-api/routes"
	"horizon-api/store"
)

// newTestRouter wires the API the same way main does, minus CORS and
// rate limiting.
func newTestRouter(s store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	ws := handlers.NewWSHandler()
	v1 := r.Group("/api/v1")
	routes.SetupAuthRoutes(v1, s)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	routes.SetupBankingRoutes(protected, s)
	routes.SetupTransferRoutes(protected, s, ws)
	routes.SetupUserRoutes(protected, s)

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// loginDemo signs in the seeded demo user and returns the auth payload.
func loginDemo(t *testing.T, r http.Handler) models.AuthResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "demo@banking.com",
		"password": "demo12345",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("demo login: status %d, body %s", w.Code, w.Body.String())
	}
	var resp models.AuthResponse
	decodeInto(t, w, &resp)
	return resp
}
