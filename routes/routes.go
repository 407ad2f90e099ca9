package routes

import (
	"github.com/gin-gonic/gin"

	"horizon-api/handlers"
	"horizon-api/store"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, s store.Store) {
	authHandler := &handlers.AuthHandler{Store: s}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
}

// SetupBankingRoutes sets up protected account, bank, and institution
// routes.
func SetupBankingRoutes(rg *gin.RouterGroup, s store.Store) {
	h := handlers.NewBankingHandler(s)

	rg.GET("/accounts", h.GetAccounts)
	rg.GET("/accounts/:id", h.GetAccount)
	rg.GET("/banks", h.GetBanks)
	rg.POST("/banks", h.CreateBankLink)
	rg.GET("/institutions/:id", h.GetInstitution)
}

// SetupTransferRoutes sets up protected transfer routes.
func SetupTransferRoutes(rg *gin.RouterGroup, s store.Store, ws *handlers.WSHandler) {
	h := handlers.NewTransferHandler(s, ws)

	rg.POST("/transfers", h.CreateTransfer)
	rg.GET("/banks/:id/transfers", h.GetTransfersByBank)
}

// SetupUserRoutes sets up protected user profile and 2FA routes.
func SetupUserRoutes(rg *gin.RouterGroup, s store.Store) {
	userHandler := &handlers.UserHandler{Store: s}
	authHandler := &handlers.AuthHandler{Store: s}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.POST("/auth/logout", authHandler.Logout)
}
