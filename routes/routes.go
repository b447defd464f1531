package routes

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/handlers"
	"github.com/microgestion/gestion-api/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	emailService := services.NewEmailService(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FRONTEND_URL"),
	)
	authHandler := &handlers.AuthHandler{DB: db, Email: emailService}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/logout", authHandler.Logout)
	rg.POST("/auth/refresh", authHandler.Refresh)
	rg.GET("/auth/verify", authHandler.VerifyEmail)
}

// SetupBusinessRoutes sets up the protected client/article/sale/quote/charge
// routes.
func SetupBusinessRoutes(rg *gin.RouterGroup, db *sql.DB, wsHandler *handlers.WSHandler) {
	billingService := services.NewBillingService(db)
	emailService := services.NewEmailService(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FRONTEND_URL"),
	)

	clientHandler := &handlers.ClientHandler{DB: db}
	rg.GET("/clients", clientHandler.ListClients)
	rg.POST("/clients", clientHandler.CreateClient)
	rg.GET("/clients/:id", clientHandler.GetClient)
	rg.PUT("/clients/:id", clientHandler.UpdateClient)
	rg.DELETE("/clients/:id", clientHandler.DeleteClient)

	articleHandler := &handlers.ArticleHandler{DB: db}
	rg.GET("/articles", articleHandler.ListArticles)
	rg.POST("/articles", articleHandler.CreateArticle)
	rg.GET("/articles/:id", articleHandler.GetArticle)
	rg.PUT("/articles/:id", articleHandler.UpdateArticle)
	rg.DELETE("/articles/:id", articleHandler.DeleteArticle)

	chargeHandler := &handlers.ChargeHandler{DB: db, WS: wsHandler}
	rg.GET("/charges", chargeHandler.ListCharges)
	rg.POST("/charges", chargeHandler.CreateCharge)
	rg.GET("/charges/calculated", chargeHandler.GetCalculatedCharges)
	rg.GET("/charges/totals", chargeHandler.GetTotals)
	rg.GET("/charges/:id", chargeHandler.GetCharge)
	rg.PUT("/charges/:id", chargeHandler.UpdateCharge)
	rg.DELETE("/charges/:id", chargeHandler.DeleteCharge)

	saleHandler := &handlers.SaleHandler{DB: db, Billing: billingService, Email: emailService, WS: wsHandler}
	rg.GET("/sales", saleHandler.ListSales)
	rg.POST("/sales", saleHandler.CreateSale)
	rg.GET("/sales/:id", saleHandler.GetSale)
	rg.PUT("/sales/:id", saleHandler.UpdateSale)
	rg.DELETE("/sales/:id", saleHandler.DeleteSale)
	rg.GET("/sales/:id/pdf", saleHandler.GetSalePDF)

	quoteHandler := &handlers.QuoteHandler{DB: db, Billing: billingService, WS: wsHandler}
	rg.GET("/quotes", quoteHandler.ListQuotes)
	rg.POST("/quotes", quoteHandler.CreateQuote)
	rg.GET("/quotes/:id", quoteHandler.GetQuote)
	rg.PUT("/quotes/:id/status", quoteHandler.UpdateQuoteStatus)
	rg.DELETE("/quotes/:id", quoteHandler.DeleteQuote)
	rg.POST("/quotes/:id/convert", quoteHandler.ConvertQuote)
	rg.GET("/quotes/:id/pdf", quoteHandler.GetQuotePDF)

	dashboardHandler := &handlers.DashboardHandler{DB: db}
	rg.GET("/dashboard/summary", dashboardHandler.GetSummary)

	exportHandler := &handlers.ExportHandler{DB: db}
	rg.GET("/export/sales", exportHandler.ExportSales)
	rg.GET("/export/charges", exportHandler.ExportCharges)
}

// SetupUserRoutes sets up protected user profile routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

// SetupSettingsRoutes sets up protected business settings routes.
func SetupSettingsRoutes(rg *gin.RouterGroup, db *sql.DB) {
	settingsHandler := &handlers.SettingsHandler{DB: db}

	rg.GET("/settings", settingsHandler.GetSettings)
	rg.PUT("/settings", settingsHandler.UpdateSettings)
}
