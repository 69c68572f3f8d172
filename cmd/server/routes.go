package main

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"domainlease.backend/internal/interfaces/http/handlers"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/metrics"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	domainHandler  *handlers.DomainHandler
	listingHandler *handlers.ListingHandler
	leaseHandler   *handlers.LeaseHandler
	txHandler      *handlers.TransactionHandler
	authMiddleware gin.HandlerFunc
	optionalAuth   gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.GET("/wallet/nonce", d.authHandler.WalletNonce)
			auth.POST("/wallet/login", d.authHandler.WalletLogin)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authHandler.Logout)
		}

		// Profile routes (protected)
		users := v1.Group("/users")
		users.Use(d.authMiddleware)
		{
			users.GET("/me", d.authHandler.Me)
			users.PUT("/me", d.authHandler.UpdateProfile)
			users.PUT("/me/password", d.authHandler.ChangePassword)
		}

		// Domain portfolio routes (protected)
		domains := v1.Group("/domains")
		domains.Use(d.authMiddleware)
		{
			domains.POST("", d.domainHandler.Register)
			domains.GET("", d.domainHandler.ListMine)
			domains.GET("/:id", d.domainHandler.Get)
		}

		// Listing routes (public read, protected write)
		listings := v1.Group("/listings")
		{
			listings.GET("", d.optionalAuth, d.listingHandler.Search)
			listings.GET("/:id", d.optionalAuth, d.listingHandler.Get)
			listings.POST("", d.authMiddleware, d.listingHandler.Publish)
			listings.DELETE("/:id", d.authMiddleware, d.listingHandler.Cancel)
		}

		// Lease routes (protected)
		leases := v1.Group("/leases")
		leases.Use(d.authMiddleware)
		{
			leases.POST("", d.leaseHandler.Create)
			leases.GET("", d.leaseHandler.ListMine)
			leases.GET("/:id", d.leaseHandler.Get)
			leases.POST("/:id/complete", d.leaseHandler.Complete)
			leases.POST("/:id/terminate", d.leaseHandler.Terminate)
			leases.POST("/:id/dispute", d.leaseHandler.Dispute)
		}

		// Ledger routes (protected)
		transactions := v1.Group("/transactions")
		transactions.Use(d.authMiddleware)
		{
			transactions.GET("", d.txHandler.ListMine)
			transactions.GET("/:id", d.txHandler.Get)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.PUT("/domains/:id/verification", d.domainHandler.UpdateVerification)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, db *sql.DB) {
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if db != nil {
			if err := db.Ping(); err != nil {
				status = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
