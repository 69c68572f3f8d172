package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"domainlease.backend/internal/config"
	"domainlease.backend/internal/infrastructure/blockchain"
	"domainlease.backend/internal/infrastructure/email"
	"domainlease.backend/internal/infrastructure/jobs"
	"domainlease.backend/internal/infrastructure/repositories"
	"domainlease.backend/internal/interfaces/http/handlers"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/metrics"
	"domainlease.backend/internal/usecases"
	"domainlease.backend/pkg/jwt"
	"domainlease.backend/pkg/logger"
	"domainlease.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("connected to PostgreSQL via GORM")
	}

	metrics.Register()

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	domainRepo := repositories.NewDomainRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	leaseRepo := repositories.NewLeaseRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	interactionRepo := repositories.NewInteractionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	mailer := email.NewSender(cfg.Server.Env, cfg.Email.ResendAPIKey, cfg.Email.From)
	leaseToken := blockchain.NewLeaseTokenService(
		cfg.Blockchain.RPCURL,
		cfg.Blockchain.ContractAddress,
		cfg.Blockchain.OwnerPrivateKey,
		cfg.Blockchain.CallTimeout,
	)

	// Usecases
	bindingService := usecases.NewTokenBindingService(listingRepo, leaseToken)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService, sessionStore, mailer)
	domainUsecase := usecases.NewDomainUsecase(domainRepo, listingRepo)
	listingUsecase := usecases.NewListingUsecase(listingRepo, domainRepo, interactionRepo)
	leaseUsecase := usecases.NewLeaseUsecase(leaseRepo, listingRepo, domainRepo, userRepo, txRepo, interactionRepo, uow, bindingService, mailer)
	txUsecase := usecases.NewTransactionUsecase(txRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	domainHandler := handlers.NewDomainHandler(domainUsecase)
	listingHandler := handlers.NewListingHandler(listingUsecase)
	leaseHandler := handlers.NewLeaseHandler(leaseUsecase)
	txHandler := handlers.NewTransactionHandler(txUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService)

	// Background sweep
	sweep := jobs.NewExpirySweep(listingRepo, leaseRepo, listingUsecase, bindingService, cfg.Jobs.SweepBatchSize)
	if err := sweep.Start(cfg.Jobs.ExpirySchedule); err != nil {
		return fmt.Errorf("failed to start expiry sweep: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r, sqlDB)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		domainHandler:  domainHandler,
		listingHandler: listingHandler,
		leaseHandler:   leaseHandler,
		txHandler:      txHandler,
		authMiddleware: authMiddleware,
		optionalAuth:   optionalAuth,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
		sweep.Stop()
	}()

	log.Printf("domain lease backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
