package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/balance"
	"ledgerly/internal/config"
	"ledgerly/internal/database"
	"ledgerly/internal/events"
	"ledgerly/internal/handlers"
	"ledgerly/internal/logger"
	"ledgerly/internal/middleware"
	"ledgerly/internal/reporting"
	"ledgerly/internal/services"
	"ledgerly/internal/validator"
)

// @title           Ledgerly API
// @version         1.0
// @description     Ledgerly records team ledger entries and keeps account, merchant, category and tag balances exact.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(appConfig.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(appConfig.KafkaBrokers, appConfig.KafkaTopic)
		log.Infow("Publishing balance changes", "brokers", appConfig.KafkaBrokers, "topic", appConfig.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("publisher close error: %v", err)
		}
	}()

	// Balance maintenance
	db := dbManager.DB()
	refresher := reporting.NewRefresher(db, appConfig.RefreshConcurrently)
	store := balance.NewStore(db)
	observer := balance.NewObserver(store, refresher)

	// Services
	teamService := services.NewTeamService(db)
	accountService := services.NewAccountService(db)
	merchantService := services.NewMerchantService(db)
	categoryService := services.NewCategoryService(db)
	tagService := services.NewTagService(db)
	transactionService := services.NewTransactionService(db, observer, publisher)
	balanceService := services.NewBalanceService(db, store)
	reportService := services.NewReportService(db, refresher, appConfig.RefreshParallelism)

	// Handlers
	teamHandler := handlers.NewTeamHandler(teamService)
	accountHandler := handlers.NewAccountHandler(accountService)
	merchantHandler := handlers.NewMerchantHandler(merchantService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	tagHandler := handlers.NewTagHandler(tagService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	reportHandler := handlers.NewReportHandler(reportService)

	validator.Register()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.POST("/teams", teamHandler.CreateTeam)

	scoped := v1.Group("/")
	scoped.Use(middleware.TeamScope())
	scoped.GET("/teams/current", teamHandler.GetCurrentTeam)

	accounts := scoped.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetTeamAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	merchants := scoped.Group("/merchants")
	merchants.POST("", merchantHandler.CreateMerchant)
	merchants.GET("", merchantHandler.GetTeamMerchants)
	merchants.GET("/:id", merchantHandler.GetMerchantByID)
	merchants.DELETE("/:id", merchantHandler.DeleteMerchant)

	categories := scoped.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetTeamCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	tags := scoped.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.GetTeamTags)
	tags.GET("/:id", tagHandler.GetTagByID)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	transactions := scoped.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTeamTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)

	balances := scoped.Group("/balances")
	balances.GET("/reconcile", balanceHandler.Reconcile)
	balances.GET("/:type/:id", balanceHandler.GetBalance)

	reports := scoped.Group("/reports")
	reports.GET("/:view", reportHandler.GetSummaries)
	reports.POST("/refresh", reportHandler.RefreshViews)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Ledgerly server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
