package main

import (
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"loan-manager-backend/internal/adapter/events"
	httpadp "loan-manager-backend/internal/adapter/http"
	"loan-manager-backend/internal/adapter/middleware"
	"loan-manager-backend/internal/adapter/repository/mysql"
	"loan-manager-backend/internal/config"
	loandomain "loan-manager-backend/internal/domain/loan"
	"loan-manager-backend/internal/gateway"
	"loan-manager-backend/internal/infrastructure/cache"
	"loan-manager-backend/internal/infrastructure/db"
	"loan-manager-backend/internal/observability"
	"loan-manager-backend/internal/ratepolicy"
	loanuc "loan-manager-backend/internal/usecase/loan"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := observability.NewLogger(os.Getenv("APP_ENV"))

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(&loandomain.Loan{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	collateral, err := gateway.NewCollateralClient(cfg.CollateralURL)
	if err != nil {
		log.Fatalf("collateral gateway: %v", err)
	}
	pool, err := gateway.NewPoolClient(cfg.PoolURL)
	if err != nil {
		log.Fatalf("pool gateway: %v", err)
	}
	token, err := gateway.NewTokenClient(cfg.TokenURL)
	if err != nil {
		log.Fatalf("token gateway: %v", err)
	}

	var rates ratepolicy.Policy
	if cfg.FixedRateBps > 0 {
		rates = ratepolicy.Fixed{Bps: cfg.FixedRateBps}
	} else {
		rates = ratepolicy.Tiered{Scores: collateral}
	}

	uc := loanuc.NewUsecase(
		mysql.NewGormUoW(gdb),
		rates,
		collateral,
		pool,
		token,
		events.NewRedisPublisher(rdb, cfg.EventsChannel, logger),
		loanuc.Identities{OracleID: cfg.OracleID, PoolAccount: cfg.PoolAccount},
		logger,
	)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	api := e.Group("",
		middleware.RequireCaller(),
		middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)
	api.POST("/loans", lh.RequestLoan)
	api.POST("/loans/:loan_id/approve", lh.ApproveLoan)
	api.POST("/loans/:loan_id/payments", lh.MakePayment)
	api.POST("/loans/:loan_id/remittances", lh.ProcessRemittance)
	api.POST("/loans/:loan_id/missed", lh.MarkMissed)
	api.GET("/loans/:loan_id", lh.GetLoan)
	api.GET("/borrowers/:borrower_id/loans", lh.ListBorrowerLoans)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
