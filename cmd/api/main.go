package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	httpadp "loan-ledger/internal/adapter/http"
	fbidentity "loan-ledger/internal/adapter/identity/firebase"
	"loan-ledger/internal/adapter/identity/local"
	mw "loan-ledger/internal/adapter/middleware"
	fsrepo "loan-ledger/internal/adapter/repository/firestore"
	"loan-ledger/internal/adapter/repository/mysql"
	"loan-ledger/internal/config"
	"loan-ledger/internal/domain/identity"
	domain "loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/uow"
	"loan-ledger/internal/infrastructure/cache"
	"loan-ledger/internal/infrastructure/db"
	"loan-ledger/internal/infrastructure/firebase"
	"loan-ledger/internal/usecase/admin"
	"loan-ledger/internal/usecase/auth"
	"loan-ledger/internal/usecase/ledger"
	loanuc "loan-ledger/internal/usecase/loan"
)

type store struct {
	loans domain.Repository
	txs   domain.TransactionRepository
	uow   uow.UnitOfWork
	sql   *gorm.DB
}

func main() {
	logger := log.New("loan-ledger")
	logger.SetLevel(log.INFO)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fb *firebase.Clients
	needFirebase := cfg.StoreDriver == config.StoreFirestore || cfg.IdentityProvider == config.IdentityFirebase
	if needFirebase {
		fb, err = firebase.NewClients(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile,
			cfg.StoreDriver == config.StoreFirestore)
		if err != nil {
			logger.Fatalf("firebase: %v", err)
		}
		defer fb.Close()
	}

	st, err := openStore(cfg, fb)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}

	var provider identity.Provider
	var signIn httpadp.PasswordSignIn
	switch cfg.IdentityProvider {
	case config.IdentityLocal:
		p, err := local.NewProvider(st.sql, local.Options{
			Secret:     cfg.LocalAuthSecret,
			Issuer:     cfg.LocalAuthIssuer,
			BcryptCost: cfg.BcryptCost,
		})
		if err != nil {
			logger.Fatalf("identity: %v", err)
		}
		provider, signIn = p, p
	default:
		provider = fbidentity.New(fb.Auth)
	}

	var idem echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warnj(log.JSON{"msg": "redis unavailable, idempotency disabled", "addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			defer rdb.Close()
			idem = mw.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), logger)
		}
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency disabled")
	}

	gate := mw.DefaultGateConfig()
	gate.CookieName = cfg.SessionCookieName
	gate.SecureCookie = cfg.SecureCookie

	reads := loanuc.NewUsecase(st.loans, st.txs, logger)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e, httpadp.Server{
		Provider:    provider,
		Gate:        gate,
		Idempotency: idem,
		Logger:      logger,
		Health:      httpadp.NewHandler(),
		Auth:        httpadp.NewAuthHandler(auth.NewUsecase(provider, cfg.SessionTTL(), logger), gate, signIn),
		Loans:       httpadp.NewLoanHandler(reads),
		Admin: httpadp.NewAdminHandler(reads,
			ledger.NewUsecase(st.uow, provider, logger),
			admin.NewUsecase(provider, logger)),
	})

	go func() {
		addr := ":" + cfg.AppPort
		logger.Infof("listening on %s (store=%s identity=%s)", addr, cfg.StoreDriver, cfg.IdentityProvider)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func openStore(cfg *config.Config, fb *firebase.Clients) (*store, error) {
	var gdb *gorm.DB
	var err error
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		return &store{
			loans: fsrepo.NewLoanRepository(fb.Firestore),
			txs:   fsrepo.NewTransactionRepository(fb.Firestore),
			uow:   fsrepo.NewUoW(fb.Firestore),
		}, nil
	case config.StoreSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		// no migration files for sqlite; gorm creates the schema
		if err := db.AutoMigrate(gdb, &local.Account{}); err != nil {
			return nil, err
		}
	default:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
	}
	return &store{
		loans: mysql.NewLoanRepository(gdb),
		txs:   mysql.NewTransactionRepository(gdb),
		uow:   mysql.NewGormUoW(gdb),
		sql:   gdb,
	}, nil
}
