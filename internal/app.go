// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	router "cryptonel-ledger/internal/api"
	"cryptonel-ledger/internal/api/handler"
	"cryptonel-ledger/internal/config"
	"cryptonel-ledger/internal/domain"
	"cryptonel-ledger/internal/notify"
	"cryptonel-ledger/internal/ratelimit"
	"cryptonel-ledger/internal/repository"
	"cryptonel-ledger/internal/repository/memory"
	"cryptonel-ledger/internal/repository/postgres"
	"cryptonel-ledger/internal/service"
	"cryptonel-ledger/internal/util"
	"cryptonel-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB // nil when the memory driver is active

	// Repositories
	AccountRepository  repository.AccountRepository
	LedgerRepository   repository.LedgerRepository
	SettingsRepository repository.SettingsRepository

	// Services
	TransferService service.TransferService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	util.InitLogger()
	app.Logger = util.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.", "store_driver", cfg.StoreDriver)

	var (
		dbBeginner db.TxBeginner
		dbExecutor repository.DBExecutor
		beginTx    db.BeginTxFunc
		commitTx   db.CommitTxFunc
		rollbackTx db.RollbackTxFunc
	)

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		database, err := db.NewPostgresDB(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		app.Logger.Info("Database connection established.")

		app.AccountRepository = postgres.NewAccountRepository(database)
		app.LedgerRepository = postgres.NewLedgerRepository(database)
		app.SettingsRepository = postgres.NewSettingsRepository(database)
		dbBeginner = database
		dbExecutor = database
		beginTx = db.BeginTx
		commitTx = db.CommitTx
		rollbackTx = db.RollbackTx

	case config.StoreDriverMemory:
		store := memory.NewStore()
		store.SetTransferSettings(defaultTransferSettings())
		app.AccountRepository = store
		app.LedgerRepository = store
		app.SettingsRepository = store
		dbExecutor = memory.Executor()
		beginTx = memory.BeginTx
		commitTx = memory.CommitTx
		rollbackTx = memory.RollbackTx

	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	app.Logger.Info("Repositories initialized.")

	app.TransferService = service.NewTransferService(
		dbBeginner,
		dbExecutor,
		app.AccountRepository,
		app.LedgerRepository,
		app.SettingsRepository,
		ratelimit.New(),
		notify.NewLogSink(app.Logger),
		app.Logger,
		beginTx,
		commitTx,
		rollbackTx,
	)
	app.Logger.Info("Services initialized.")

	transferHandler := handler.NewTransferHandler(app.TransferService, app.Logger)
	app.HTTPHandler = router.NewRouter(transferHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// defaultTransferSettings is the policy the memory driver starts with.
func defaultTransferSettings() domain.TransferSettings {
	return domain.TransferSettings{
		TaxEnabled:             true,
		TaxRate:                decimal.RequireFromString("0.01"),
		MinAmount:              decimal.RequireFromString("0.25"),
		MaxAmount:              decimal.RequireFromString("1000"),
		MaxTransfersPerWindow:  3,
		RateLimitWindowMinutes: 5,
		Premium: domain.PremiumSettings{
			TaxExempt:       true,
			RateLimitExempt: true,
		},
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
