package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"laptop-inventory-backend/internal/audit"
	"laptop-inventory-backend/internal/auth"
	"laptop-inventory-backend/internal/config"
	"laptop-inventory-backend/internal/dashboard"
	"laptop-inventory-backend/internal/database"
	"laptop-inventory-backend/internal/inventory"
	"laptop-inventory-backend/internal/invoicing"
	"laptop-inventory-backend/internal/logger"
	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx := context.Background()

	st, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	feed, err := audit.NewFeed(ctx, st, zlog.Named("activity"), cfg.Inventory.ActivityLogLimit)
	if err != nil {
		zlog.Fatal("activity log could not be loaded", zap.Error(err))
	}

	policy := inventory.ExitStrict
	if cfg.Inventory.ExitPolicy == config.ExitPolicyPermissive {
		policy = inventory.ExitPermissive
	}
	inv, err := inventory.New(ctx, st, zlog.Named("inventory"),
		inventory.WithExitPolicy(policy),
		inventory.WithAlertAutoClear(cfg.Inventory.AlertAutoClear),
		inventory.WithActivity(feed),
	)
	if err != nil {
		zlog.Fatal("inventory could not be loaded", zap.Error(err))
	}
	if raised, err := inv.EvaluateAll(ctx); err != nil {
		zlog.Warn("startup alert evaluation not saved", zap.Error(err))
	} else {
		zlog.Info("startup alert evaluation", zap.Int("raised", len(raised)))
	}

	billing, err := invoicing.New(ctx, st, inv, zlog.Named("invoicing"),
		invoicing.WithTaxRate(cfg.Invoicing.TaxRate),
		invoicing.WithActivity(feed),
	)
	if err != nil {
		zlog.Fatal("invoices could not be loaded", zap.Error(err))
	}

	authn, err := auth.NewAuthenticator(cfg)
	if err != nil {
		zlog.Fatal("admin credentials", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			zlog.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(authn))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(authn.Secret()))
	protected.Use(auth.RequireRole(models.RoleAdmin))

	protected.Get("/auth/me", auth.MeHandler())

	// Catalog
	protected.Get("/models", inventory.ListModelsHandler(inv))
	protected.Get("/models/brands", inventory.ListBrandsHandler(inv))
	protected.Get("/models/:id", inventory.GetModelHandler(inv))
	protected.Post("/models", inventory.CreateModelHandler(inv))
	protected.Put("/models/:id", inventory.UpdateModelHandler(inv))

	// Inventory views
	protected.Get("/inventory", inventory.InventoryByModelHandler(inv))
	protected.Get("/inventory/summary", inventory.InventorySummaryHandler(inv))
	protected.Get("/inventory/export", inventory.ExportInventoryHandler(inv))
	protected.Get("/inventory/items", inventory.ListItemsHandler(inv))
	protected.Get("/inventory/stock/:modelId", inventory.CurrentStockHandler(inv))

	// Stock ledger
	protected.Post("/stock/entries", inventory.CreateStockEntryHandler(inv))
	protected.Post("/stock/exits", inventory.CreateStockExitHandler(inv))
	protected.Post("/stock/serials/parse", inventory.ParseSerialsHandler())
	protected.Get("/stock/movements", inventory.ListMovementsHandler(inv))
	protected.Get("/stock/movements/chart", dashboard.MovementChartHandler(inv))

	// Alerts
	protected.Get("/alerts", inventory.ListAlertsHandler(inv))
	protected.Post("/alerts/:id/dismiss", inventory.DismissAlertHandler(inv))
	protected.Post("/alerts/evaluate/:modelId", inventory.EvaluateAlertHandler(inv))

	// Invoicing
	protected.Get("/invoices", invoicing.ListInvoicesHandler(billing))
	protected.Get("/invoices/export", invoicing.ExportInvoicesHandler(billing))
	protected.Get("/invoices/:id", invoicing.GetInvoiceHandler(billing))
	protected.Post("/invoices", invoicing.CreateInvoiceHandler(billing))
	protected.Put("/invoices/:id/status", invoicing.UpdateInvoiceStatusHandler(billing))
	protected.Post("/invoices/:id/cancel", invoicing.CancelInvoiceHandler(billing))
	protected.Post("/invoices/:id/credit-notes", invoicing.CreateCreditNoteHandler(billing))
	protected.Get("/credit-notes", invoicing.ListCreditNotesHandler(billing))

	// Activity
	protected.Get("/activity", audit.ListActivityHandler(feed))

	zlog.Info("server starting", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func openStore(cfg *config.Config, zlog *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		zlog.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		db, err := database.Open(cfg, zlog.Named("database"))
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	}
}
