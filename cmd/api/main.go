package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/application/report"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	infraexcel "github.com/jhoicas/Produccion-api/internal/infrastructure/excel"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Produccion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// devJWTSecret solo se usa fuera de production cuando JWT_SECRET no está definido.
const devJWTSecret = "dev-secret-no-usar-en-produccion"

// backend repositorios y runner transaccional del almacenamiento elegido.
type backend struct {
	tx        ledger.TxRunner
	users     repository.UserRepository
	materials repository.MaterialRepository
	products  repository.ProductRepository
	recipes   repository.RecipeRepository
	stock     report.StockSource
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: usando secreto de desarrollo")
		cfg.JWT.Secret = devJWTSecret
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer be.close()

	var ledgerMetrics *metrics.LedgerMetrics
	ledgerOpts := []ledger.Option{ledger.WithLocation(loc)}
	if cfg.Metrics.Enabled {
		ledgerMetrics = metrics.NewLedgerMetrics()
		ledgerOpts = append(ledgerOpts, ledger.WithObserver(ledgerMetrics))
	}
	stockLedger := ledger.NewStockLedger(be.tx, log, ledgerOpts...)

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	} else if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
	}

	reportUC := report.NewUseCase(
		stockLedger, be.stock,
		infrapdf.NewMarotoVoucherGenerator(cfg.App.Name),
		infraexcel.NewStockReportWriter(),
		loc,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(cfg.App.IsProduction(), log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Produccion API",
	}))

	if ledgerMetrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(ledgerMetrics.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		UserUC:     usecase.NewUserUseCase(be.users),
		MaterialUC: usecase.NewMaterialUseCase(be.materials),
		ProductUC:  usecase.NewProductUseCase(be.products),
		RecipeUC:   usecase.NewRecipeUseCase(be.recipes, be.materials, be.products),
		Ledger:     stockLedger,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend conecta PostgreSQL (aplicando migraciones si corresponde) o crea el store en memoria.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			tx:        store,
			users:     store.Users(),
			materials: store.Materials(),
			products:  store.Products(),
			recipes:   store.Recipes(),
			stock:     store,
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		users:     postgres.NewUserRepository(pool),
		materials: postgres.NewMaterialRepository(pool),
		products:  postgres.NewProductRepository(pool),
		recipes:   postgres.NewRecipeRepository(pool),
		stock:     postgres.NewStockReader(pool),
		close:     pool.Close,
	}, nil
}
