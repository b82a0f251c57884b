package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/application/report"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	MaterialUC *usecase.MaterialUseCase
	ProductUC  *usecase.ProductUseCase
	RecipeUC   *usecase.RecipeUseCase
	Ledger     *ledger.StockLedger
	ReportUC   *report.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Lecturas: cualquier usuario autenticado; escrituras: admin.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Materials
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials := protected.Group("/materials")
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Post("/", adminOnly, materialHandler.Create)
	materials.Put("/:id", adminOnly, materialHandler.Update)
	materials.Delete("/:id", adminOnly, materialHandler.Delete)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Recipes
	recipeHandler := NewRecipeHandler(deps.RecipeUC)
	recipes := protected.Group("/recipes")
	recipes.Get("/", recipeHandler.List)
	recipes.Get("/:id", recipeHandler.GetByID)
	recipes.Post("/", adminOnly, recipeHandler.Create)
	recipes.Put("/:id", adminOnly, recipeHandler.Update)
	recipes.Delete("/:id", adminOnly, recipeHandler.Delete)

	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.ReportUC)

	// Receipts (NK)
	receipts := protected.Group("/receipts")
	receipts.Get("/", ledgerHandler.ListReceipts)
	receipts.Get("/:id", ledgerHandler.GetReceipt)
	receipts.Get("/:id/pdf", ledgerHandler.ReceiptPDF)
	receipts.Post("/", adminOnly, ledgerHandler.CreateReceipt)
	receipts.Put("/:id", adminOnly, ledgerHandler.UpdateReceipt)
	receipts.Delete("/:id", adminOnly, ledgerHandler.DeleteReceipt)

	// Issues (XK)
	issues := protected.Group("/issues")
	issues.Get("/", ledgerHandler.ListIssues)
	issues.Get("/:id", ledgerHandler.GetIssue)
	issues.Get("/:id/pdf", ledgerHandler.IssuePDF)
	issues.Post("/", adminOnly, ledgerHandler.CreateIssue)
	issues.Put("/:id", adminOnly, ledgerHandler.UpdateIssue)
	issues.Delete("/:id", adminOnly, ledgerHandler.DeleteIssue)

	// Production
	production := protected.Group("/production")
	production.Get("/", ledgerHandler.ListProductions)
	production.Post("/", adminOnly, ledgerHandler.Produce)

	// Reports
	protected.Get("/reports/stock.xlsx", ledgerHandler.StockReport)
}
