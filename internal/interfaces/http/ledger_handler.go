package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/application/report"
)

// LedgerHandler entradas (NK), salidas (XK) y producción. Todas las escrituras pasan por el libro de stock.
type LedgerHandler struct {
	ledger  *ledger.StockLedger
	reports *report.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(l *ledger.StockLedger, reports *report.UseCase) *LedgerHandler {
	return &LedgerHandler{ledger: l, reports: reports}
}

// ── Entradas ──────────────────────────────────────────────────────────────────

// CreateReceipt godoc
// @Summary      Registrar entrada de materiales
// @Description  Suma stock a cada material con su precio vigente y asigna el código NKyyyymmddNNN.
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "Nota y líneas"
// @Success      201   {object}  dto.DocumentCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *LedgerHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.CreateReceipt(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReceipts godoc
// @Summary      Listar entradas
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.DocumentListResponse
// @Router       /api/receipts [get]
func (h *LedgerHandler) ListReceipts(c *fiber.Ctx) error {
	out, err := h.ledger.ListReceipts(c.Context(), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetReceipt godoc
// @Summary      Detalle de una entrada
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {object}  dto.ReceiptDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *LedgerHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.ledger.GetReceiptDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateReceipt godoc
// @Summary      Modificar entrada
// @Description  Con lines revierte las líneas anteriores y aplica las nuevas en la misma transacción.
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la entrada"
// @Param        body  body  dto.UpdateReceiptRequest  true  "Nota y/o líneas"
// @Success      200   {object}  dto.ReceiptDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/receipts/{id} [put]
func (h *LedgerHandler) UpdateReceipt(c *fiber.Ctx) error {
	var in dto.UpdateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.UpdateReceipt(c.Context(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteReceipt godoc
// @Summary      Eliminar entrada (revierte stock)
// @Tags         receipts
// @Security     Bearer
// @Param        id   path  string  true  "ID de la entrada"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/receipts/{id} [delete]
func (h *LedgerHandler) DeleteReceipt(c *fiber.Ctx) error {
	if err := h.ledger.DeleteReceipt(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReceiptPDF godoc
// @Summary      Comprobante PDF de una entrada
// @Tags         receipts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la entrada"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/pdf [get]
func (h *LedgerHandler) ReceiptPDF(c *fiber.Ctx) error {
	b, name, err := h.reports.ReceiptVoucher(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return sendFile(c, "application/pdf", name, b)
}

// ── Salidas ───────────────────────────────────────────────────────────────────

// CreateIssue godoc
// @Summary      Registrar salida de productos
// @Description  Descuenta stock con el precio de venta vigente y asigna el código XKyyyymmddNNN.
// @Tags         issues
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIssueRequest  true  "Nota y líneas"
// @Success      201   {object}  dto.DocumentCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/issues [post]
func (h *LedgerHandler) CreateIssue(c *fiber.Ctx) error {
	var in dto.CreateIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.CreateIssue(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListIssues godoc
// @Summary      Listar salidas
// @Tags         issues
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.DocumentListResponse
// @Router       /api/issues [get]
func (h *LedgerHandler) ListIssues(c *fiber.Ctx) error {
	out, err := h.ledger.ListIssues(c.Context(), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetIssue godoc
// @Summary      Detalle de una salida
// @Tags         issues
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la salida"
// @Success      200  {object}  dto.IssueDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/issues/{id} [get]
func (h *LedgerHandler) GetIssue(c *fiber.Ctx) error {
	out, err := h.ledger.GetIssueDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateIssue godoc
// @Summary      Modificar salida
// @Tags         issues
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la salida"
// @Param        body  body  dto.UpdateIssueRequest  true  "Nota y/o líneas"
// @Success      200   {object}  dto.IssueDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/issues/{id} [put]
func (h *LedgerHandler) UpdateIssue(c *fiber.Ctx) error {
	var in dto.UpdateIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.UpdateIssue(c.Context(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteIssue godoc
// @Summary      Eliminar salida (devuelve stock)
// @Tags         issues
// @Security     Bearer
// @Param        id   path  string  true  "ID de la salida"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/issues/{id} [delete]
func (h *LedgerHandler) DeleteIssue(c *fiber.Ctx) error {
	if err := h.ledger.DeleteIssue(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IssuePDF godoc
// @Summary      Comprobante PDF de una salida
// @Tags         issues
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la salida"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/issues/{id}/pdf [get]
func (h *LedgerHandler) IssuePDF(c *fiber.Ctx) error {
	b, name, err := h.reports.IssueVoucher(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return sendFile(c, "application/pdf", name, b)
}

// ── Producción ────────────────────────────────────────────────────────────────

// Produce godoc
// @Summary      Producir
// @Description  Verifica todos los materiales de la receta × cantidad; si alguno falta no modifica nada.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProduceRequest  true  "Producto, receta y cantidad"
// @Success      201   {object}  dto.ProductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/production [post]
func (h *LedgerHandler) Produce(c *fiber.Ctx) error {
	var in dto.ProduceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.Produce(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProductions godoc
// @Summary      Historial de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200         {object}  dto.ProductionListResponse
// @Router       /api/production [get]
func (h *LedgerHandler) ListProductions(c *fiber.Ctx) error {
	out, err := h.ledger.ListProductions(c.Context(), c.Query("product_id"), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ── Reportes ──────────────────────────────────────────────────────────────────

// StockReport godoc
// @Summary      Reporte de stock en Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/reports/stock.xlsx [get]
func (h *LedgerHandler) StockReport(c *fiber.Ctx) error {
	b, name, err := h.reports.StockReport(c.Context())
	if err != nil {
		return err
	}
	return sendFile(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, b)
}

func sendFile(c *fiber.Ctx, contentType, filename string, b []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(b)
}
