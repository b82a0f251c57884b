package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLineInput línea de entrada: el precio no lo envía el cliente, se toma del material.
type ReceiptLineInput struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" validate:"positive"`
}

// CreateReceiptRequest body para POST /api/receipts.
type CreateReceiptRequest struct {
	Note  string             `json:"note" validate:"max=1000"`
	Lines []ReceiptLineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateReceiptRequest body para PUT /api/receipts/:id.
// Cada campo es explícitamente presente (no nil) o ausente (nil); lines vacío presente es inválido.
type UpdateReceiptRequest struct {
	Note  *string             `json:"note" validate:"omitempty,max=1000"`
	Lines *[]ReceiptLineInput `json:"lines" validate:"omitempty,min=1,dive"`
}

// IssueLineInput línea de salida: el precio es el precio de venta vigente del producto.
type IssueLineInput struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"positive"`
}

// CreateIssueRequest body para POST /api/issues.
type CreateIssueRequest struct {
	Note  string           `json:"note" validate:"max=1000"`
	Lines []IssueLineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateIssueRequest body para PUT /api/issues/:id.
type UpdateIssueRequest struct {
	Note  *string           `json:"note" validate:"omitempty,max=1000"`
	Lines *[]IssueLineInput `json:"lines" validate:"omitempty,min=1,dive"`
}

// DocumentCreatedResponse salida de creación de entrada/salida.
type DocumentCreatedResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// ReceiptLineResponse línea de una entrada.
type ReceiptLineResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// ReceiptDetailResponse cabecera + líneas.
type ReceiptDetailResponse struct {
	ID        string                `json:"id"`
	Code      string                `json:"code"`
	Note      string                `json:"note"`
	Total     decimal.Decimal       `json:"total"`
	CreatedBy string                `json:"created_by"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Lines     []ReceiptLineResponse `json:"lines"`
}

// IssueLineResponse línea de una salida.
type IssueLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// IssueDetailResponse cabecera + líneas.
type IssueDetailResponse struct {
	ID        string              `json:"id"`
	Code      string              `json:"code"`
	Note      string              `json:"note"`
	Total     decimal.Decimal     `json:"total"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Lines     []IssueLineResponse `json:"lines"`
}

// DocumentSummaryResponse fila de listado (sin líneas).
type DocumentSummaryResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Note      string          `json:"note"`
	Total     decimal.Decimal `json:"total"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// DocumentListResponse lista paginada de entradas o salidas.
type DocumentListResponse struct {
	Items []DocumentSummaryResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// ProduceRequest body para POST /api/production. Quantity es entero positivo.
type ProduceRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	RecipeID  string `json:"recipe_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
	Note      string `json:"note" validate:"max=1000"`
}

// ConsumedMaterialResponse material descontado por una producción.
type ConsumedMaterialResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// ProductionResponse resultado de una producción aplicada.
type ProductionResponse struct {
	ID            string                     `json:"id"`
	ProductID     string                     `json:"product_id"`
	RecipeID      string                     `json:"recipe_id"`
	Quantity      decimal.Decimal            `json:"quantity"`
	MaterialsCost decimal.Decimal            `json:"materials_cost"`
	Note          string                     `json:"note,omitempty"`
	CreatedBy     string                     `json:"created_by"`
	CreatedAt     time.Time                  `json:"created_at"`
	Consumed      []ConsumedMaterialResponse `json:"consumed"`
}

// ProductionListResponse historial paginado.
type ProductionListResponse struct {
	Items []ProductionResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ShortageResponse línea deficitaria en respuestas 409.
type ShortageResponse struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Unit      string          `json:"unit"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Missing   decimal.Decimal `json:"missing"`
}

// InsufficientStockResponse cuerpo de error con el reporte completo de faltantes.
type InsufficientStockResponse struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Shortages []ShortageResponse `json:"shortages"`
}
