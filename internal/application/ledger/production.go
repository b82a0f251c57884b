package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
)

// Produce consume materiales según la receta y suma quantity unidades al producto.
//
// Primera fase: calcula lo requerido por línea (cantidad de receta × quantity), bloquea materiales
// y producto y reporta TODOS los materiales que no alcanzan. Segunda fase (solo si no hay faltantes):
// descuenta cada material, suma el producto y registra el evento en el historial.
func (l *StockLedger) Produce(ctx context.Context, userID string, req dto.ProduceRequest) (out *dto.ProductionResponse, err error) {
	defer l.track(OpProduce, time.Now(), &err)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var event *entity.ProductionEvent
	err = l.run(ctx, OpProduce, func(r TxRepos) error {
		recipe, err := r.Recipes.GetByID(ctx, req.RecipeID)
		if err != nil {
			return err
		}
		if recipe == nil || recipe.ProductID != req.ProductID {
			return domain.NewNotFoundError("recipe", req.RecipeID)
		}
		if !recipe.Usable() {
			return domain.NewValidationError("recipe_id", "la receta no tiene líneas")
		}

		qty := decimal.NewFromInt(req.Quantity)
		consume := inventory.StockChange{Apply: inventory.RecipeRequirements(recipe.Lines, qty)}
		yield := inventory.NewDeltaSet()
		yield.Add(req.ProductID, qty)
		produce := inventory.StockChange{Apply: yield}

		materials, err := prepare(ctx, r.Materials, entity.StockKindMaterial, consume)
		if err != nil {
			return err
		}
		products, err := prepare(ctx, r.Products, entity.StockKindProduct, produce)
		if err != nil {
			return err
		}

		now := l.timestamp()
		if err := commit(ctx, r.Materials, entity.StockKindMaterial, consume, materials, now); err != nil {
			return err
		}
		if err := commit(ctx, r.Products, entity.StockKindProduct, produce, products, now); err != nil {
			return err
		}

		event = &entity.ProductionEvent{
			ID:        uuid.New().String(),
			ProductID: req.ProductID,
			RecipeID:  recipe.ID,
			Quantity:  qty,
			Note:      req.Note,
			CreatedBy: userID,
			CreatedAt: now,
		}
		cost := make([]decimal.Decimal, 0, len(recipe.Lines))
		for _, d := range consume.Apply.Deltas() {
			required := d.Amount.Neg()
			price := materials[d.ItemID].UnitPrice
			event.Lines = append(event.Lines, &entity.ProductionLine{
				ID:           uuid.New().String(),
				ProductionID: event.ID,
				MaterialID:   d.ItemID,
				Quantity:     required,
				UnitPrice:    price,
			})
			cost = append(cost, inventory.LineAmount(required, price))
		}
		event.MaterialsCost = inventory.DocumentTotal(cost)
		return r.Productions.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("op", OpProduce).Str("id", event.ID).Str("product_id", event.ProductID).
		Int64("quantity", req.Quantity).Int("materials", len(event.Lines)).Msg("producción aplicada")
	return toProductionResponse(event), nil
}

// ListProductions historial de producción, opcionalmente filtrado por producto.
func (l *StockLedger) ListProductions(ctx context.Context, productID string, page dto.PageRequest) (out *dto.ProductionListResponse, err error) {
	defer l.track(OpListProductions, time.Now(), &err)
	if productID != "" {
		if err := dto.ValidateID("product_id", productID); err != nil {
			return nil, err
		}
	}
	page.DefaultPage()
	var items []*entity.ProductionEvent
	err = l.run(ctx, OpListProductions, func(r TxRepos) error {
		items, err = r.Productions.List(ctx, productID, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out = &dto.ProductionListResponse{
		Items: make([]dto.ProductionResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, ev := range items {
		out.Items = append(out.Items, *toProductionResponse(ev))
	}
	return out, nil
}

func toProductionResponse(ev *entity.ProductionEvent) *dto.ProductionResponse {
	out := &dto.ProductionResponse{
		ID:            ev.ID,
		ProductID:     ev.ProductID,
		RecipeID:      ev.RecipeID,
		Quantity:      ev.Quantity,
		MaterialsCost: ev.MaterialsCost,
		Note:          ev.Note,
		CreatedBy:     ev.CreatedBy,
		CreatedAt:     ev.CreatedAt,
		Consumed:      make([]dto.ConsumedMaterialResponse, 0, len(ev.Lines)),
	}
	for _, ln := range ev.Lines {
		out.Consumed = append(out.Consumed, dto.ConsumedMaterialResponse{
			MaterialID: ln.MaterialID,
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
		})
	}
	return out
}
