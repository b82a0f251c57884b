package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

const resourceRecipe = "recipe"

// RecipeUseCase casos de uso para fórmulas de producción.
type RecipeUseCase struct {
	repo      repository.RecipeRepository
	materials repository.MaterialRepository
	products  repository.ProductRepository
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(repo repository.RecipeRepository, materials repository.MaterialRepository, products repository.ProductRepository) *RecipeUseCase {
	return &RecipeUseCase{repo: repo, materials: materials, products: products}
}

// Create crea una receta con sus líneas. Una receta sin líneas se puede guardar pero no producir.
func (uc *RecipeUseCase) Create(ctx context.Context, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError(entity.StockKindProduct, in.ProductID)
	}
	now := time.Now().UTC()
	recipe := &entity.Recipe{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	recipe.Lines, err = uc.buildLines(ctx, recipe.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// GetByID obtiene una receta con sus líneas.
func (uc *RecipeUseCase) GetByID(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	recipe, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// Update cambia el nombre y/o reemplaza el conjunto completo de líneas.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	recipe, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		recipe.Name = *in.Name
	}
	var lines []entity.RecipeLine
	if in.Lines != nil {
		lines, err = uc.buildLines(ctx, recipe.ID, *in.Lines)
		if err != nil {
			return nil, err
		}
		if lines == nil {
			lines = []entity.RecipeLine{}
		}
		recipe.Lines = lines
	}
	recipe.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, recipe, lines); err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// List lista recetas, opcionalmente de un solo producto.
func (uc *RecipeUseCase) List(ctx context.Context, productID string, page dto.PageRequest) (*dto.RecipeListResponse, error) {
	if productID != "" {
		if err := dto.ValidateID("product_id", productID); err != nil {
			return nil, err
		}
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRecipeResponse(r))
	}
	return &dto.RecipeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina una receta. Devuelve ErrConflict si ya se usó en una producción.
func (uc *RecipeUseCase) Delete(ctx context.Context, id string) error {
	if err := dto.ValidateID("id", id); err != nil {
		return err
	}
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(resourceRecipe, id)
	}
	return err
}

func (uc *RecipeUseCase) get(ctx context.Context, id string) (*entity.Recipe, error) {
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.NewNotFoundError(resourceRecipe, id)
	}
	return recipe, nil
}

// buildLines verifica que cada material exista y copia su unidad cuando la línea no trae una.
func (uc *RecipeUseCase) buildLines(ctx context.Context, recipeID string, in []dto.RecipeLineInput) ([]entity.RecipeLine, error) {
	var lines []entity.RecipeLine
	for i, ln := range in {
		material, err := uc.materials.GetByID(ctx, ln.MaterialID)
		if err != nil {
			return nil, err
		}
		if material == nil {
			return nil, domain.NewNotFoundError(entity.StockKindMaterial, ln.MaterialID)
		}
		unit := ln.Unit
		if unit == "" {
			unit = material.Unit
		}
		lines = append(lines, entity.RecipeLine{
			ID:         uuid.New().String(),
			RecipeID:   recipeID,
			MaterialID: ln.MaterialID,
			Quantity:   ln.Quantity,
			Unit:       unit,
			Position:   i + 1,
		})
	}
	return lines, nil
}

func toRecipeResponse(r *entity.Recipe) *dto.RecipeResponse {
	out := &dto.RecipeResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Lines:     make([]dto.RecipeLineResponse, 0, len(r.Lines)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, ln := range r.Lines {
		out.Lines = append(out.Lines, dto.RecipeLineResponse{
			ID:         ln.ID,
			MaterialID: ln.MaterialID,
			Quantity:   ln.Quantity,
			Unit:       ln.Unit,
		})
	}
	return out
}
