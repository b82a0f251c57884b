package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materias primas. El stock solo lo mueve el libro de stock.
type MaterialUseCase struct {
	repo repository.MaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create crea una materia prima con stock 0.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	material := &entity.Material{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Unit:      in.Unit,
		UnitPrice: in.UnitPrice,
		Stock:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene una materia prima por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// Update cambia nombre, unidad o precio. El nuevo precio aplica a las entradas futuras.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	material, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Unit != nil {
		material.Unit = *in.Unit
	}
	if in.UnitPrice != nil {
		material.UnitPrice = *in.UnitPrice
	}
	material.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// List lista materias primas por nombre con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.MaterialListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina una materia prima. Devuelve ErrConflict si está referenciada.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	if err := dto.ValidateID("id", id); err != nil {
		return err
	}
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(entity.StockKindMaterial, id)
	}
	return err
}

func (uc *MaterialUseCase) get(ctx context.Context, id string) (*entity.Material, error) {
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.NewNotFoundError(entity.StockKindMaterial, id)
	}
	return material, nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:        m.ID,
		Name:      m.Name,
		Unit:      m.Unit,
		UnitPrice: m.UnitPrice,
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
