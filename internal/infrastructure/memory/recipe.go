package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación en memoria de RecipeRepository.
type RecipeRepo struct{ acc access }

func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.recipes[recipe.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := checkRecipeRefs(d, recipe.ProductID, recipe.Lines); err != nil {
			return err
		}
		d.recipes[recipe.ID] = copyRecipe(recipe)
		return nil
	})
}

func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.acc.do(func(d *dataset) error {
		if rc, ok := d.recipes[id]; ok {
			out = copyRecipe(rc)
		}
		return nil
	})
	return out, err
}

func (r *RecipeRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	err := r.acc.do(func(d *dataset) error {
		for _, rc := range d.recipes {
			if productID == "" || rc.ProductID == productID {
				out = append(out, copyRecipe(rc))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), err
}

// Update reemplaza nombre y, si lines != nil, todas las líneas.
func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe, lines []entity.RecipeLine) error {
	return r.acc.do(func(d *dataset) error {
		cur, ok := d.recipes[recipe.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if lines != nil {
			if err := checkRecipeRefs(d, cur.ProductID, lines); err != nil {
				return err
			}
			cur.Lines = append([]entity.RecipeLine(nil), lines...)
		}
		cur.Name, cur.UpdatedAt = recipe.Name, recipe.UpdatedAt
		return nil
	})
}

// Delete las producciones guardan recipe_id: una receta usada no se puede borrar.
func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.recipes[id]; !ok {
			return domain.ErrNotFound
		}
		for _, ev := range d.productions {
			if ev.RecipeID == id {
				return domain.ErrConflict
			}
		}
		delete(d.recipes, id)
		return nil
	})
}

// checkRecipeRefs equivalente a las claves foráneas de recipes/recipe_lines.
func checkRecipeRefs(d *dataset, productID string, lines []entity.RecipeLine) error {
	if _, ok := d.products[productID]; !ok {
		return domain.ErrConflict
	}
	for _, ln := range lines {
		if _, ok := d.materials[ln.MaterialID]; !ok {
			return domain.ErrConflict
		}
	}
	return nil
}
