package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria. El email es único sin distinguir mayúsculas.
type UserRepo struct{ acc access }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.acc.do(func(d *dataset) error {
		for _, other := range d.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		c := *u
		d.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.do(func(d *dataset) error {
		if u, ok := d.users[id]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.do(func(d *dataset) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				c := *u
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}
