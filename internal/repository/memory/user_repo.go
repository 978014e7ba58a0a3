package memory

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/repository"
)

// UserRepo keeps accounts in process memory (dev mode).
type UserRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]model.User
	byName map[string]uuid.UUID
}

// NewUserRepo constructs an empty user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:   make(map[uuid.UUID]model.User),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	r.byID[u.ID] = *u
	r.byName[u.Username] = u.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

var _ repository.UserRepository = (*UserRepo)(nil)
