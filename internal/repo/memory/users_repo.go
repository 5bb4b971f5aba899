package memory

import (
	"context"
	"sync"
	"time"

	"github.com/candyhaus/sweetshop/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// email conflict wins when both collide, matching the postgres repo
	for _, existing := range r.items {
		if existing.Email == email {
			return user.User{}, user.ErrDuplicateEmail
		}
	}
	for _, existing := range r.items {
		if existing.Username == username {
			return user.User{}, user.ErrDuplicateUsername
		}
	}

	r.nextID++

	u := user.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}
