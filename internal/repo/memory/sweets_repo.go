package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/candyhaus/sweetshop/internal/domain/sweet"
)

// SweetsRepo is the in-memory counterpart of the postgres repo. A single
// mutex serializes every mutation, which gives purchase/restock the same
// atomicity the SQL conditional update provides.
type SweetsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]sweet.Sweet
}

func NewSweetsRepo() *SweetsRepo {
	return &SweetsRepo{
		items: make(map[int64]sweet.Sweet),
	}
}

func (r *SweetsRepo) Create(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == req.Name {
			return sweet.Sweet{}, sweet.ErrDuplicateName
		}
	}

	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	r.nextID++
	now := time.Now().UTC()

	s := sweet.Sweet{
		ID:        r.nextID,
		Name:      req.Name,
		Category:  req.Category,
		Price:     *req.Price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.items[s.ID] = s

	return s, nil
}

func (r *SweetsRepo) List(ctx context.Context) ([]sweet.Sweet, error) {
	return r.Search(ctx, sweet.SearchFilter{})
}

func (r *SweetsRepo) Search(ctx context.Context, filter sweet.SearchFilter) ([]sweet.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sweet.Sweet, 0, len(r.items))

	for _, s := range r.items {
		if filter.Name != nil && !strings.Contains(s.Name, *filter.Name) {
			continue
		}
		if filter.Category != nil && s.Category != *filter.Category {
			continue
		}
		if filter.MinPrice != nil && s.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && s.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, s)
	}

	// newest first, id breaks creation-time ties
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *SweetsRepo) GetByID(ctx context.Context, id int64) (sweet.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	return s, nil
}

func (r *SweetsRepo) Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	if req.Empty() {
		return s, nil
	}

	if req.Name != nil {
		for otherID, other := range r.items {
			if otherID != id && other.Name == *req.Name {
				return sweet.Sweet{}, sweet.ErrDuplicateName
			}
		}
		s.Name = *req.Name
	}
	if req.Category != nil {
		s.Category = *req.Category
	}
	if req.Price != nil {
		s.Price = *req.Price
	}
	if req.Quantity != nil {
		s.Quantity = *req.Quantity
	}

	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s, nil
}

func (r *SweetsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return sweet.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *SweetsRepo) Purchase(ctx context.Context, id int64, quantity int) (sweet.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	if s.Quantity < quantity {
		return sweet.Sweet{}, sweet.ErrInsufficientStock
	}

	s.Quantity -= quantity
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s, nil
}

func (r *SweetsRepo) Restock(ctx context.Context, id int64, quantity int) (sweet.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]

	if !ok {
		return sweet.Sweet{}, sweet.ErrNotFound
	}

	s.Quantity += quantity
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s, nil
}
