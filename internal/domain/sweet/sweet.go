package sweet

import (
	"errors"
	"time"
)

type Sweet struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound          = errors.New("sweet not found")
	ErrDuplicateName     = errors.New("sweet with this name already exists")
	ErrInsufficientStock = errors.New("insufficient quantity in stock")
)

// Price is a pointer so a literal 0.00 survives the required check.
type CreateSweetRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=120"`
	Category string   `json:"category" binding:"required,min=1,max=80"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=0"`
}

// all fields optional; nil means "leave untouched"
type UpdateSweetRequest struct {
	Name     *string  `json:"name" binding:"omitempty,min=1,max=120"`
	Category *string  `json:"category" binding:"omitempty,min=1,max=80"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=0"`
}

// Empty checks whether an update would touch anything at all.
func (r UpdateSweetRequest) Empty() bool {
	return r.Name == nil && r.Category == nil && r.Price == nil && r.Quantity == nil
}

type StockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// with pointers if optional, it will be nil
type SearchFilter struct {
	Name     *string
	Category *string
	MinPrice *float64
	MaxPrice *float64
}
