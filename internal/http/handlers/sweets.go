package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/candyhaus/sweetshop/internal/cache"
	"github.com/candyhaus/sweetshop/internal/config"
	"github.com/candyhaus/sweetshop/internal/domain/sweet"
	"github.com/gin-gonic/gin"
)

const listCacheKey = "sweets:list"

type SweetsStore interface {
	Create(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error)
	List(ctx context.Context) ([]sweet.Sweet, error)
	Search(ctx context.Context, filter sweet.SearchFilter) ([]sweet.Sweet, error)
	GetByID(ctx context.Context, id int64) (sweet.Sweet, error)
	Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error)
	Delete(ctx context.Context, id int64) error
	Purchase(ctx context.Context, id int64, quantity int) (sweet.Sweet, error)
	Restock(ctx context.Context, id int64, quantity int) (sweet.Sweet, error)
}

type SweetsHandler struct {
	repo  SweetsStore
	cache cache.Store
}

func NewSweetsHandler(repo SweetsStore) *SweetsHandler {
	return &SweetsHandler{repo: repo}
}

func NewSweetsHandlerWithCache(repo SweetsStore, c cache.Store) *SweetsHandler {
	return &SweetsHandler{repo: repo, cache: c}
}

// every mutation goes through here; a stale catalogue list is worse than a
// cold cache
func (h *SweetsHandler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, listCacheKey)
	}
}

func sweetIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "invalid_id", "sweet id must be a positive integer")
		return 0, false
	}

	return id, true
}

func (h *SweetsHandler) CreateSweet(ctx *gin.Context) {
	var req sweet.CreateSweetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, sweet.ErrDuplicateName) {
			RespondBadRequest(ctx, "duplicate_name", "Sweet with this name already exists.")
			return
		}
		RespondInternal(ctx, "Could not create sweet")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusCreated, s)
}

func (h *SweetsHandler) ListSweets(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.cache != nil {
		if body, ok := h.cache.Get(cctx, listCacheKey); ok {
			WriteJSONWithETag(ctx, http.StatusOK, body)
			return
		}
	}

	sweets, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list sweets")
		return
	}

	body, err := json.Marshal(sweets)

	if err != nil {
		RespondInternal(ctx, "Could not list sweets")
		return
	}

	if h.cache != nil {
		h.cache.Set(cctx, listCacheKey, body)
	}

	WriteJSONWithETag(ctx, http.StatusOK, body)
}

func (h *SweetsHandler) SearchSweets(ctx *gin.Context) {
	filter, ok := searchFilterFromQuery(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	sweets, err := h.repo.Search(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not search sweets")
		return
	}

	ctx.JSON(http.StatusOK, sweets)
}

func searchFilterFromQuery(ctx *gin.Context) (sweet.SearchFilter, bool) {
	var filter sweet.SearchFilter

	if name := ctx.Query("name"); name != "" {
		filter.Name = &name
	}

	if category := ctx.Query("category"); category != "" {
		filter.Category = &category
	}

	if raw := ctx.Query("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)

		if err != nil {
			RespondBadRequest(ctx, "invalid_filter", "minPrice must be a number")
			return sweet.SearchFilter{}, false
		}
		filter.MinPrice = &min
	}

	if raw := ctx.Query("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)

		if err != nil {
			RespondBadRequest(ctx, "invalid_filter", "maxPrice must be a number")
			return sweet.SearchFilter{}, false
		}
		filter.MaxPrice = &max
	}

	return filter, true
}

func (h *SweetsHandler) UpdateSweet(ctx *gin.Context) {
	id, ok := sweetIDParam(ctx)

	if !ok {
		return
	}

	var req sweet.UpdateSweetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, sweet.ErrNotFound):
			RespondNotFound(ctx, "Sweet not found")
		case errors.Is(err, sweet.ErrDuplicateName):
			RespondBadRequest(ctx, "duplicate_name", "Sweet with this name already exists.")
		default:
			RespondInternal(ctx, "Could not update sweet")
		}
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, s)
}

func (h *SweetsHandler) DeleteSweet(ctx *gin.Context) {
	id, ok := sweetIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, sweet.ErrNotFound) {
			RespondNotFound(ctx, "Sweet not found")
			return
		}
		RespondInternal(ctx, "Could not delete sweet")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Sweet deleted successfully"})
}

func (h *SweetsHandler) PurchaseSweet(ctx *gin.Context) {
	id, ok := sweetIDParam(ctx)

	if !ok {
		return
	}

	var req sweet.StockRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Purchase(cctx, id, req.Quantity)

	if err != nil {
		switch {
		case errors.Is(err, sweet.ErrNotFound):
			RespondNotFound(ctx, "Sweet not found")
		case errors.Is(err, sweet.ErrInsufficientStock):
			RespondBadRequest(ctx, "insufficient_stock", "Insufficient quantity in stock.")
		default:
			RespondInternal(ctx, "Could not purchase sweet")
		}
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, s)
}

func (h *SweetsHandler) RestockSweet(ctx *gin.Context) {
	id, ok := sweetIDParam(ctx)

	if !ok {
		return
	}

	var req sweet.StockRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Restock(cctx, id, req.Quantity)

	if err != nil {
		if errors.Is(err, sweet.ErrNotFound) {
			RespondNotFound(ctx, "Sweet not found")
			return
		}
		RespondInternal(ctx, "Could not restock sweet")
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, s)
}
