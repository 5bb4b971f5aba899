package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/candyhaus/sweetshop/internal/domain/sweet"
	"github.com/candyhaus/sweetshop/internal/repo/memory"
)

func newCreateReq(name, category string, price float64, quantity int) sweet.CreateSweetRequest {
	return sweet.CreateSweetRequest{
		Name:     name,
		Category: category,
		Price:    &price,
		Quantity: &quantity,
	}
}

func mustCreate(t *testing.T, repo *memory.SweetsRepo, name, category string, price float64, quantity int) sweet.Sweet {
	t.Helper()

	s, err := repo.Create(context.Background(), newCreateReq(name, category, price, quantity))
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}

	return s
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	mustCreate(t, repo, "Lollipop", "Candy", 1.00, 20)

	_, err := repo.Create(ctx, newCreateReq("Lollipop", "Candy", 2.00, 5))

	if !errors.Is(err, sweet.ErrDuplicateName) {
		t.Fatalf("got %v, want ErrDuplicateName", err)
	}

	// exactly one row survives
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d sweets, want 1", len(all))
	}
}

func TestCreate_DefaultQuantityZero(t *testing.T) {
	repo := memory.NewSweetsRepo()
	price := 2.50

	s, err := repo.Create(context.Background(), sweet.CreateSweetRequest{
		Name:     "Fudge",
		Category: "Chocolate",
		Price:    &price,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if s.Quantity != 0 {
		t.Fatalf("got quantity %d, want 0", s.Quantity)
	}
}

func TestPurchase_DecrementsAndGuardsStock(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	s := mustCreate(t, repo, "Lollipop", "Candy", 1.00, 20)

	updated, err := repo.Purchase(ctx, s.ID, 5)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if updated.Quantity != 15 {
		t.Fatalf("got quantity %d, want 15", updated.Quantity)
	}

	// oversized purchase fails and leaves stock untouched
	_, err = repo.Purchase(ctx, s.ID, 100)
	if !errors.Is(err, sweet.ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}

	current, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Quantity != 15 {
		t.Fatalf("failed purchase changed quantity: got %d, want 15", current.Quantity)
	}
}

func TestPurchaseThenRestock_Inverse(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	s := mustCreate(t, repo, "Toffee", "Hard Candy", 3.00, 30)

	for _, q := range []int{1, 7, 30} {
		if _, err := repo.Purchase(ctx, s.ID, q); err != nil {
			t.Fatalf("purchase %d: %v", q, err)
		}
		after, err := repo.Restock(ctx, s.ID, q)
		if err != nil {
			t.Fatalf("restock %d: %v", q, err)
		}
		if after.Quantity != 30 {
			t.Fatalf("purchase+restock of %d not inverse: got %d, want 30", q, after.Quantity)
		}
	}
}

func TestPurchase_NotFound(t *testing.T) {
	repo := memory.NewSweetsRepo()

	_, err := repo.Purchase(context.Background(), 999, 1)
	if !errors.Is(err, sweet.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// two simultaneous purchases must never both drain the same stock
func TestPurchase_ConcurrentNeverOversells(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	const initial = 100
	const each = 7
	const workers = 20

	s := mustCreate(t, repo, "Jelly Beans", "Candy", 2.25, initial)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := repo.Purchase(ctx, s.ID, each)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, sweet.ErrInsufficientStock) {
				t.Errorf("unexpected purchase error: %v", err)
			}
		}()
	}

	wg.Wait()

	final, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if final.Quantity < 0 {
		t.Fatalf("stock went negative: %d", final.Quantity)
	}
	if want := initial - successes*each; final.Quantity != want {
		t.Fatalf("lost update: got quantity %d, want %d (successes=%d)", final.Quantity, want, successes)
	}
}

func TestSearch_FiltersAndOrder(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	mustCreate(t, repo, "Gummy Bears", "Candy", 1.75, 100)
	mustCreate(t, repo, "Lollipop", "Candy", 1.00, 75)
	mustCreate(t, repo, "Chocolate Bar", "Chocolate", 2.50, 50)
	mustCreate(t, repo, "Jelly Beans", "Candy", 2.25, 80)

	category := "Candy"
	min := 1.0
	max := 2.0

	got, err := repo.Search(ctx, sweet.SearchFilter{
		Category: &category,
		MinPrice: &min,
		MaxPrice: &max,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}

	for _, s := range got {
		if s.Category != "Candy" {
			t.Fatalf("category filter leaked: %+v", s)
		}
		if s.Price < 1.0 || s.Price > 2.0 {
			t.Fatalf("price bounds not inclusive-filtered: %+v", s)
		}
	}

	// newest first
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("results not newest-first: %+v", got)
		}
	}

	// substring name match
	name := "olli"
	byName, err := repo.Search(ctx, sweet.SearchFilter{Name: &name})
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Lollipop" {
		t.Fatalf("substring search failed: %+v", byName)
	}

	// no filters behaves like List
	all, err := repo.Search(ctx, sweet.SearchFilter{})
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d, want 4", len(all))
	}
}

func TestUpdate_PartialAndDuplicate(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	a := mustCreate(t, repo, "Toffee", "Hard Candy", 3.00, 30)
	mustCreate(t, repo, "Licorice", "Candy", 1.50, 55)

	newPrice := 3.25

	updated, err := repo.Update(ctx, a.ID, sweet.UpdateSweetRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Price != 3.25 {
		t.Fatalf("price not updated: %v", updated.Price)
	}
	if updated.Name != "Toffee" || updated.Category != "Hard Candy" || updated.Quantity != 30 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	// renaming onto another sweet's name must conflict
	conflict := "Licorice"
	_, err = repo.Update(ctx, a.ID, sweet.UpdateSweetRequest{Name: &conflict})
	if !errors.Is(err, sweet.ErrDuplicateName) {
		t.Fatalf("got %v, want ErrDuplicateName", err)
	}

	// keeping its own name is fine
	same := "Toffee"
	if _, err := repo.Update(ctx, a.ID, sweet.UpdateSweetRequest{Name: &same}); err != nil {
		t.Fatalf("self-rename should succeed: %v", err)
	}
}

func TestUpdate_NoFieldsIsNoOp(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	s := mustCreate(t, repo, "Marshmallows", "Soft Candy", 2.00, 60)

	time.Sleep(5 * time.Millisecond)

	got, err := repo.Update(ctx, s.ID, sweet.UpdateSweetRequest{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}

	if !got.UpdatedAt.Equal(s.UpdatedAt) {
		t.Fatalf("no-op update bumped updated_at: %v -> %v", s.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := memory.NewSweetsRepo()

	name := "Anything"
	_, err := repo.Update(context.Background(), 123, sweet.UpdateSweetRequest{Name: &name})
	if !errors.Is(err, sweet.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := memory.NewSweetsRepo()
	ctx := context.Background()

	s := mustCreate(t, repo, "Caramel Squares", "Caramel", 2.75, 40)

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, s.ID); !errors.Is(err, sweet.ErrNotFound) {
		t.Fatalf("deleted sweet still present: %v", err)
	}

	if err := repo.Delete(ctx, s.ID); !errors.Is(err, sweet.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
