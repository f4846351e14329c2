package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/backend/memory"
	"sanraw/console/internal/domain"
)

func TestLoadIndexesAcrossCategories(t *testing.T) {
	cat := New(memory.NewSeeded())
	ctx := context.Background()

	if _, err := cat.Load(ctx, domain.CategoryPaddy); err != nil {
		t.Fatalf("load paddy: %v", err)
	}
	if _, err := cat.Load(ctx, domain.CategoryEquipment); err != nil {
		t.Fatalf("load equipment: %v", err)
	}

	// Loading a second category must not evict the first.
	if _, ok := cat.Lookup("p1"); !ok {
		t.Fatalf("paddy item lost after loading equipment")
	}
	if _, ok := cat.Lookup("e1"); !ok {
		t.Fatalf("equipment item not indexed")
	}
	if _, ok := cat.Lookup("nope"); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

// The console reloads the catalog from a background goroutine while the
// event loop resolves lookups; both must be safe to run at once.
func TestConcurrentLoadAndLookup(t *testing.T) {
	cat := New(memory.NewSeeded())
	ctx := context.Background()
	if _, err := cat.Load(ctx, domain.CategoryPaddy); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := cat.Load(ctx, domain.CategoryEquipment); err != nil {
					t.Errorf("load: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cat.Lookup("p1")
			}
		}()
	}
	wg.Wait()

	if _, ok := cat.Lookup("p1"); !ok {
		t.Fatalf("paddy item lost during concurrent reloads")
	}
	if _, ok := cat.Lookup("e1"); !ok {
		t.Fatalf("equipment item not indexed after concurrent reloads")
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	cat := New(memory.NewSeeded())
	if _, err := cat.Load(context.Background(), domain.Category("fertilizer")); err == nil {
		t.Fatalf("expected an error for an unknown category")
	}
}

// failingClient serves one category then starts failing, standing in for a
// backend that goes away mid-session.
type failingClient struct {
	backend.Client
	fail bool
}

func (f *failingClient) ListCatalog(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	if f.fail {
		return nil, &backend.FetchError{Endpoint: "/paddy", Err: errors.New("connection refused")}
	}
	return f.Client.ListCatalog(ctx, category)
}

func TestFailedReloadKeepsPreviousSnapshot(t *testing.T) {
	client := &failingClient{Client: memory.NewSeeded()}
	cat := New(client)
	ctx := context.Background()

	if _, err := cat.Load(ctx, domain.CategoryPaddy); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	client.fail = true
	if _, err := cat.Load(ctx, domain.CategoryPaddy); err == nil {
		t.Fatalf("expected the reload to fail")
	}
	if _, ok := cat.Lookup("p1"); !ok {
		t.Fatalf("failed reload must keep the previous snapshot")
	}
}
