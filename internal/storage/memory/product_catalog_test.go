package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

func seedCatalog(t *testing.T) (*contextCatalog, domain.Product, domain.Product) {
	t.Helper()

	catalog := memory.NewProductCatalog()
	p1 := catalog.Add(domain.Product{Name: "keyboard", PriceMinor: 1000, Currency: "USD", Quantity: 5})
	p2 := catalog.Add(domain.Product{Name: "mouse", PriceMinor: 2000, Currency: "USD", Quantity: 2})
	return &contextCatalog{catalog: catalog}, p1, p2
}

// contextCatalog прячет context.Background за короткими хелперами теста.
type contextCatalog struct {
	catalog domain.ProductCatalog
}

func (c *contextCatalog) find(ids ...string) ([]domain.Product, error) {
	return c.catalog.FindAllByID(context.Background(), ids)
}

func (c *contextCatalog) update(changes ...domain.QuantityChange) ([]domain.Product, error) {
	return c.catalog.UpdateQuantity(context.Background(), changes)
}

func (c *contextCatalog) decrement(demands ...domain.QuantityChange) error {
	return c.catalog.DecrementQuantity(context.Background(), demands)
}

func TestProductCatalog_FindAllByID_SubsetSemantics(t *testing.T) {
	catalog, p1, _ := seedCatalog(t)

	found, err := catalog.find(p1.ID, "missing", p1.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	// Отсутствующие идентификаторы опускаются, дубликаты не размножаются.
	if len(found) != 1 {
		t.Fatalf("expected 1 product, got %d", len(found))
	}
	if found[0].ID != p1.ID {
		t.Fatalf("expected %s, got %s", p1.ID, found[0].ID)
	}
}

func TestProductCatalog_UpdateQuantity(t *testing.T) {
	catalog, p1, p2 := seedCatalog(t)

	updated, err := catalog.update(
		domain.QuantityChange{ProductID: p1.ID, Quantity: 3},
		domain.QuantityChange{ProductID: p2.ID, Quantity: 1},
	)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated products, got %d", len(updated))
	}

	found, err := catalog.find(p1.ID, p2.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found[0].Quantity != 3 || found[1].Quantity != 1 {
		t.Fatalf("expected quantities 3 and 1, got %d and %d", found[0].Quantity, found[1].Quantity)
	}
}

func TestProductCatalog_UpdateQuantity_RejectsNegative(t *testing.T) {
	catalog, p1, _ := seedCatalog(t)

	if _, err := catalog.update(domain.QuantityChange{ProductID: p1.ID, Quantity: -1}); !errors.Is(err, domain.ErrNegativeStock) {
		t.Fatalf("expected negative stock error, got %v", err)
	}
}

func TestProductCatalog_UpdateQuantity_UnknownProductKeepsBatchUntouched(t *testing.T) {
	catalog, p1, _ := seedCatalog(t)

	_, err := catalog.update(
		domain.QuantityChange{ProductID: p1.ID, Quantity: 0},
		domain.QuantityChange{ProductID: "missing", Quantity: 1},
	)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}

	found, err := catalog.find(p1.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found[0].Quantity != 5 {
		t.Fatalf("batch must not be applied partially, got quantity %d", found[0].Quantity)
	}
}

func TestProductCatalog_DecrementQuantity(t *testing.T) {
	catalog, p1, p2 := seedCatalog(t)

	err := catalog.decrement(
		domain.QuantityChange{ProductID: p1.ID, Quantity: 2},
		domain.QuantityChange{ProductID: p2.ID, Quantity: 1},
	)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	found, err := catalog.find(p1.ID, p2.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found[0].Quantity != 3 || found[1].Quantity != 1 {
		t.Fatalf("expected quantities 3 and 1, got %d and %d", found[0].Quantity, found[1].Quantity)
	}
}

func TestProductCatalog_DecrementQuantity_FloorGuard(t *testing.T) {
	catalog, p1, p2 := seedCatalog(t)

	err := catalog.decrement(
		domain.QuantityChange{ProductID: p1.ID, Quantity: 1},
		domain.QuantityChange{ProductID: p2.ID, Quantity: 3},
	)
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected stock conflict, got %v", err)
	}

	// Конфликт по одной позиции не должен списать остатки по другим.
	found, err := catalog.find(p1.ID, p2.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found[0].Quantity != 5 || found[1].Quantity != 2 {
		t.Fatalf("expected untouched quantities 5 and 2, got %d and %d", found[0].Quantity, found[1].Quantity)
	}
}

func TestProductCatalog_DecrementQuantity_DuplicatesAccumulate(t *testing.T) {
	catalog, p1, _ := seedCatalog(t)

	err := catalog.decrement(
		domain.QuantityChange{ProductID: p1.ID, Quantity: 3},
		domain.QuantityChange{ProductID: p1.ID, Quantity: 3},
	)
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected conflict for accumulated demand 6 over stock 5, got %v", err)
	}
}
