package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// productCatalogInMemory — in-memory реализация ProductCatalog.
type productCatalogInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductCatalog возвращает пустой in-memory каталог товаров.
func NewProductCatalog() *productCatalogInMemory {
	return &productCatalogInMemory{
		items: make(map[string]domain.Product),
	}
}

// Add сохраняет товар, присваивая идентификатор при необходимости.
func (c *productCatalogInMemory) Add(product domain.Product) domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}
	c.items[product.ID] = product
	return product
}

// FindAllByID возвращает найденные товары в порядке запрошенных идентификаторов.
// Отсутствующие идентификаторы опускаются, дубликаты не размножаются.
func (c *productCatalogInMemory) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if product, ok := c.items[id]; ok {
			result = append(result, product)
		}
	}

	return result, nil
}

// UpdateQuantity выставляет абсолютные значения остатков.
func (c *productCatalogInMemory) UpdateQuantity(_ context.Context, changes []domain.QuantityChange) ([]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Сначала проверяем весь батч, чтобы не применить его частично.
	for _, change := range changes {
		if _, ok := c.items[change.ProductID]; !ok {
			return nil, fmt.Errorf("update quantity: unknown product %s", change.ProductID)
		}
		if change.Quantity < 0 {
			return nil, fmt.Errorf("product %s: %w", change.ProductID, domain.ErrNegativeStock)
		}
	}

	now := time.Now().UTC()
	updated := make([]domain.Product, 0, len(changes))
	for _, change := range changes {
		product := c.items[change.ProductID]
		product.Quantity = change.Quantity
		product.UpdatedAt = now
		c.items[change.ProductID] = product
		updated = append(updated, product)
	}

	return updated, nil
}

// DecrementQuantity списывает остатки атомарно с нижней границей нуля.
func (c *productCatalogInMemory) DecrementQuantity(_ context.Context, demands []domain.QuantityChange) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Просчитываем списание на рабочей копии: либо применяется весь батч, либо ничего.
	pending := make(map[string]domain.Product, len(demands))
	for _, demand := range demands {
		product, ok := pending[demand.ProductID]
		if !ok {
			product, ok = c.items[demand.ProductID]
			if !ok {
				return fmt.Errorf("decrement quantity: unknown product %s", demand.ProductID)
			}
		}
		if product.Quantity < demand.Quantity {
			return fmt.Errorf("product %s: %w", demand.ProductID, domain.ErrStockConflict)
		}
		product.Quantity -= demand.Quantity
		pending[demand.ProductID] = product
	}

	now := time.Now().UTC()
	for id, product := range pending {
		product.UpdatedAt = now
		c.items[id] = product
	}

	return nil
}

var _ domain.ProductCatalog = (*productCatalogInMemory)(nil)
