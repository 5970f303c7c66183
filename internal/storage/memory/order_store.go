package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// orderStoreInMemory — in-memory реализация OrderStore и OrderFinder.
type orderStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderStore возвращает in-memory хранилище заказов.
func NewOrderStore() *orderStoreInMemory {
	return &orderStoreInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет заказ, присваивая идентификаторы заказу и позициям.
func (s *orderStoreInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	items := make([]domain.LineItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	order.Items = items

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	stored := order
	stored.Items = make([]domain.LineItem, len(items))
	copy(stored.Items, items)
	s.items[order.ID] = stored

	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (s *orderStoreInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	result := order
	result.Items = make([]domain.LineItem, len(order.Items))
	copy(result.Items, order.Items)
	return result, nil
}

var (
	_ domain.OrderStore  = (*orderStoreInMemory)(nil)
	_ domain.OrderFinder = (*orderStoreInMemory)(nil)
)
