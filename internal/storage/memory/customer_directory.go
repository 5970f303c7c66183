package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// customerDirectoryInMemory — простая in-memory реализация CustomerDirectory
// для локальной разработки и тестов.
type customerDirectoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerDirectory возвращает пустой in-memory справочник клиентов.
func NewCustomerDirectory() *customerDirectoryInMemory {
	return &customerDirectoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Add сохраняет клиента, присваивая идентификатор при необходимости.
func (d *customerDirectoryInMemory) Add(customer domain.Customer) domain.Customer {
	d.mu.Lock()
	defer d.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	d.items[customer.ID] = customer
	return customer
}

// FindByID возвращает клиента или nil, если записи нет. Отсутствие — не ошибка.
func (d *customerDirectoryInMemory) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	customer, ok := d.items[id]
	if !ok {
		return nil, nil
	}
	// Возвращаем копию, чтобы избежать непредсказуемых мутаций извне.
	return &customer, nil
}

var _ domain.CustomerDirectory = (*customerDirectoryInMemory)(nil)
