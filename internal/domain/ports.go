package domain

import (
	"context"
	"time"
)

// CustomerDirectory разрешает идентификатор клиента в запись справочника.
type CustomerDirectory interface {
	// FindByID возвращает клиента или nil, если записи нет. Отсутствие — не ошибка.
	FindByID(ctx context.Context, id string) (*Customer, error)
}

// ProductCatalog предоставляет доступ к ценам и остаткам товаров.
type ProductCatalog interface {
	// FindAllByID возвращает найденные товары; отсутствующие идентификаторы просто опускаются.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantity выставляет абсолютные значения остатков и возвращает обновлённые записи.
	UpdateQuantity(ctx context.Context, changes []QuantityChange) ([]Product, error)
	// DecrementQuantity списывает остатки одним атомарным шагом.
	// Возвращает ErrStockConflict, если хотя бы по одной позиции остаток ушёл бы в минус.
	DecrementQuantity(ctx context.Context, demands []QuantityChange) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
