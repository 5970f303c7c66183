package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

// OrderStorage объединяет запись и чтение заказов для слоёв приложения.
type OrderStorage interface {
	domain.OrderStore
	domain.OrderFinder
}

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Directory  domain.CustomerDirectory
	Catalog    domain.ProductCatalog
	Orders     OrderStorage
	OutboxRepo domain.OutboxRepository

	// Store не nil только в postgres-режиме; используется для health check.
	Store *postgres.Store
}

// NewDependencies инициализирует хранилища приложения. С заданным PostgresDSN
// подключается к PostgreSQL и применяет миграции, без него работает in-memory.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN is empty, using in-memory storage")
		return &Dependencies{
			Directory:  memory.NewCustomerDirectory(),
			Catalog:    memory.NewProductCatalog(),
			Orders:     memory.NewOrderStore(),
			OutboxRepo: memory.NewOutboxRepository(),
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("postgres storage initialized")

	return &Dependencies{
		Directory:  postgres.NewCustomerDirectory(store),
		Catalog:    postgres.NewProductCatalog(store),
		Orders:     postgres.NewOrderStore(store),
		OutboxRepo: postgres.NewOutboxRepository(store),
		Store:      store,
	}, nil
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close(logger *log.Entry) {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
