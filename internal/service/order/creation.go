package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/stock"
)

const aggregateTypeOrder = "order"

// Options задаёт необязательные зависимости CreationService.
type Options struct {
	Logger   *log.Entry
	Strategy stock.Strategy
	Outbox   domain.OutboxRepository
	Metrics  *metrics.PlacementMetrics
}

// Option настраивает CreationService.
type Option func(*Options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithStrategy задаёт стратегию списания остатков.
func WithStrategy(strategy stock.Strategy) Option {
	return func(opts *Options) {
		opts.Strategy = strategy
	}
}

// WithOutbox задаёт outbox для событий жизненного цикла заказа.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(opts *Options) {
		opts.Outbox = outbox
	}
}

// WithMetrics задаёт метрики размещения.
func WithMetrics(m *metrics.PlacementMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// CreationService размещает заказ клиента против каталога товаров:
// валидация → снапшот цен → сохранение → списание остатков.
// Все коллабораторы передаются при конструировании, без внешнего реестра.
type CreationService struct {
	directory domain.CustomerDirectory
	catalog   domain.ProductCatalog
	store     domain.OrderStore
	strategy  stock.Strategy
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.PlacementMetrics
}

// NewCreationService конструирует сервис размещения с зависимостями.
func NewCreationService(
	directory domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	store domain.OrderStore,
	options ...Option,
) *CreationService {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = log.New().WithField("component", "order-creation")
	}
	if opts.Strategy == nil {
		opts.Strategy = stock.NewSnapshotStrategy(catalog)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewPlacementMetrics()
	}

	return &CreationService{
		directory: directory,
		catalog:   catalog,
		store:     store,
		strategy:  opts.Strategy,
		outbox:    opts.Outbox,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Execute размещает заказ по списку запрошенных позиций и возвращает
// сохранённый заказ. Любая ошибка валидации прерывает выполнение до первой
// мутации; два одинаковых запроса создают два заказа — идемпотентность
// намеренно не предоставляется.
func (s *CreationService) Execute(ctx context.Context, customerID string, items []domain.RequestedItem) (domain.Order, error) {
	started := time.Now()
	s.metrics.RecordInFlightStarted()
	defer s.metrics.RecordInFlightFinished()

	order, err := s.place(ctx, customerID, items)

	s.metrics.RecordDuration(time.Since(started))
	if err != nil {
		s.recordOutcome(err)
		return domain.Order{}, err
	}

	s.metrics.RecordPlaced()
	return order, nil
}

func (s *CreationService) place(ctx context.Context, customerID string, items []domain.RequestedItem) (domain.Order, error) {
	if errs := domain.ValidateRequest(customerID, items); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	customer, err := s.directory.FindByID(ctx, customerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find customer %s: %w", customerID, err)
	}
	if customer == nil {
		return domain.Order{}, domain.ErrCustomerNotFound
	}

	observed, err := s.lookupProducts(ctx, items)
	if err != nil {
		return domain.Order{}, err
	}

	// Проверяем достаточность остатков в порядке позиций запроса:
	// остаток должен быть строго больше запрошенного количества.
	for _, item := range items {
		if !observed[item.ProductID].CanFulfill(item.Qty) {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID:    item.ProductID,
				RequestedQty: item.Qty,
			}
		}
	}

	now := time.Now().UTC()
	lines := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		product := observed[item.ProductID]
		lines = append(lines, domain.LineItem{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: product.PriceMinor,
			Currency:   product.Currency,
			CreatedAt:  now,
		})
	}

	stored, err := s.store.Create(ctx, domain.Order{
		CustomerID: customer.ID,
		Items:      lines,
		CreatedAt:  now,
	})
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customer.ID).Error("failed to persist order")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.strategy.Apply(ctx, stored.Items, observed); err != nil {
		// Заказ уже записан, а остатки не списаны. Компенсации нет:
		// фиксируем рассинхронизацию отдельно от обычных отклонений запроса.
		s.flagUnreconciled(stored, err)
		return domain.Order{}, fmt.Errorf("apply stock decrement for order %s: %w", stored.ID, err)
	}

	s.enqueueEvent(kafka.EventTypeOrderPlaced, stored, nil)

	return stored, nil
}

// lookupProducts загружает каталог одним батчем и строит индекс id → запись.
// Дубликаты идентификаторов в запросе не сливаются и проверяются по одной и
// той же записи каталога.
func (s *CreationService) lookupProducts(ctx context.Context, items []domain.RequestedItem) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrNoProductsFound
	}

	observed := make(map[string]domain.Product, len(products))
	for _, product := range products {
		observed[product.ID] = product
	}

	// Первый отсутствующий идентификатор в порядке запроса.
	for _, item := range items {
		if _, ok := observed[item.ProductID]; !ok {
			return nil, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	return observed, nil
}

func (s *CreationService) flagUnreconciled(order domain.Order, cause error) {
	s.logger.WithError(cause).WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
	}).Error("order persisted without inventory decrement, stock is unreconciled")

	s.metrics.RecordUnreconciled()
	s.enqueueEvent(kafka.EventTypeOrderUnreconciled, order, map[string]any{"cause": cause.Error()})
}

// enqueueEvent кладёт событие жизненного цикла заказа в outbox в формате
// kafka.PlacementEvent, который воркер публикации отправляет как payload.
func (s *CreationService) enqueueEvent(eventType kafka.EventType, order domain.Order, metadata map[string]any) {
	if s.outbox == nil {
		return
	}

	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["items"] = len(order.Items)

	data, err := json.Marshal(kafka.NewPlacementEvent(eventType, order.ID, order.CustomerID, metadata))
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
		return
	}
	s.metrics.RecordOutboxEvent()
}

func (s *CreationService) recordOutcome(err error) {
	var notFound *domain.ProductNotFoundError
	var insufficient *domain.InsufficientStockError

	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		s.metrics.RecordRejected(metrics.RejectReasonCustomerNotFound)
	case errors.Is(err, domain.ErrNoProductsFound):
		s.metrics.RecordRejected(metrics.RejectReasonNoProductsFound)
	case errors.As(err, &notFound):
		s.metrics.RecordRejected(metrics.RejectReasonProductNotFound)
	case errors.As(err, &insufficient):
		s.metrics.RecordRejected(metrics.RejectReasonInsufficientStock)
	case errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrProductIDRequired),
		errors.Is(err, domain.ErrItemQtyInvalid):
		s.metrics.RecordRejected(metrics.RejectReasonInvalidRequest)
	case domain.IsStockConflict(err):
		s.metrics.RecordStockConflict()
	default:
		s.metrics.RecordFailed()
	}
}
