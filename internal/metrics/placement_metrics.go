package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отклонения запроса для метки reason.
const (
	RejectReasonInvalidRequest    = "invalid_request"
	RejectReasonCustomerNotFound  = "customer_not_found"
	RejectReasonNoProductsFound   = "no_products_found"
	RejectReasonProductNotFound   = "product_not_found"
	RejectReasonInsufficientStock = "insufficient_stock"
)

// PlacementMetrics содержит метрики конвейера размещения заказов.
type PlacementMetrics struct {
	// Счётчики исходов
	ordersPlaced   prometheus.Counter
	ordersRejected *prometheus.CounterVec
	ordersFailed   prometheus.Counter

	// Гистограмма времени размещения
	placementDuration prometheus.Histogram

	// Счётчики особых состояний склада
	stockConflicts     prometheus.Counter
	unreconciledOrders prometheus.Counter

	// Счётчик событий outbox
	outboxEvents prometheus.Counter

	// Gauge для запросов в обработке
	inFlight prometheus.Gauge
}

// NewPlacementMetrics создаёт новый экземпляр метрик размещения.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_rejected_total",
			Help: "Total number of order requests rejected grouped by reason",
		}, []string{"reason"}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_failed_total",
			Help: "Total number of order placements failed on a system fault",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_stock_conflicts_total",
			Help: "Total number of concurrent stock decrement conflicts",
		}),
		unreconciledOrders: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_unreconciled_orders_total",
			Help: "Total number of orders persisted without a matching inventory decrement",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_outbox_events_total",
			Help: "Total number of order events enqueued to the outbox",
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "checkout_placements_in_flight",
			Help: "Number of order placements currently in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPlaced увеличивает счётчик успешно размещённых заказов.
func (m *PlacementMetrics) RecordPlaced() {
	m.ordersPlaced.Inc()
}

// RecordRejected увеличивает счётчик отклонённых запросов по причине.
func (m *PlacementMetrics) RecordRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordFailed увеличивает счётчик системных сбоев размещения.
func (m *PlacementMetrics) RecordFailed() {
	m.ordersFailed.Inc()
}

// RecordDuration записывает время размещения заказа.
func (m *PlacementMetrics) RecordDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordStockConflict увеличивает счётчик конкурентных конфликтов списания.
func (m *PlacementMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordUnreconciled увеличивает счётчик заказов с несписанными остатками.
func (m *PlacementMetrics) RecordUnreconciled() {
	m.unreconciledOrders.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *PlacementMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordInFlightStarted увеличивает количество запросов в обработке.
func (m *PlacementMetrics) RecordInFlightStarted() {
	m.inFlight.Inc()
}

// RecordInFlightFinished уменьшает количество запросов в обработке.
func (m *PlacementMetrics) RecordInFlightFinished() {
	m.inFlight.Dec()
}
