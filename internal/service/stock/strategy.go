package stock

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Strategy изолирует применение списания остатков для уже сохранённого заказа.
// Подмена стратегии не меняет внешний контракт сервиса размещения.
type Strategy interface {
	// Apply списывает остатки по позициям заказа. observed — снапшот каталога,
	// прочитанный на этапе валидации (id → запись).
	Apply(ctx context.Context, items []domain.LineItem, observed map[string]domain.Product) error
}

// SnapshotStrategy воспроизводит референсное поведение: новые абсолютные
// значения остатков рассчитываются из снапшота этапа валидации и выставляются
// одним батчем. Между проверкой и записью блокировка не удерживается, поэтому
// конкурентные заказы на один товар могут привести к продаже сверх остатка.
type SnapshotStrategy struct {
	catalog domain.ProductCatalog
}

// NewSnapshotStrategy создаёт стратегию списания по снапшоту.
func NewSnapshotStrategy(catalog domain.ProductCatalog) *SnapshotStrategy {
	return &SnapshotStrategy{catalog: catalog}
}

// Apply выставляет остатки `наблюдавшийся − заказанный` для каждой позиции.
func (s *SnapshotStrategy) Apply(ctx context.Context, items []domain.LineItem, observed map[string]domain.Product) error {
	changes := make([]domain.QuantityChange, 0, len(items))
	for _, item := range items {
		product, ok := observed[item.ProductID]
		if !ok {
			return fmt.Errorf("product %s is missing from the validation snapshot", item.ProductID)
		}

		remaining := product.Quantity - item.Qty
		if remaining < 0 {
			// Валидация не могла пропустить такой заказ; минус означает порчу снапшота.
			return fmt.Errorf("product %s: %w", item.ProductID, domain.ErrNegativeStock)
		}
		changes = append(changes, domain.QuantityChange{ProductID: item.ProductID, Quantity: remaining})
	}

	if _, err := s.catalog.UpdateQuantity(ctx, changes); err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return nil
}

// GuardedStrategy закрывает окно гонки: каталог выполняет списание атомарно
// с нижней границей нуля. При конкурентном списании возвращается
// domain.ErrStockConflict, и вызывающая сторона может повторить запрос.
type GuardedStrategy struct {
	catalog domain.ProductCatalog
}

// NewGuardedStrategy создаёт стратегию атомарного списания.
func NewGuardedStrategy(catalog domain.ProductCatalog) *GuardedStrategy {
	return &GuardedStrategy{catalog: catalog}
}

// Apply передаёт каталогу дельты списания; снапшот валидации не используется.
func (s *GuardedStrategy) Apply(ctx context.Context, items []domain.LineItem, _ map[string]domain.Product) error {
	demands := make([]domain.QuantityChange, 0, len(items))
	for _, item := range items {
		demands = append(demands, domain.QuantityChange{ProductID: item.ProductID, Quantity: item.Qty})
	}

	if err := s.catalog.DecrementQuantity(ctx, demands); err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}
	return nil
}

var (
	_ Strategy = (*SnapshotStrategy)(nil)
	_ Strategy = (*GuardedStrategy)(nil)
)
