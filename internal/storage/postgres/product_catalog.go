package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type productCatalog struct {
	db *sql.DB
}

// NewProductCatalog создаёт PostgreSQL-реализацию ProductCatalog.
func NewProductCatalog(store *Store) domain.ProductCatalog {
	return &productCatalog{db: store.DB()}
}

// FindAllByID загружает товары одним запросом. Отсутствующие идентификаторы
// опускаются, порядок результата следует порядку входных идентификаторов.
func (c *productCatalog) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	rows, err := c.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT id, name, price_minor, currency, quantity, updated_at
		FROM products
		WHERE id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceMinor, &p.Currency, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.Currency = strings.TrimSpace(p.Currency)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	result := make([]domain.Product, 0, len(byID))
	seen := make(map[string]bool, len(byID))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}

	return result, nil
}

// UpdateQuantity выставляет абсолютные остатки в одной транзакции.
// Любая неизвестная позиция или отрицательное значение откатывает весь батч.
func (c *productCatalog) UpdateQuantity(ctx context.Context, changes []domain.QuantityChange) ([]domain.Product, error) {
	if len(changes) == 0 {
		return []domain.Product{}, nil
	}

	for _, change := range changes {
		if change.Quantity < 0 {
			return nil, fmt.Errorf("product %s: quantity %d: %w", change.ProductID, change.Quantity, domain.ErrNegativeStock)
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	updated := make([]domain.Product, 0, len(changes))
	for _, change := range changes {
		var p domain.Product
		err = tx.QueryRowContext(txCtx, `
			UPDATE products
			SET quantity = $2,
			    updated_at = $3
			WHERE id = $1
			RETURNING id, name, price_minor, currency, quantity, updated_at
		`, change.ProductID, change.Quantity, now).Scan(
			&p.ID, &p.Name, &p.PriceMinor, &p.Currency, &p.Quantity, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("update quantity for product %s: %w", change.ProductID, err)
		}
		p.Currency = strings.TrimSpace(p.Currency)
		updated = append(updated, p)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quantity update: %w", err)
	}

	return updated, nil
}

// DecrementQuantity списывает остатки одним атомарным шагом: охранное условие
// quantity >= demand в самом UPDATE исключает уход в минус под конкуренцией.
func (c *productCatalog) DecrementQuantity(ctx context.Context, demands []domain.QuantityChange) error {
	if len(demands) == 0 {
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, demand := range demands {
		var res sql.Result
		res, err = tx.ExecContext(txCtx, `
			UPDATE products
			SET quantity = quantity - $2,
			    updated_at = $3
			WHERE id = $1
			  AND quantity >= $2
		`, demand.ProductID, demand.Quantity, now)
		if err != nil {
			return fmt.Errorf("decrement product %s: %w", demand.ProductID, err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected for product %s: %w", demand.ProductID, err)
		}
		if affected == 0 {
			err = fmt.Errorf("product %s: %w", demand.ProductID, domain.ErrStockConflict)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit quantity decrement: %w", err)
	}

	return nil
}

var _ domain.ProductCatalog = (*productCatalog)(nil)
