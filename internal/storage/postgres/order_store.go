package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type orderStore struct {
	db *sql.DB
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore и OrderFinder.
func NewOrderStore(store *Store) *orderStore {
	return &orderStore{db: store.DB()}
}

// Create сохраняет заказ и его позиции в одной транзакции и возвращает заказ
// с присвоенными идентификаторами.
func (s *orderStore) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	_, err = tx.ExecContext(txCtx, `
		INSERT INTO orders (id, customer_id, created_at)
		VALUES ($1, $2, $3)
	`, order.ID, order.CustomerID, order.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	// position фиксирует порядок позиций из запроса: created_at у всех
	// строк заказа одинаковый и на чтении не даёт стабильной сортировки.
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(txCtx, `
			INSERT INTO order_items (id, order_id, product_id, position, qty, price_minor, currency, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.ID, order.ID, item.ProductID, i, item.Qty, item.PriceMinor, item.Currency, item.CreatedAt); err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}

	return order, nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (s *orderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := s.db.QueryRowContext(queryCtx, `
		SELECT id, customer_id, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := s.loadItems(queryCtx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (s *orderStore) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, qty, price_minor, currency, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Qty, &item.PriceMinor, &item.Currency, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Currency = strings.TrimSpace(item.Currency)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

var (
	_ domain.OrderStore  = (*orderStore)(nil)
	_ domain.OrderFinder = (*orderStore)(nil)
)
