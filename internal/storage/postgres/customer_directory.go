package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type customerDirectory struct {
	db *sql.DB
}

// NewCustomerDirectory создаёт PostgreSQL-реализацию CustomerDirectory.
func NewCustomerDirectory(store *Store) domain.CustomerDirectory {
	return &customerDirectory{db: store.DB()}
}

func (d *customerDirectory) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := d.db.QueryRowContext(queryCtx, `
		SELECT id, name, email, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)
	if err != nil {
		// Отсутствие записи — штатный ответ, а не ошибка хранилища.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}

	return &customer, nil
}

var _ domain.CustomerDirectory = (*customerDirectory)(nil)
