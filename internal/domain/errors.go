package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента в запросе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в запросе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка пустого идентификатора товара в позиции запроса.
	ErrProductIDRequired = errors.New("item product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrNoProductsFound возвращается, если каталог не нашёл ни одного из запрошенных товаров.
	ErrNoProductsFound = errors.New("no products found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrStockConflict сигнализирует о конкурентном списании остатка; вызывающая сторона может повторить запрос.
	ErrStockConflict = errors.New("stock conflict")
	// ErrNegativeStock — нарушение инварианта: расчётный остаток ушёл в минус.
	ErrNegativeStock = errors.New("stock decrement below zero")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ProductNotFoundError указывает первый отсутствующий в каталоге товар в порядке запроса.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("could not find product %s", e.ProductID)
}

// InsufficientStockError указывает первую позицию запроса, для которой остатка недостаточно.
// Переносит запрошенное количество, а не доступное.
type InsufficientStockError struct {
	ProductID    string
	RequestedQty int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("the quantity %d is not available for %s", e.RequestedQty, e.ProductID)
}

// IsRejection проверяет, относится ли ошибка к отклонению запроса, а не к системному сбою.
func IsRejection(err error) bool {
	var notFound *ProductNotFoundError
	var insufficient *InsufficientStockError
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrNoProductsFound) ||
		errors.As(err, &notFound) ||
		errors.As(err, &insufficient)
}

// IsStockConflict проверяет, является ли ошибка конкурентным конфликтом остатков.
func IsStockConflict(err error) bool {
	return errors.Is(err, ErrStockConflict)
}
