package domain

import "time"

// RequestedItem — одна позиция запроса на размещение заказа.
type RequestedItem struct {
	// ProductID — идентификатор товара в каталоге.
	ProductID string
	// Qty — запрошенное количество, строго положительное.
	Qty int32
}

// LineItem представляет одну позицию размещённого заказа.
type LineItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — внешний идентификатор товара в каталоге.
	ProductID string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент размещения.
	// После создания позиции цена из каталога не перечитывается.
	PriceMinor int64
	// Currency — код валюты зафиксированной цены.
	Currency string
	// CreatedAt фиксирует момент создания позиции.
	CreatedAt time.Time
}

// Order агрегирует размещённый заказ и его позиции.
// Создаётся ровно один раз и после этого ядром не изменяется.
type Order struct {
	ID         string
	CustomerID string
	Items      []LineItem
	CreatedAt  time.Time
}

// ValidateRequest проверяет форму запроса до обращений к внешним хранилищам
// и возвращает список замечаний.
func ValidateRequest(customerID string, items []RequestedItem) []error {
	var errs []error

	if customerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range items {
		if item.ProductID == "" {
			errs = append(errs, ErrProductIDRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
	}

	return errs
}
