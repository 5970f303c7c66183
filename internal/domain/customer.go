package domain

import "time"

// Customer описывает клиента, от имени которого размещается заказ.
// Ядру размещения важен только факт существования записи.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
