package domain

import "time"

// Product описывает позицию каталога с текущей ценой и остатком.
type Product struct {
	ID   string
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Currency — код валюты цены.
	Currency string
	// Quantity — доступный остаток; единственное разделяемое изменяемое состояние ядра.
	Quantity  int32
	UpdatedAt time.Time
}

// QuantityChange описывает изменение остатка по одной позиции каталога.
// В UpdateQuantity значение трактуется как абсолютное, в DecrementQuantity — как списание.
type QuantityChange struct {
	ProductID string
	Quantity  int32
}

// CanFulfill проверяет правило достаточности остатка: остаток должен быть
// строго больше запрошенного количества. Равенство считается нехваткой.
func (p Product) CanFulfill(qty int32) bool {
	return p.Quantity > qty
}
