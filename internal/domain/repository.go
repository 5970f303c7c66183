package domain

import "context"

// OrderStore описывает требования ядра к хранилищу заказов.
type OrderStore interface {
	// Create сохраняет заказ и возвращает его с присвоенными идентификаторами позиций.
	Create(ctx context.Context, order Order) (Order, error)
}

// OrderFinder — читающий доступ к заказам для внешних слоёв; ядро размещения им не пользуется.
type OrderFinder interface {
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id string) (Order, error)
}
