package repository

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда товар не найден
var ErrNotFound = errors.New("product not found")

// Product представляет товар в каталоге
type Product struct {
	ID          string  `bson:"_id,omitempty" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Price       float64 `bson:"price" json:"price"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}

// ProductRepository определяет интерфейс для работы с каталогом товаров
type ProductRepository interface {
	// Create сохраняет товар и возвращает его с присвоенным ID
	Create(ctx context.Context, product Product) (Product, error)
	// FindByIDs возвращает товары с указанными ID.
	// Неизвестные ID молча пропускаются: результат содержит только найденные товары.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	// List возвращает все товары каталога
	List(ctx context.Context) ([]Product, error)
}
