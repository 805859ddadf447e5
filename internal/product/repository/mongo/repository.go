// Package mongo содержит MongoDB-реализацию репозитория каталога
package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shestoi/shopmq/internal/product/repository"
)

const collectionProducts = "products"

var _ repository.ProductRepository = (*Repository)(nil)

// Repository реализует ProductRepository поверх MongoDB
type Repository struct {
	collection *mongo.Collection
}

// NewRepository создаёт репозиторий поверх указанной базы
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collection: db.Collection(collectionProducts),
	}
}

// Create сохраняет товар с UUID в качестве _id
func (r *Repository) Create(ctx context.Context, product repository.Product) (repository.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return repository.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

// FindByIDs возвращает найденные товары, пропуская неизвестные ID
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]repository.Product, error) {
	if len(ids) == 0 {
		return []repository.Product{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]repository.Product, 0, len(ids))
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return products, nil
}

// List возвращает все товары каталога
func (r *Repository) List(ctx context.Context) ([]repository.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]repository.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return products, nil
}
