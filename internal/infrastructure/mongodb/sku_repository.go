package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	sharedmongo "github.com/ssg-mis/order-to-dispatch-backend/pkg/mongodb"
)

const skuCollection = "sku_references"

// SkuRepository loads SKU reference records from the sku_references
// collection
type SkuRepository struct {
	collection *sharedmongo.ProtectedCollection
}

// NewSkuRepository creates the repository and ensures its indexes
func NewSkuRepository(client *sharedmongo.ProtectedClient) *SkuRepository {
	repo := &SkuRepository{
		collection: client.Collection(skuCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SkuRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "skuName", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = r.collection.CreateIndexes(ctx, indexes)
}

// FindAll loads every SKU reference record
func (r *SkuRepository) FindAll(ctx context.Context) ([]domain.SkuReference, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query sku references: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []domain.SkuReference
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode sku references: %w", err)
	}
	return refs, nil
}

// FindByName loads one SKU reference by exact name, nil when absent
func (r *SkuRepository) FindByName(ctx context.Context, skuName string) (*domain.SkuReference, error) {
	var ref domain.SkuReference
	err := r.collection.FindOne(ctx, bson.M{"skuName": skuName}).Decode(&ref)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
