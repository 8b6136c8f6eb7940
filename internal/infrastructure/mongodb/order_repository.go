// Package mongodb implements the domain repositories on MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	sharedmongo "github.com/ssg-mis/order-to-dispatch-backend/pkg/mongodb"
)

const (
	ordersCollection   = "orders"
	countersCollection = "counters"
	orderCounterID     = "orderNo"
)

// OrderRepository persists Order aggregates in the orders collection
type OrderRepository struct {
	collection *sharedmongo.ProtectedCollection
	counters   *sharedmongo.ProtectedCollection
}

// NewOrderRepository creates the repository and ensures its indexes
func NewOrderRepository(client *sharedmongo.ProtectedClient) *OrderRepository {
	repo := &OrderRepository{
		collection: client.Collection(ordersCollection),
		counters:   client.Collection(countersCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNo", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerName", Value: 1}}},
		{Keys: bson.D{{Key: "skuName", Value: 1}}},
	}
	_, _ = r.collection.CreateIndexes(ctx, indexes)
}

// Save upserts the aggregate keyed by order number
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"orderNo": order.OrderNo}
	update := bson.M{"$set": order}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.OrderNo, err)
	}
	return nil
}

// FindByOrderNo loads one order, nil when absent
func (r *OrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"orderNo": orderNo}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll loads every order, newest first
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

// FindWithFilter loads orders matching the report filter. Text fields
// match case-insensitively; the order number filter matches the base
// order number so multi-line suffixes are included.
func (r *OrderRepository) FindWithFilter(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.IsEmpty() {
		return r.FindAll(ctx)
	}

	query := bson.M{}
	if filter.OrderNoPrefix != "" {
		query["orderNo"] = bson.M{"$regex": "^" + regexEscape(filter.OrderNoPrefix), "$options": "i"}
	}
	if filter.CustomerName != "" {
		query["customerName"] = bson.M{"$regex": regexEscape(filter.CustomerName), "$options": "i"}
	}
	if filter.OilType != "" {
		query["oilType"] = bson.M{"$regex": regexEscape(filter.OilType), "$options": "i"}
	}
	if filter.SkuName != "" {
		query["skuName"] = bson.M{"$regex": regexEscape(filter.SkuName), "$options": "i"}
	}
	if filter.FromDate != nil || filter.ToDate != nil {
		created := bson.M{}
		if filter.FromDate != nil {
			created["$gte"] = filter.FromDate.UTC()
		}
		if filter.ToDate != nil {
			// ToDate is inclusive of the whole day
			endOfDay := filter.ToDate.UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
			created["$lte"] = endOfDay
		}
		query["createdAt"] = created
	}

	return r.find(ctx, query)
}

func (r *OrderRepository) find(ctx context.Context, query bson.M) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// NextOrderSequence atomically increments and returns the DO-NNN counter
func (r *OrderRepository) NextOrderSequence(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": orderCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}
	return counter.Seq, nil
}

// regexEscape quotes regex metacharacters in user-supplied filter text
func regexEscape(s string) string {
	escaped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, s[i])
	}
	return string(escaped)
}
