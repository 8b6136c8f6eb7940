package mongodb

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ssg-mis/order-to-dispatch-backend/pkg/logging"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/metrics"
)

// ProtectedClient wraps Client with metrics instrumentation and a shared
// circuit breaker. All collections obtained through it report operation
// latency and trip together when MongoDB is unhealthy.
type ProtectedClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewProtectedClient builds the production wrapper around an established client
func NewProtectedClient(client *Client, m *metrics.Metrics, logger *logging.Logger) *ProtectedClient {
	settings := gobreaker.Settings{
		Name:        "mongodb",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mongodb circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &ProtectedClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: m,
		logger:  logger,
	}
}

// Collection returns a protected collection handle
func (c *ProtectedClient) Collection(name string) *ProtectedCollection {
	return &ProtectedCollection{
		collection: c.client.Collection(name),
		breaker:    c.breaker,
		metrics:    c.metrics,
	}
}

// HealthCheck pings through the breaker so readiness reflects its state
func (c *ProtectedClient) HealthCheck(ctx context.Context) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.HealthCheck(ctx)
	})
	return err
}

// Close disconnects the underlying client
func (c *ProtectedClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// ProtectedCollection is a mongo.Collection guarded by the client's breaker
// and instrumented with operation metrics.
type ProtectedCollection struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

// Name returns the collection name
func (c *ProtectedCollection) Name() string {
	return c.collection.Name()
}

func (c *ProtectedCollection) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := c.breaker.Execute(fn)
	if c.metrics != nil {
		c.metrics.RecordMongoOperation(c.collection.Name(), operation, err == nil, time.Since(start))
	}
	return result, err
}

// InsertOne inserts a single document
func (c *ProtectedCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	result, err := c.execute("insert_one", func() (interface{}, error) {
		return c.collection.InsertOne(ctx, document, opts...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*mongo.InsertOneResult), nil
}

// FindOne finds a single document. The breaker is consulted before the
// driver call; when open, decoding the returned result yields the breaker
// error.
func (c *ProtectedCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	result, err := c.execute("find_one", func() (interface{}, error) {
		return c.collection.FindOne(ctx, filter, opts...), nil
	})
	if err != nil {
		return mongo.NewSingleResultFromDocument(nil, err, nil)
	}
	return result.(*mongo.SingleResult)
}

// Find finds multiple documents
func (c *ProtectedCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	result, err := c.execute("find", func() (interface{}, error) {
		return c.collection.Find(ctx, filter, opts...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*mongo.Cursor), nil
}

// UpdateOne updates a single document
func (c *ProtectedCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	result, err := c.execute("update_one", func() (interface{}, error) {
		return c.collection.UpdateOne(ctx, filter, update, opts...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*mongo.UpdateResult), nil
}

// ReplaceOne replaces a single document
func (c *ProtectedCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	result, err := c.execute("replace_one", func() (interface{}, error) {
		return c.collection.ReplaceOne(ctx, filter, replacement, opts...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*mongo.UpdateResult), nil
}

// FindOneAndUpdate finds and updates a document atomically
func (c *ProtectedCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	result, err := c.execute("find_one_and_update", func() (interface{}, error) {
		return c.collection.FindOneAndUpdate(ctx, filter, update, opts...), nil
	})
	if err != nil {
		return mongo.NewSingleResultFromDocument(nil, err, nil)
	}
	return result.(*mongo.SingleResult)
}

// CountDocuments counts matching documents
func (c *ProtectedCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	result, err := c.execute("count_documents", func() (interface{}, error) {
		return c.collection.CountDocuments(ctx, filter, opts...)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// CreateIndexes creates the given index models
func (c *ProtectedCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) ([]string, error) {
	result, err := c.execute("create_indexes", func() (interface{}, error) {
		return c.collection.Indexes().CreateMany(ctx, models)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
