package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
	"github.com/seracstudio/payrecon-gobackend/internal/models"
)

// OrderStore persists reconciled orders, scoped per tenant.
type OrderStore interface {
	// FindByTransactionID returns (nil, nil) when no order exists.
	FindByTransactionID(ctx context.Context, tenant, transactionID string) (*models.Order, error)
	// Insert writes a new order and returns its id. A unique-index
	// conflict on transaction_id yields apperr.ErrDuplicateOrder.
	Insert(ctx context.Context, tenant string, order *models.Order) (string, error)
	// FindByTrackingRef returns the raw order document, or
	// apperr.ErrNotFound.
	FindByTrackingRef(ctx context.Context, tenant, trackingRef string) (map[string]interface{}, error)
}

// QuoteStore applies the one-time payment confirmation to a quote.
type QuoteStore interface {
	MarkPaid(ctx context.Context, tenant, quoteID, txRef, orderID string) error
}

// MongoStore backs both stores with per-tenant collections named
// "{brand}_orders" and "{brand}_quotes".
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) orders(tenant string) *mongo.Collection {
	return s.db.Collection(tenant + "_orders")
}

func (s *MongoStore) quotes(tenant string) *mongo.Collection {
	return s.db.Collection(tenant + "_quotes")
}

// EnsureIndexes creates the unique transaction_id index for every tenant's
// orders collection. The index turns the idempotency check plus insert into
// a conditional create, so concurrent deliveries of the same transaction
// cannot both commit.
func (s *MongoStore) EnsureIndexes(ctx context.Context, tenants []string) error {
	for _, tenant := range tenants {
		indexModels := []mongo.IndexModel{
			{
				Keys:    bson.M{"transaction_id": 1},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.M{"tx_ref": 1}},
		}
		if _, err := s.orders(tenant).Indexes().CreateMany(ctx, indexModels); err != nil {
			return fmt.Errorf("create indexes for %s: %w", tenant, err)
		}
	}
	return nil
}

func (s *MongoStore) FindByTransactionID(ctx context.Context, tenant, transactionID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order models.Order
	err := s.orders(tenant).FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by transaction_id: %w", err)
	}
	return &order, nil
}

func (s *MongoStore) Insert(ctx context.Context, tenant string, order *models.Order) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()

	_, err := s.orders(tenant).InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return "", apperr.ErrDuplicateOrder
	}
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return order.ID.Hex(), nil
}

func (s *MongoStore) FindByTrackingRef(ctx context.Context, tenant, trackingRef string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Orders written here carry tx_ref; orders from the quoting flow carry
	// trackingRef. Both populations stay addressable.
	filter := bson.M{"$or": bson.A{
		bson.M{"tx_ref": trackingRef},
		bson.M{"trackingRef": trackingRef},
	}}

	var doc bson.M
	err := s.orders(tenant).FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order by tracking ref: %w", err)
	}
	return doc, nil
}

func (s *MongoStore) MarkPaid(ctx context.Context, tenant, quoteID, txRef, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var filter bson.M
	switch {
	case quoteID != "":
		// Quote ids from the quoting flow may predate ObjectID keys.
		if objID, err := primitive.ObjectIDFromHex(quoteID); err == nil {
			filter = bson.M{"_id": objID}
		} else {
			filter = bson.M{"_id": quoteID}
		}
	case txRef != "":
		filter = bson.M{"tx_ref": txRef}
	default:
		return apperr.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":  models.QuoteStatusPaid,
		"orderId": orderID,
		"paidAt":  time.Now(),
	}}

	res, err := s.quotes(tenant).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mark quote paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
