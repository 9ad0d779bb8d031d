package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPaid = "paid"

	SourceWebhook = "webhook"
	SourceVerify  = "verify"
)

// Order is the durable record of a reconciled, successful payment. At most
// one order exists per transaction_id within a tenant; the collection
// carries a unique index on that field.
type Order struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	TransactionID string                 `bson:"transaction_id" json:"transaction_id"`
	TxRef         string                 `bson:"tx_ref" json:"tx_ref"`
	Amount        float64                `bson:"amount" json:"amount"`
	Currency      string                 `bson:"currency" json:"currency"`
	Status        string                 `bson:"status" json:"status"`
	Source        string                 `bson:"source" json:"source"`
	PaymentType   string                 `bson:"payment_type" json:"payment_type"`
	GatewayData   map[string]interface{} `bson:"flutterwave_response" json:"flutterwave_response"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`

	// Extra holds caller-supplied order fields merged into the document.
	Extra map[string]interface{} `bson:",inline" json:"-"`
}
