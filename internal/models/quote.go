package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const QuoteStatusPaid = "Paid"

// Quote is created by the quoting flow and mutated exactly once here, when
// its payment is confirmed.
type Quote struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TxRef   string             `bson:"tx_ref" json:"tx_ref"`
	Status  string             `bson:"status" json:"status"`
	OrderID string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	PaidAt  time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}
