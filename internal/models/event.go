package models

import "strings"

const eventStatusSuccessful = "successful"

// TransactionEvent is the decoded record of a gateway payment attempt. It is
// ephemeral: never persisted as-is, only embedded into an Order. Raw keeps
// the gateway's data object untouched for audit.
type TransactionEvent struct {
	TransactionID string
	TxRef         string
	Status        string
	Amount        float64
	Currency      string
	PaymentType   string
	Raw           map[string]interface{}
}

// Successful reports whether the gateway settled the transaction. Anything
// else (pending, failed, provider-specific states) is ignorable, not an
// error.
func (e *TransactionEvent) Successful() bool {
	return strings.EqualFold(e.Status, eventStatusSuccessful)
}
