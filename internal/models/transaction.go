package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Scenario string

const (
	ScenarioCritical Scenario = "CRITICAL"
	ScenarioStable   Scenario = "STABLE"
)

// Transaction tags. VERIFIED is present on every generated transaction,
// the rest are derived from category and amount.
const (
	TagVerified      = "VERIFIED"
	TagRecurring     = "RECURRING"
	TagHighValue     = "HIGH_VALUE"
	TagSurgeDetected = "SURGE_DETECTED"
)

// Transaction is the ledger form of a transaction: the amount is signed,
// negative values are outflow and positive values are inflow. This is a
// different contract from StatementTransaction, which carries the sign in
// its type field; the two are never unified.
type Transaction struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Merchant  string    `json:"merchant"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
}

// HasTag reports whether the transaction carries the given tag.
func (t *Transaction) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// TransactionBatch is the persisted wire shape of a transaction list.
type TransactionBatch struct {
	Transactions []Transaction `json:"transactions"`
}

// DecodeTransactions resolves the two accepted input shapes, a bare JSON
// array or a {"transactions": [...]} wrapper, into the canonical slice.
// The ambiguity is resolved here once and never carried downstream.
func DecodeTransactions(data []byte) ([]Transaction, error) {
	var batch TransactionBatch
	if err := json.Unmarshal(data, &batch); err == nil && batch.Transactions != nil {
		return batch.Transactions, nil
	}

	var list []Transaction
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("transactions payload is neither a list nor a wrapper object: %w", err)
	}
	return list, nil
}
