package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransactions_WrapperObject(t *testing.T) {
	data := []byte(`{"transactions": [{"id": "TRX-A1B2C3", "merchant": "Zomato", "amount": -450.5, "category": "Food", "tags": ["VERIFIED"]}]}`)

	txs, err := DecodeTransactions(data)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "TRX-A1B2C3", txs[0].ID)
	assert.Equal(t, -450.5, txs[0].Amount)
}

func TestDecodeTransactions_BareList(t *testing.T) {
	data := []byte(`[{"id": "TRX-000001", "merchant": "Uber", "amount": -120, "category": "Transport", "tags": ["VERIFIED"]}]`)

	txs, err := DecodeTransactions(data)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Uber", txs[0].Merchant)
}

func TestDecodeTransactions_Garbage(t *testing.T) {
	_, err := DecodeTransactions([]byte(`"just a string"`))
	require.Error(t, err)
}

func TestHasTag(t *testing.T) {
	tx := Transaction{Tags: []string{TagVerified, TagHighValue}}
	assert.True(t, tx.HasTag(TagHighValue))
	assert.False(t, tx.HasTag(TagSurgeDetected))
}

func TestLedgerTransactions_SignConversion(t *testing.T) {
	record := StatementRecord{
		Transactions: []StatementTransaction{
			{Date: "2024-03-02", Description: "Wal-Mart", CategoryHint: "Shopping", Type: TxTypeDebit, Amount: 45.10},
			{Date: "2024-03-05", Description: "Payroll", CategoryHint: "Income", Type: TxTypeCredit, Amount: 1500.00, IsRecurring: true},
		},
	}

	ledger := record.LedgerTransactions()
	require.Len(t, ledger, 2)

	assert.Equal(t, -45.10, ledger[0].Amount, "debits become negative")
	assert.Equal(t, 1500.00, ledger[1].Amount, "credits stay positive")
	assert.Equal(t, []string{TagVerified}, ledger[0].Tags)
	assert.Equal(t, []string{TagVerified, TagRecurring}, ledger[1].Tags)
	assert.Equal(t, "Wal-Mart", ledger[0].Merchant)
	assert.Equal(t, 2024, ledger[0].Timestamp.Year())
}

func TestLedgerTransactions_DeterministicIDs(t *testing.T) {
	record := StatementRecord{
		Transactions: make([]StatementTransaction, 18),
	}
	for i := range record.Transactions {
		record.Transactions[i] = StatementTransaction{Date: "2024-01-01", Type: TxTypeDebit, Amount: 1}
	}

	ledger := record.LedgerTransactions()
	assert.Equal(t, "TRX-000000", ledger[0].ID)
	assert.Equal(t, "TRX-00000F", ledger[15].ID)
	assert.Equal(t, "TRX-000011", ledger[17].ID)
}

func TestLedgerTransactions_BadDateZeroTimestamp(t *testing.T) {
	record := StatementRecord{
		Transactions: []StatementTransaction{
			{Date: "03/02/2024", Description: "X", Type: TxTypeDebit, Amount: 1},
		},
	}
	ledger := record.LedgerTransactions()
	assert.True(t, ledger[0].Timestamp.IsZero())
}
