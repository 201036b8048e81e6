package models

import "time"

// Statement transaction types. Sign is carried here, never by a negative
// amount: debits are outflow, credits are inflow.
const (
	TxTypeDebit  = "debit"
	TxTypeCredit = "credit"
)

// StatementMetadata describes the source document of a parsed statement.
type StatementMetadata struct {
	Type          string `json:"type"`
	Institution   string `json:"institution"`
	AccountHolder string `json:"account_holder"`
	PeriodEnd     string `json:"period_end"`
	Currency      string `json:"currency"`
}

// StatementSummary holds the period totals of a statement.
type StatementSummary struct {
	OpeningBalance   float64 `json:"opening_balance"`
	ClosingBalance   float64 `json:"closing_balance"`
	TotalDeposits    float64 `json:"total_deposits"`
	TotalWithdrawals float64 `json:"total_withdrawals"`
}

// StatementTransaction is one transaction as extracted from a document.
// Amount is always non-negative; Type carries the direction.
type StatementTransaction struct {
	Date         string  `json:"date"`
	Description  string  `json:"description"`
	CategoryHint string  `json:"category_hint"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	IsRecurring  bool    `json:"is_recurring"`
}

// StatementRecord is the schema-validated result of statement extraction.
// Its JSON form is the wire contract consumers depend on; field names and
// shapes must remain stable.
type StatementRecord struct {
	Metadata     StatementMetadata      `json:"document_metadata"`
	Summary      StatementSummary       `json:"summary"`
	Transactions []StatementTransaction `json:"transactions"`
}

// LedgerTransactions converts the record's transactions into the signed
// ledger form. This is the only crossing point between the two sign
// conventions: debits become negative amounts, credits stay positive.
func (r *StatementRecord) LedgerTransactions() []Transaction {
	out := make([]Transaction, 0, len(r.Transactions))
	for i, tx := range r.Transactions {
		amount := tx.Amount
		if tx.Type == TxTypeDebit {
			amount = -amount
		}

		tags := []string{TagVerified}
		if tx.IsRecurring {
			tags = append(tags, TagRecurring)
		}

		ts, err := time.Parse("2006-01-02", tx.Date)
		if err != nil {
			ts = time.Time{}
		}

		out = append(out, Transaction{
			ID:        statementTxID(i),
			Timestamp: ts,
			Merchant:  tx.Description,
			Amount:    amount,
			Category:  tx.CategoryHint,
			Tags:      tags,
		})
	}
	return out
}

func statementTxID(i int) string {
	// Statement transactions have no upstream id; index-derived ids keep the
	// conversion deterministic.
	const digits = "0123456789ABCDEF"
	id := [6]byte{'0', '0', '0', '0', '0', '0'}
	for pos := len(id) - 1; pos >= 0 && i > 0; pos-- {
		id[pos] = digits[i%16]
		i /= 16
	}
	return "TRX-" + string(id[:])
}
