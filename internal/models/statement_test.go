package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementRecord_JSONRoundTrip(t *testing.T) {
	original := StatementRecord{
		Metadata: StatementMetadata{
			Type:          "bank_statement",
			Institution:   "First National",
			AccountHolder: "Jordan Reyes",
			PeriodEnd:     "2024-03-31",
			Currency:      "USD",
		},
		Summary: StatementSummary{
			OpeningBalance:   1200.50,
			ClosingBalance:   900.25,
			TotalDeposits:    3000.00,
			TotalWithdrawals: 3300.25,
		},
		Transactions: []StatementTransaction{
			{
				Date:         "2024-03-02",
				Description:  "Wal-Mart",
				CategoryHint: "Shopping/Groceries",
				Type:         TxTypeDebit,
				Amount:       45.10,
				IsRecurring:  false,
			},
			{
				Date:         "2024-03-05",
				Description:  "Payroll",
				CategoryHint: "Income/Salary",
				Type:         TxTypeCredit,
				Amount:       1500.00,
				IsRecurring:  true,
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded StatementRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestStatementRecord_WireKeys(t *testing.T) {
	data, err := json.Marshal(StatementRecord{
		Transactions: []StatementTransaction{{Type: TxTypeDebit}},
	})
	require.NoError(t, err)

	s := string(data)
	for _, key := range []string{
		`"document_metadata"`, `"account_holder"`, `"period_end"`,
		`"opening_balance"`, `"closing_balance"`, `"total_deposits"`, `"total_withdrawals"`,
		`"category_hint"`, `"is_recurring"`,
	} {
		assert.Contains(t, s, key)
	}
}
