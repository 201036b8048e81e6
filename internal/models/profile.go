package models

// FinancialStatus carries the headline numbers of a user profile. Inflow and
// balance travel as currency-formatted strings ("₹1,50,000.00" style values
// appear in real upstream data); the analyzer is the single place where they
// are normalized to numbers.
type FinancialStatus struct {
	MonthlyInflow  string `json:"monthly_inflow"`
	CurrentBalance string `json:"current_balance"`
	RunwayDays     int    `json:"runway_days"`
}

type Profile struct {
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	FinancialStatus FinancialStatus `json:"financial_status"`
}
