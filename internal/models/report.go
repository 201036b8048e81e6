package models

// AnalyzerVersion is stamped into every report's meta block.
const AnalyzerVersion = "v2.1.0"

type ReportMeta struct {
	AnalyzedAt      string `json:"analyzed_at"`
	AnalyzerVersion string `json:"analyzer_version"`
}

type ReportScores struct {
	FinancialHealthScore int    `json:"financial_health_score"`
	SurvivalProbability  string `json:"survival_probability"`
	BurnRatePercentage   string `json:"burn_rate_percentage"`
}

// LeakageVector is one category's share of total outflow.
type LeakageVector struct {
	Category   string `json:"category"`
	TotalDrain string `json:"total_drain"`
	Percentage string `json:"percentage"`
}

type SubscriptionItem struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// VampireIndex aggregates recurring subscription-like charges.
type VampireIndex struct {
	DetectedSubs       int                `json:"detected_subs"`
	TotalRecurringCost string             `json:"total_recurring_cost"`
	Items              []SubscriptionItem `json:"items"`
}

// AnalysisReport is a derived, read-only artifact. Every analysis run
// produces a fresh report; persisted snapshots are never mutated in place.
type AnalysisReport struct {
	Meta            ReportMeta      `json:"meta"`
	Scores          ReportScores    `json:"scores"`
	LeakageVectors  []LeakageVector `json:"leakage_vectors"`
	VampireIndex    VampireIndex    `json:"vampire_index"`
	Anomalies       []Transaction   `json:"anomalies"`
	StrategicAdvice []string        `json:"strategic_advice"`
}
