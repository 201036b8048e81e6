package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"finpulse/internal/models"
)

const (
	burnRateThreshold   = 80.0
	lowBalanceThreshold = 5000.0
	highRiskLimit       = 3
	criticalScore       = 40
	diningAdviceFloor   = 5000.0
)

// AnalyzerService computes the health report from a profile and its ledger.
// It is pure: no clock reads besides the report timestamp, no I/O, and the
// same inputs always produce the same scores and advice.
type AnalyzerService struct{}

func NewAnalyzerService() *AnalyzerService {
	return &AnalyzerService{}
}

func (a *AnalyzerService) Analyze(profile models.Profile, transactions []models.Transaction) models.AnalysisReport {
	inflow := parseMoney(profile.FinancialStatus.MonthlyInflow)
	balance := parseMoney(profile.FinancialStatus.CurrentBalance)

	// Drain totals take the absolute amount of every transaction, credits
	// included. Burn rate and leakage measure gross movement, not net flow,
	// so an incoming credit raises them too; published reports depend on
	// this accounting.
	var totalOutflow float64
	categoryOrder := make([]string, 0, 8)
	categoryTotals := make(map[string]float64)
	for _, tx := range transactions {
		drain := math.Abs(tx.Amount)
		totalOutflow += drain
		if _, seen := categoryTotals[tx.Category]; !seen {
			categoryOrder = append(categoryOrder, tx.Category)
		}
		categoryTotals[tx.Category] += drain
	}

	burnRate := 0.0
	if inflow > 0 {
		burnRate = (totalOutflow / inflow) * 100
	}

	highRisk := 0
	anomalies := make([]models.Transaction, 0, highRiskLimit)
	for _, tx := range transactions {
		if tx.HasTag(models.TagSurgeDetected) || tx.HasTag(models.TagHighValue) {
			highRisk++
			if len(anomalies) < highRiskLimit {
				anomalies = append(anomalies, tx)
			}
		}
	}

	score := 100
	if burnRate > burnRateThreshold {
		score -= 30
	}
	if balance < lowBalanceThreshold {
		score -= 40
	}
	if highRisk > highRiskLimit {
		score -= 10
	}
	if score < 0 {
		score = 0
	}

	vectors := make([]models.LeakageVector, 0, len(categoryOrder))
	if totalOutflow > 0 {
		for _, category := range categoryOrder {
			drain := categoryTotals[category]
			vectors = append(vectors, models.LeakageVector{
				Category:   category,
				TotalDrain: formatMoney(drain),
				Percentage: fmt.Sprintf("%.1f%%", (drain/totalOutflow)*100),
			})
		}
	}

	subs := make([]models.SubscriptionItem, 0, 4)
	var recurringCost float64
	for _, tx := range transactions {
		if !strings.Contains(tx.Category, "Subscription") {
			continue
		}
		cost := tx.Amount
		if cost < 0 {
			cost = -cost
		}
		subs = append(subs, models.SubscriptionItem{Name: tx.Merchant, Cost: cost})
		recurringCost += cost
	}

	advice := make([]string, 0, 3)
	if categoryTotals["Food"] > diningAdviceFloor {
		advice = append(advice, fmt.Sprintf(
			"Dining spend is high (%s). Cut dining by 50%% to save runway.",
			formatMoneyWhole(categoryTotals["Food"]),
		))
	}
	if len(subs) > 0 {
		advice = append(advice, fmt.Sprintf(
			"Detected %d active subscriptions. Review for cancellation.", len(subs),
		))
	}
	if score < criticalScore {
		advice = append(advice, "CRITICAL: Immediate liquidity injection required.")
	}

	return models.AnalysisReport{
		Meta: models.ReportMeta{
			AnalyzedAt:      time.Now().UTC().Format(time.RFC3339),
			AnalyzerVersion: models.AnalyzerVersion,
		},
		Scores: models.ReportScores{
			FinancialHealthScore: score,
			SurvivalProbability:  fmt.Sprintf("%d%%", score),
			BurnRatePercentage:   fmt.Sprintf("%.1f%%", burnRate),
		},
		LeakageVectors: vectors,
		VampireIndex: models.VampireIndex{
			DetectedSubs:       len(subs),
			TotalRecurringCost: formatMoney(recurringCost),
			Items:              subs,
		},
		Anomalies:       anomalies,
		StrategicAdvice: advice,
	}
}
