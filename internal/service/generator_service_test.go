package service

import (
	"math/rand"
	"regexp"
	"testing"

	"finpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededGenerator(seed int64) *GeneratorService {
	return NewGeneratorService(rand.New(rand.NewSource(seed)), zap.NewNop())
}

func TestGenerateProfile_CriticalScenario(t *testing.T) {
	gen := seededGenerator(1)

	profile := gen.GenerateProfile("AGT-9001", models.ScenarioCritical)
	assert.Equal(t, "AGT-9001", profile.UserID)
	assert.Equal(t, "Agent_9001", profile.Name)

	balance := parseMoney(profile.FinancialStatus.CurrentBalance)
	assert.GreaterOrEqual(t, balance, 100.0)
	assert.Less(t, balance, 4000.0)
	assert.GreaterOrEqual(t, profile.FinancialStatus.RunwayDays, 1)
	assert.LessOrEqual(t, profile.FinancialStatus.RunwayDays, 5)

	inflow := parseMoney(profile.FinancialStatus.MonthlyInflow)
	assert.Contains(t, []float64{80000, 150000, 250000}, inflow)
}

func TestGenerateProfile_StableScenario(t *testing.T) {
	gen := seededGenerator(2)

	profile := gen.GenerateProfile("AGT-0042", models.ScenarioStable)
	balance := parseMoney(profile.FinancialStatus.CurrentBalance)
	assert.GreaterOrEqual(t, balance, 50000.0)
	assert.Less(t, balance, 200000.0)
	assert.GreaterOrEqual(t, profile.FinancialStatus.RunwayDays, 30)
	assert.LessOrEqual(t, profile.FinancialStatus.RunwayDays, 90)
}

func TestGenerateTransactions_ShapeAndSigns(t *testing.T) {
	gen := seededGenerator(3)

	txs := gen.GenerateTransactions(200, models.ScenarioStable)
	require.Len(t, txs, 200)

	idPattern := regexp.MustCompile(`^TRX-[0-9A-F]{6}$`)
	for _, tx := range txs {
		assert.Regexp(t, idPattern, tx.ID)
		assert.Negative(t, tx.Amount, "generated transactions are outflows")
		assert.Contains(t, spendCategories, tx.Category)
		assert.Contains(t, tx.Tags, models.TagVerified)
		assert.False(t, tx.Timestamp.IsZero())
	}
}

func TestGenerateTransactions_AmountRanges(t *testing.T) {
	gen := seededGenerator(4)

	txs := gen.GenerateTransactions(500, models.ScenarioCritical)
	for _, tx := range txs {
		r, ok := categoryAmounts[tx.Category]
		if !ok {
			r = defaultAmount
		}
		amount := -tx.Amount
		assert.GreaterOrEqual(t, amount, r.min, "category %s", tx.Category)
		assert.LessOrEqual(t, amount, r.max, "category %s", tx.Category)
	}
}

func TestGenerateTransactions_TagRules(t *testing.T) {
	gen := seededGenerator(5)

	txs := gen.GenerateTransactions(500, models.ScenarioStable)
	for _, tx := range txs {
		amount := -tx.Amount
		switch tx.Category {
		case "Subscription":
			assert.True(t, tx.HasTag(models.TagRecurring))
		case "Food":
			assert.Equal(t, amount > 2000, tx.HasTag(models.TagHighValue),
				"HIGH_VALUE iff food amount exceeds 2000, got %.2f", amount)
		case "Transport":
			assert.Equal(t, amount > 800, tx.HasTag(models.TagSurgeDetected),
				"SURGE_DETECTED iff transport amount exceeds 800, got %.2f", amount)
		default:
			assert.Equal(t, []string{models.TagVerified}, tx.Tags)
		}
	}
}

func TestGenerateTransactions_ScenarioWeighting(t *testing.T) {
	gen := seededGenerator(6)

	counts := make(map[string]int)
	for _, tx := range gen.GenerateTransactions(2000, models.ScenarioCritical) {
		counts[tx.Category]++
	}

	// Transport and Food carry 70% of the weight under stress; Shopping only 10%.
	assert.Greater(t, counts["Transport"]+counts["Food"], counts["Shopping"]*3)
}
