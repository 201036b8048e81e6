package service

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"finpulse/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// spendCategories in generation order. Order matters: the weight tables
// below are positional.
var spendCategories = []string{"Transport", "Food", "Shopping", "Subscription", "Utilities", "Debt"}

var categoryWeights = map[models.Scenario][]int{
	models.ScenarioCritical: {35, 35, 10, 10, 5, 5},
	models.ScenarioStable:   {10, 20, 30, 20, 10, 10},
}

type amountRange struct {
	min, max float64
}

var categoryAmounts = map[string]amountRange{
	"Transport":    {150, 1200},
	"Food":         {350, 4500},
	"Shopping":     {1500, 15000},
	"Subscription": {199, 2500},
	"Debt":         {5000, 20000},
}

var defaultAmount = amountRange{100, 1000}

var merchantsByCategory = map[string][]string{
	"Transport":    {"Uber", "Ola Cabs", "Metro Card Recharge", "Shell Fuel"},
	"Food":         {"Zomato", "Swiggy", "Starbucks", "Big Bazaar Grocery"},
	"Shopping":     {"Amazon", "Flipkart", "Myntra", "Croma Electronics"},
	"Subscription": {"Netflix", "Spotify", "Adobe Cloud", "Gym Membership"},
	"Utilities":    {"Electricity Board", "Airtel Broadband", "Water Supply"},
	"Debt":         {"HDFC Loan EMI", "Credit Card Payment"},
}

var salaryOptions = []float64{80000, 150000, 250000}

// GeneratorService produces synthetic profiles and transaction batches for
// the two stress scenarios. The random source is injectable so tests can
// pin a seed.
type GeneratorService struct {
	rng    *rand.Rand
	logger *zap.Logger
}

func NewGeneratorService(rng *rand.Rand, logger *zap.Logger) *GeneratorService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GeneratorService{rng: rng, logger: logger}
}

// GenerateProfile builds a synthetic user profile for the scenario. Balances
// and inflow are rendered as display currency strings; the analyzer
// normalizes them back to numbers.
func (g *GeneratorService) GenerateProfile(userID string, scenario models.Scenario) models.Profile {
	salary := salaryOptions[g.rng.Intn(len(salaryOptions))]

	var balance float64
	var runway int
	if scenario == models.ScenarioCritical {
		balance = g.uniform(100, 4000)
		runway = 1 + g.rng.Intn(5)
	} else {
		balance = g.uniform(50000, 200000)
		runway = 30 + g.rng.Intn(61)
	}

	suffix := userID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return models.Profile{
		UserID: userID,
		Name:   "Agent_" + suffix,
		FinancialStatus: models.FinancialStatus{
			MonthlyInflow:  formatMoney(salary),
			CurrentBalance: formatMoney(balance),
			RunwayDays:     runway,
		},
	}
}

// GenerateTransactions builds count outflow transactions weighted by the
// scenario's spend mix. Amounts are negative (money leaving the account).
func (g *GeneratorService) GenerateTransactions(count int, scenario models.Scenario) []models.Transaction {
	weights := categoryWeights[scenario]
	if weights == nil {
		weights = categoryWeights[models.ScenarioStable]
	}

	txs := make([]models.Transaction, 0, count)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		category := g.weightedCategory(weights)
		amount := g.amountFor(category)

		merchants := merchantsByCategory[category]
		merchant := merchants[g.rng.Intn(len(merchants))]

		txs = append(txs, models.Transaction{
			ID:        newTransactionID(),
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Merchant:  merchant,
			Amount:    -amount,
			Category:  category,
			Tags:      tagsFor(category, amount),
		})
	}

	g.logger.Info("Generated transaction batch",
		zap.Int("count", count),
		zap.String("scenario", string(scenario)),
	)
	return txs
}

func (g *GeneratorService) weightedCategory(weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return spendCategories[i]
		}
		n -= w
	}
	return spendCategories[len(spendCategories)-1]
}

func (g *GeneratorService) amountFor(category string) float64 {
	r, ok := categoryAmounts[category]
	if !ok {
		r = defaultAmount
	}
	return math.Round(g.uniform(r.min, r.max)*100) / 100
}

func (g *GeneratorService) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func tagsFor(category string, amount float64) []string {
	tags := []string{models.TagVerified}
	if category == "Subscription" {
		tags = append(tags, models.TagRecurring)
	}
	if category == "Food" && amount > 2000 {
		tags = append(tags, models.TagHighValue)
	}
	if category == "Transport" && amount > 800 {
		tags = append(tags, models.TagSurgeDetected)
	}
	return tags
}

func newTransactionID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("TRX-%s", strings.ToUpper(hex[:6]))
}
