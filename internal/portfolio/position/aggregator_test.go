package position

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// Helper function to compare floating-point values
func areEqualRounded(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func buy(code string, price, quantity, fees float64) models.Transaction {
	return models.Transaction{
		StockCode: code,
		Type:      models.TransactionBuy,
		Price:     price,
		Quantity:  quantity,
		Fees:      fees,
		Total:     price*quantity + fees,
	}
}

func sell(code string, price, quantity, fees float64) models.Transaction {
	return models.Transaction{
		StockCode: code,
		Type:      models.TransactionSell,
		Price:     price,
		Quantity:  quantity,
		Fees:      fees,
		Total:     price*quantity - fees,
	}
}

func TestAggregate_TwoBuys(t *testing.T) {
	transactions := []models.Transaction{
		buy("600519", 1600, 10, 18.4),
		buy("600519", 1700, 10, 19.55),
	}

	position := Aggregate(transactions)

	assert.Equal(t, 20.0, position.TotalQuantity)
	assert.True(t, areEqualRounded(position.TotalCost, 33037.95), "expected total cost 33037.95, got %v", position.TotalCost)
	assert.InDelta(t, 1651.8975, position.AverageCost, 1e-9)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	transactions := []models.Transaction{
		buy("600519", 1600, 10, 18.4),
		sell("600519", 1750, 5, 10),
		buy("600519", 1700, 10, 19.55),
	}

	baseline := Aggregate(transactions)

	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range permutations {
		permuted := make([]models.Transaction, len(order))
		for i, idx := range order {
			permuted[i] = transactions[idx]
		}
		position := Aggregate(permuted)
		assert.Equal(t, baseline.TotalQuantity, position.TotalQuantity)
		assert.Equal(t, baseline.TotalCost, position.TotalCost)
	}
}

func TestAggregate_Empty(t *testing.T) {
	position := Aggregate(nil)

	assert.Equal(t, 0.0, position.TotalQuantity)
	assert.Equal(t, 0.0, position.TotalCost)
	assert.Equal(t, 0.0, position.AverageCost)
}

func TestAggregate_UsesStoredTotals(t *testing.T) {
	// The stored total is authoritative even when it disagrees with
	// price*quantity+fees.
	transactions := []models.Transaction{
		{StockCode: "600519", Type: models.TransactionBuy, Price: 100, Quantity: 10, Fees: 1, Total: 999},
	}

	position := Aggregate(transactions)
	assert.Equal(t, 999.0, position.TotalCost)
}

func TestAggregateByCode_ClosedPositionExcludedFromOverview(t *testing.T) {
	transactions := []models.Transaction{
		{StockCode: "000001", Type: models.TransactionBuy, Quantity: 100, Total: 1000},
		{StockCode: "000001", Type: models.TransactionSell, Quantity: 100, Total: 1100},
		buy("600519", 1600, 10, 18.4),
	}

	positions := AggregateByCode(transactions)
	assert.Len(t, positions, 2)

	flat := positions[0]
	assert.Equal(t, "000001", flat.StockCode)
	assert.Equal(t, 0.0, flat.TotalQuantity)
	assert.Equal(t, 0.0, flat.AverageCost)

	summary := Summarize([]models.Holding{
		ApplyQuote(flat, &marketdata.Quote{Price: 12}),
		ApplyQuote(positions[1], nil),
	})
	assert.Equal(t, 0.0, summary.TotalMarketValue, "closed position must not contribute to the summary")
	assert.Equal(t, 0.0, summary.TotalCost)
}

func TestApplyQuote(t *testing.T) {
	position := Aggregate([]models.Transaction{buy("600519", 1600, 10, 0)})

	holding := ApplyQuote(position, &marketdata.Quote{Name: "贵州茅台", Price: 1700, Change: 20, ChangePercent: 1.19})

	assert.True(t, holding.HasQuote)
	assert.Equal(t, "贵州茅台", holding.Name)
	assert.True(t, areEqualRounded(holding.MarketValue, 17000))
	assert.True(t, areEqualRounded(holding.ProfitLoss, 1000))
	assert.True(t, areEqualRounded(holding.ProfitLossPercent, 6.25))
}

func TestApplyQuote_NoQuote(t *testing.T) {
	position := Aggregate([]models.Transaction{buy("600519", 1600, 10, 0)})

	holding := ApplyQuote(position, nil)

	assert.False(t, holding.HasQuote)
	assert.Equal(t, 0.0, holding.MarketValue)
	assert.Equal(t, 0.0, holding.ProfitLoss)
}

func TestSummarize_SummedTotalsNotAveragedPercents(t *testing.T) {
	// Two open positions of unequal size with opposite-sign returns. The
	// per-ticker percentages average to zero; the correct overall return
	// comes from the summed totals and must not be zero.
	large := models.Position{StockCode: "600519", TotalQuantity: 10, TotalCost: 1000}
	small := models.Position{StockCode: "000001", TotalQuantity: 10, TotalCost: 100}

	holdings := []models.Holding{
		ApplyQuote(large, &marketdata.Quote{Price: 110}), // market value 1100, +10%
		ApplyQuote(small, &marketdata.Quote{Price: 9}),   // market value 90, -10%
	}

	averaged := (holdings[0].ProfitLossPercent + holdings[1].ProfitLossPercent) / 2
	assert.True(t, areEqualRounded(averaged, 0))

	summary := Summarize(holdings)
	assert.True(t, areEqualRounded(summary.TotalMarketValue, 1190))
	assert.True(t, areEqualRounded(summary.TotalCost, 1100))
	assert.True(t, areEqualRounded(summary.TotalReturnPercent, 8.18), "expected 8.18, got %v", summary.TotalReturnPercent)
	assert.NotEqual(t, averaged, summary.TotalReturnPercent)
}

func TestSummarize_UnpricedHoldingExcluded(t *testing.T) {
	priced := ApplyQuote(models.Position{StockCode: "600519", TotalQuantity: 10, TotalCost: 1000}, &marketdata.Quote{Price: 110})
	unpriced := ApplyQuote(models.Position{StockCode: "000001", TotalQuantity: 5, TotalCost: 500}, nil)

	summary := Summarize([]models.Holding{priced, unpriced})

	assert.True(t, areEqualRounded(summary.TotalCost, 1000), "unpriced holding must not skew the denominator")
	assert.True(t, areEqualRounded(summary.TotalMarketValue, 1100))
}
