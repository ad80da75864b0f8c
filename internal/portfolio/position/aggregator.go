package position

import (
	"sort"

	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// Aggregate folds a ticker's transactions into a position. The fold is
// order-independent: the backing store does not guarantee any ordering,
// so the accumulation is a plain signed sum. A buy adds its stored total
// to the cost basis, a sell subtracts its stored total; the totals are
// trusted as stored and never re-derived from price/quantity/fees.
func Aggregate(transactions []models.Transaction) models.Position {
	var position models.Position
	for _, t := range transactions {
		if position.StockCode == "" {
			position.StockCode = t.StockCode
		}
		if position.StockName == "" {
			position.StockName = t.StockName
		}
		switch t.Type {
		case models.TransactionBuy:
			position.TotalQuantity += t.Quantity
			position.TotalCost += t.Total
		case models.TransactionSell:
			position.TotalQuantity -= t.Quantity
			position.TotalCost -= t.Total
		}
	}
	if position.TotalQuantity > 0 {
		position.AverageCost = position.TotalCost / position.TotalQuantity
	}
	return position
}

// AggregateByCode groups a full ledger by ticker and folds each group.
// Output is sorted by ticker for a stable display order.
func AggregateByCode(transactions []models.Transaction) []models.Position {
	grouped := make(map[string][]models.Transaction)
	for _, t := range transactions {
		grouped[t.StockCode] = append(grouped[t.StockCode], t)
	}

	positions := make([]models.Position, 0, len(grouped))
	for _, group := range grouped {
		positions = append(positions, Aggregate(group))
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].StockCode < positions[j].StockCode
	})
	return positions
}

// ApplyQuote extends a position with live market figures. With no quote
// the market fields stay zero and HasQuote is false.
func ApplyQuote(position models.Position, quote *marketdata.Quote) models.Holding {
	holding := models.Holding{Position: position}
	if quote == nil {
		return holding
	}

	holding.HasQuote = true
	holding.Name = quote.Name
	holding.Price = quote.Price
	holding.Change = quote.Change
	holding.ChangePercent = quote.ChangePercent
	holding.MarketValue = quote.Price * position.TotalQuantity
	holding.ProfitLoss = holding.MarketValue - position.TotalCost
	if position.TotalCost != 0 {
		holding.ProfitLossPercent = holding.ProfitLoss / position.TotalCost * 100
	}
	return holding
}

// Summarize computes portfolio totals over priced open positions. The
// overall return percentage is derived from the summed totals, never by
// averaging per-ticker percentages.
func Summarize(holdings []models.Holding) models.PortfolioSummary {
	var summary models.PortfolioSummary
	for _, h := range holdings {
		if !h.HasQuote || h.TotalQuantity <= 0 {
			continue
		}
		summary.TotalMarketValue += h.MarketValue
		summary.TotalCost += h.TotalCost
	}
	summary.TotalProfitLoss = summary.TotalMarketValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.TotalReturnPercent = summary.TotalProfitLoss / summary.TotalCost * 100
	}
	return summary
}
