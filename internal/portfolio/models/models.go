package models

import "time"

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one buy or sell record in a user's ledger. The stored
// Total is authoritative: gross cost for a buy, net proceeds for a sell.
// It is computed once at write time and never re-derived on read.
type Transaction struct {
	ID        string          `json:"id"`
	StockCode string          `json:"stockCode"`
	StockName string          `json:"stockName"`
	Type      TransactionType `json:"type"`
	Price     float64         `json:"price"`
	Quantity  float64         `json:"quantity"`
	Date      string          `json:"date"`
	Fees      float64         `json:"fees"`
	Total     float64         `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// WatchlistEntry tracks a ticker independently of whether a position is held.
type WatchlistEntry struct {
	ID        string    `json:"id"`
	StockCode string    `json:"stockCode"`
	StockName string    `json:"stockName"`
	AddedAt   time.Time `json:"addedAt"`
}

// Position is derived from a ticker's transaction history, never persisted.
type Position struct {
	StockCode     string  `json:"stockCode"`
	StockName     string  `json:"stockName"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalCost     float64 `json:"totalCost"`
	AverageCost   float64 `json:"averageCost"`
}

// Holding is a position combined with a live quote. HasQuote is false when
// the quote could not be resolved; the market fields are then zero and the
// holding is excluded from portfolio summaries.
type Holding struct {
	Position
	Name              string  `json:"name,omitempty"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangePercent     float64 `json:"changePercent"`
	MarketValue       float64 `json:"marketValue"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
	HasQuote          bool    `json:"hasQuote"`
}

// PortfolioSummary is computed from the summed totals of all priced
// holdings, not by averaging per-ticker percentages.
type PortfolioSummary struct {
	TotalMarketValue   float64 `json:"totalMarketValue"`
	TotalCost          float64 `json:"totalCost"`
	TotalProfitLoss    float64 `json:"totalProfitLoss"`
	TotalReturnPercent float64 `json:"totalReturnPercent"`
}

type PortfolioOverview struct {
	Holdings []Holding        `json:"holdings"`
	Summary  PortfolioSummary `json:"summary"`
}
