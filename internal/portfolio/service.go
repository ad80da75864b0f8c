package portfolio

import (
	"context"

	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/ledger"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/position"
)

// QuoteService is the slice of the market data service the portfolio
// view needs.
type QuoteService interface {
	GetQuote(ctx context.Context, code string) (*marketdata.Quote, error)
	GetQuotes(ctx context.Context, codes []string) map[string]*marketdata.Quote
}

type Service interface {
	Overview(ctx context.Context, userID string) (*models.PortfolioOverview, error)
}

type service struct {
	ledger ledger.Service
	quotes QuoteService
}

func NewService(ledgerService ledger.Service, quotes QuoteService) Service {
	return &service{ledger: ledgerService, quotes: quotes}
}

// Overview folds the user's ledger into open positions and prices them
// with freshly resolved quotes. Tickers whose net quantity is not positive
// carry no open position and are left out entirely. Quote resolution is
// concurrent and partial: a holding whose quote fails stays in the list
// with zero market fields and is excluded from the summary.
func (s *service) Overview(ctx context.Context, userID string) (*models.PortfolioOverview, error) {
	transactions, err := s.ledger.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	var open []models.Position
	for _, p := range position.AggregateByCode(transactions) {
		if p.TotalQuantity > 0 {
			open = append(open, p)
		}
	}

	codes := make([]string, 0, len(open))
	for _, p := range open {
		codes = append(codes, p.StockCode)
	}
	quotes := s.quotes.GetQuotes(ctx, codes)

	holdings := make([]models.Holding, 0, len(open))
	for _, p := range open {
		holdings = append(holdings, position.ApplyQuote(p, quotes[p.StockCode]))
	}

	return &models.PortfolioOverview{
		Holdings: holdings,
		Summary:  position.Summarize(holdings),
	}, nil
}
