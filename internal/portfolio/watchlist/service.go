package watchlist

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// QuoteService is the slice of the market data service the name refresh
// job needs.
type QuoteService interface {
	GetQuote(ctx context.Context, code string) (*marketdata.Quote, error)
}

type Service interface {
	Add(ctx context.Context, userID, code, name string) (*models.WatchlistEntry, error)
	Remove(ctx context.Context, userID, code string) error
	List(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	RefreshNames(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	quotes QuoteService
}

func NewService(repo Repository, quotes QuoteService) Service {
	return &service{repo: repo, quotes: quotes}
}

// Add is idempotent: re-adding a tracked code overwrites the entry.
func (s *service) Add(ctx context.Context, userID, code, name string) (*models.WatchlistEntry, error) {
	if code == "" {
		return nil, portfolioErrors.NewValidationError("stockCode is required")
	}
	if name == "" {
		return nil, portfolioErrors.NewValidationError("stockName is required")
	}

	entry := models.WatchlistEntry{
		ID:        entryKey(userID, code),
		StockCode: code,
		StockName: name,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.repo.save(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove tolerates codes that were never tracked.
func (s *service) Remove(ctx context.Context, userID, code string) error {
	return s.repo.delete(ctx, userID, code)
}

func (s *service) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	entries, err := s.repo.listByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})
	return entries, nil
}

// RefreshNames re-resolves the display name of every tracked ticker and
// rewrites entries whose stored label drifted from the feed. Names are the
// only thing refreshed; prices are never stored.
func (s *service) RefreshNames(ctx context.Context) (int, error) {
	entries, err := s.repo.listAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, entry := range entries {
		quote, err := s.quotes.GetQuote(ctx, entry.StockCode)
		if err != nil {
			log.Printf("Skipping name refresh for %s: %v", entry.StockCode, err)
			continue
		}
		if quote.Name == "" || quote.Name == entry.StockName {
			continue
		}
		entry.StockName = quote.Name
		if err := s.repo.save(ctx, entry); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
