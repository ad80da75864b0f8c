package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
)

type stubQuoteService struct {
	names map[string]string
}

func (s *stubQuoteService) GetQuote(_ context.Context, code string) (*marketdata.Quote, error) {
	name, ok := s.names[code]
	if !ok {
		return nil, marketdata.ErrQuoteNotFound
	}
	return &marketdata.Quote{Code: code, Name: name}, nil
}

func newTestService(names map[string]string) Service {
	return NewService(NewRepository(kvstore.NewMemoryStore()), &stubQuoteService{names: names})
}

func TestAdd_Idempotent(t *testing.T) {
	service := newTestService(nil)

	first, err := service.Add(context.Background(), "user-1", "600519", "贵州茅台")
	assert.NoError(t, err)
	assert.Equal(t, "user-1:watchlist:600519", first.ID)

	second, err := service.Add(context.Background(), "user-1", "600519", "茅台")
	assert.NoError(t, err)

	entries, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, entries, 1, "re-adding overwrites instead of duplicating")
	assert.Equal(t, "茅台", entries[0].StockName)
	assert.False(t, second.AddedAt.Before(first.AddedAt))
}

func TestAdd_Validation(t *testing.T) {
	service := newTestService(nil)

	_, err := service.Add(context.Background(), "user-1", "", "贵州茅台")
	assert.True(t, portfolioErrors.IsValidationError(err))

	_, err = service.Add(context.Background(), "user-1", "600519", "")
	assert.True(t, portfolioErrors.IsValidationError(err))
}

func TestRemove_MissingEntryIsNotAnError(t *testing.T) {
	service := newTestService(nil)

	assert.NoError(t, service.Remove(context.Background(), "user-1", "600519"))
}

func TestList_ScopedToUser(t *testing.T) {
	store := kvstore.NewMemoryStore()
	service := NewService(NewRepository(store), &stubQuoteService{})

	_, err := service.Add(context.Background(), "user-1", "600519", "贵州茅台")
	assert.NoError(t, err)
	_, err = service.Add(context.Background(), "user-2", "000001", "平安银行")
	assert.NoError(t, err)

	entries, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "600519", entries[0].StockCode)
}

func TestRefreshNames(t *testing.T) {
	store := kvstore.NewMemoryStore()
	quotes := &stubQuoteService{names: map[string]string{"600519": "贵州茅台"}}
	service := NewService(NewRepository(store), quotes)

	_, err := service.Add(context.Background(), "user-1", "600519", "stale name")
	assert.NoError(t, err)
	_, err = service.Add(context.Background(), "user-1", "000001", "平安银行")
	assert.NoError(t, err)

	updated, err := service.RefreshNames(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, updated, "only the drifted name is rewritten; unresolvable tickers are skipped")

	entries, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	for _, entry := range entries {
		if entry.StockCode == "600519" {
			assert.Equal(t, "贵州茅台", entry.StockName)
		}
	}
}

func TestRefreshNames_IgnoresTransactionValues(t *testing.T) {
	store := kvstore.NewMemoryStore()
	// A transaction record shares the stockCode/stockName field names but
	// its id is outside the watchlist namespace.
	err := store.Set(context.Background(), "user-1:transaction:123_600519",
		[]byte(`{"id":"user-1:transaction:123_600519","stockCode":"600519","stockName":"old"}`))
	assert.NoError(t, err)

	quotes := &stubQuoteService{names: map[string]string{"600519": "贵州茅台"}}
	service := NewService(NewRepository(store), quotes)

	updated, err := service.RefreshNames(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, updated)

	value, err := store.Get(context.Background(), "user-1:transaction:123_600519")
	assert.NoError(t, err)
	assert.Contains(t, string(value), `"old"`)
}
