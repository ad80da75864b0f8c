package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// Repository persists watchlist entries keyed as "{userId}:watchlist:{code}",
// so writing the same code twice overwrites the entry.
type Repository interface {
	save(ctx context.Context, entry models.WatchlistEntry) error
	delete(ctx context.Context, userID, code string) error
	listByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	listAll(ctx context.Context) ([]models.WatchlistEntry, error)
}

type kvRepository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) Repository {
	return &kvRepository{store: store}
}

func entryKey(userID, code string) string {
	return userID + ":watchlist:" + code
}

func (r *kvRepository) save(ctx context.Context, entry models.WatchlistEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("could not encode watchlist entry %s: %w", entry.ID, err)
	}
	return r.store.Set(ctx, entry.ID, value)
}

func (r *kvRepository) delete(ctx context.Context, userID, code string) error {
	return r.store.Delete(ctx, entryKey(userID, code))
}

func (r *kvRepository) listByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	values, err := r.store.ListByPrefix(ctx, userID+":watchlist:")
	if err != nil {
		return nil, err
	}
	return decodeEntries(values, false)
}

// listAll scans every value in the store and keeps those whose id marks
// them as watchlist entries. Used by the name refresh job, which has no
// user enumeration to work from.
func (r *kvRepository) listAll(ctx context.Context) ([]models.WatchlistEntry, error) {
	values, err := r.store.ListByPrefix(ctx, "")
	if err != nil {
		return nil, err
	}
	return decodeEntries(values, true)
}

func decodeEntries(values [][]byte, filter bool) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0, len(values))
	for _, value := range values {
		var entry models.WatchlistEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			if filter {
				continue
			}
			return nil, fmt.Errorf("could not decode watchlist entry: %w", err)
		}
		if filter && !strings.Contains(entry.ID, ":watchlist:") {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
