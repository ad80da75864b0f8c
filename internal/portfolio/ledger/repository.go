package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// Repository persists transactions in the key-scoped store. The record id
// doubles as the store key: "{userId}:transaction:{suffix}".
type Repository interface {
	save(ctx context.Context, transaction models.Transaction) error
	get(ctx context.Context, id string) (*models.Transaction, error)
	delete(ctx context.Context, id string) error
	listByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type kvRepository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) Repository {
	return &kvRepository{store: store}
}

func transactionPrefix(userID string) string {
	return userID + ":transaction:"
}

func (r *kvRepository) save(ctx context.Context, transaction models.Transaction) error {
	value, err := json.Marshal(transaction)
	if err != nil {
		return fmt.Errorf("could not encode transaction %s: %w", transaction.ID, err)
	}
	return r.store.Set(ctx, transaction.ID, value)
}

func (r *kvRepository) get(ctx context.Context, id string) (*models.Transaction, error) {
	value, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var transaction models.Transaction
	if err := json.Unmarshal(value, &transaction); err != nil {
		return nil, fmt.Errorf("could not decode transaction %s: %w", id, err)
	}
	return &transaction, nil
}

func (r *kvRepository) delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

func (r *kvRepository) listByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	values, err := r.store.ListByPrefix(ctx, transactionPrefix(userID))
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(values))
	for _, value := range values {
		var transaction models.Transaction
		if err := json.Unmarshal(value, &transaction); err != nil {
			return nil, fmt.Errorf("could not decode transaction for user %s: %w", userID, err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}
