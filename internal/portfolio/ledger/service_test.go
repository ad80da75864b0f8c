package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

func newTestService() Service {
	return NewService(NewRepository(kvstore.NewMemoryStore()))
}

func validInput() Input {
	return Input{
		StockCode: "600519",
		StockName: "贵州茅台",
		Type:      models.TransactionBuy,
		Price:     1600,
		Quantity:  10,
		Date:      "2024-03-10",
		Fees:      18.4,
	}
}

func TestCreate_DerivesTotalWhenAbsent(t *testing.T) {
	service := newTestService()

	transaction, err := service.Create(context.Background(), "user-1", validInput())
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(transaction.ID, "user-1:transaction:"), "id must carry the user scope prefix, got %s", transaction.ID)
	assert.InDelta(t, 16018.4, transaction.Total, 1e-9)
	assert.False(t, transaction.CreatedAt.IsZero())
}

func TestCreate_DerivesSellTotal(t *testing.T) {
	service := newTestService()

	input := validInput()
	input.Type = models.TransactionSell
	transaction, err := service.Create(context.Background(), "user-1", input)
	assert.NoError(t, err)
	assert.InDelta(t, 15981.6, transaction.Total, 1e-9)
}

func TestCreate_TrustsProvidedTotal(t *testing.T) {
	service := newTestService()

	total := 16000.0
	input := validInput()
	input.Total = &total

	transaction, err := service.Create(context.Background(), "user-1", input)
	assert.NoError(t, err)
	assert.Equal(t, 16000.0, transaction.Total)
}

func TestCreate_Validation(t *testing.T) {
	service := newTestService()

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing code", func(i *Input) { i.StockCode = "" }},
		{"missing name", func(i *Input) { i.StockName = "" }},
		{"bad type", func(i *Input) { i.Type = "transfer" }},
		{"zero price", func(i *Input) { i.Price = 0 }},
		{"negative quantity", func(i *Input) { i.Quantity = -1 }},
		{"negative fees", func(i *Input) { i.Fees = -0.5 }},
		{"bad date", func(i *Input) { i.Date = "10/03/2024" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := service.Create(context.Background(), "user-1", input)
			assert.True(t, portfolioErrors.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestUpdate_ForeignScopeIsUnauthorized(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), "user-1", validInput())
	assert.NoError(t, err)

	_, err = service.Update(context.Background(), "user-2", created.ID, validInput())
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The record stays untouched.
	transactions, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, created.Total, transactions[0].Total)
}

func TestUpdate_PreservesCreatedAt(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), "user-1", validInput())
	assert.NoError(t, err)

	input := validInput()
	input.Price = 1700
	updated, err := service.Update(context.Background(), "user-1", created.ID, input)
	assert.NoError(t, err)

	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.InDelta(t, 17018.4, updated.Total, 1e-9)
}

func TestUpdate_MissingRecord(t *testing.T) {
	service := newTestService()

	_, err := service.Update(context.Background(), "user-1", "user-1:transaction:does-not-exist", validInput())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestDelete(t *testing.T) {
	service := newTestService()

	created, err := service.Create(context.Background(), "user-1", validInput())
	assert.NoError(t, err)

	assert.ErrorIs(t, service.Delete(context.Background(), "user-2", created.ID), ErrUnauthorized)
	assert.NoError(t, service.Delete(context.Background(), "user-1", created.ID))
	// Deleting an already removed id is not an error.
	assert.NoError(t, service.Delete(context.Background(), "user-1", created.ID))

	transactions, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestList_SortedByDateDescending(t *testing.T) {
	service := newTestService()

	for _, date := range []string{"2024-03-10", "2024-05-02", "2024-01-20"} {
		input := validInput()
		input.Date = date
		_, err := service.Create(context.Background(), "user-1", input)
		assert.NoError(t, err)
	}

	transactions, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, transactions, 3)
	assert.Equal(t, "2024-05-02", transactions[0].Date)
	assert.Equal(t, "2024-03-10", transactions[1].Date)
	assert.Equal(t, "2024-01-20", transactions[2].Date)
}

func TestList_ScopedToUser(t *testing.T) {
	store := kvstore.NewMemoryStore()
	service := NewService(NewRepository(store))

	_, err := service.Create(context.Background(), "user-1", validInput())
	assert.NoError(t, err)
	_, err = service.Create(context.Background(), "user-2", validInput())
	assert.NoError(t, err)

	transactions, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.True(t, strings.HasPrefix(transactions[0].ID, "user-1:"))
}
