package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

var (
	ErrUnauthorized        = errors.New("transaction does not belong to this user")
	ErrTransactionNotFound = errors.New("transaction doesn't exist")
)

const dateLayout = "2006-01-02"

// Input carries the client-supplied fields of a transaction. Total is a
// pointer: when the client omits it the service derives it once from the
// submitted fees, and the stored value is authoritative from then on.
type Input struct {
	StockCode string                 `json:"stockCode"`
	StockName string                 `json:"stockName"`
	Type      models.TransactionType `json:"type"`
	Price     float64                `json:"price"`
	Quantity  float64                `json:"quantity"`
	Date      string                 `json:"date"`
	Fees      float64                `json:"fees"`
	Total     *float64               `json:"total,omitempty"`
}

type Service interface {
	Create(ctx context.Context, userID string, input Input) (*models.Transaction, error)
	Update(ctx context.Context, userID, id string, input Input) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]models.Transaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, userID string, input Input) (*models.Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transaction := models.Transaction{
		ID:        newTransactionID(userID, input.StockCode, now),
		StockCode: input.StockCode,
		StockName: input.StockName,
		Type:      input.Type,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Date:      input.Date,
		Fees:      input.Fees,
		Total:     resolveTotal(input),
		CreatedAt: now,
	}

	if err := s.repo.save(ctx, transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *service) Update(ctx context.Context, userID, id string, input Input) (*models.Transaction, error) {
	if err := authorize(userID, id); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.get(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	transaction := models.Transaction{
		ID:        id,
		StockCode: input.StockCode,
		StockName: input.StockName,
		Type:      input.Type,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Date:      input.Date,
		Fees:      input.Fees,
		Total:     resolveTotal(input),
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.repo.save(ctx, transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Delete removes a record after the scope check. Deleting an id that no
// longer exists is not an error; last-write-wins, no conflict detection.
func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := authorize(userID, id); err != nil {
		return err
	}
	return s.repo.delete(ctx, id)
}

// List returns all of a user's transactions sorted by execution date
// descending, with newer records first on equal dates.
func (s *service) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	transactions, err := s.repo.listByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Date != transactions[j].Date {
			return transactions[i].Date > transactions[j].Date
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

// authorize enforces the id namespace rule: a mutation may only target ids
// carrying the caller's own scope prefix. A mismatch is Unauthorized, not
// NotFound; hiding record existence is not a goal here.
func authorize(userID, id string) error {
	if !strings.HasPrefix(id, userID+":") {
		return ErrUnauthorized
	}
	return nil
}

func newTransactionID(userID, stockCode string, now time.Time) string {
	// Millisecond timestamp plus a short random fragment so two writes in
	// the same millisecond cannot collide.
	return fmt.Sprintf("%s%d_%s_%s", transactionPrefix(userID), now.UnixMilli(), stockCode, uuid.NewString()[:8])
}

func resolveTotal(input Input) float64 {
	if input.Total != nil {
		return *input.Total
	}
	if input.Type == models.TransactionSell {
		return input.Price*input.Quantity - input.Fees
	}
	return input.Price*input.Quantity + input.Fees
}

func validateInput(input Input) error {
	if input.StockCode == "" {
		return portfolioErrors.NewValidationError("stockCode is required")
	}
	if input.StockName == "" {
		return portfolioErrors.NewValidationError("stockName is required")
	}
	if input.Type != models.TransactionBuy && input.Type != models.TransactionSell {
		return portfolioErrors.NewValidationErrorf("type must be %q or %q", models.TransactionBuy, models.TransactionSell)
	}
	if input.Price <= 0 {
		return portfolioErrors.NewValidationError("price must be greater than zero")
	}
	if input.Quantity <= 0 {
		return portfolioErrors.NewValidationError("quantity must be greater than zero")
	}
	if input.Fees < 0 {
		return portfolioErrors.NewValidationError("fees cannot be negative")
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return portfolioErrors.NewValidationErrorf("date must be in %s format", dateLayout)
	}
	return nil
}
