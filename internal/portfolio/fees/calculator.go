package fees

import (
	"github.com/shopspring/decimal"

	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
)

// DefaultRate is the proportional trading fee applied to gross trade value.
const DefaultRate = 0.000115

// Breakdown is the complete price/fees/total triple for one trade.
// Price and Fees keep full precision; callers round for display.
type Breakdown struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Fees     float64 `json:"fees"`
	Total    float64 `json:"total"`
}

// Calculator derives the missing leg of the price/fees/total triple under
// a fixed proportional fee rate. Internally it computes with decimals so
// the algebraic inversion stays exact until the float boundary.
type Calculator struct {
	rate decimal.Decimal
}

func New(rate float64) Calculator {
	return Calculator{rate: decimal.NewFromFloat(rate)}
}

func NewDefault() Calculator {
	return New(DefaultRate)
}

// Forward derives fees and total from a unit price and quantity.
// For a buy: total = price*quantity + fees. For a sell: total = price*quantity - fees.
func (c Calculator) Forward(price, quantity float64, transactionType models.TransactionType) (Breakdown, error) {
	if err := validateType(transactionType); err != nil {
		return Breakdown{}, err
	}
	if quantity <= 0 {
		return Breakdown{}, portfolioErrors.NewValidationError("quantity must be greater than zero")
	}
	if price <= 0 {
		return Breakdown{}, portfolioErrors.NewValidationError("price must be greater than zero")
	}

	p := decimal.NewFromFloat(price)
	q := decimal.NewFromFloat(quantity)
	subtotal := p.Mul(q)
	feeAmount := subtotal.Mul(c.rate)

	total := subtotal.Add(feeAmount)
	if transactionType == models.TransactionSell {
		total = subtotal.Sub(feeAmount)
	}

	return Breakdown{
		Price:    price,
		Quantity: quantity,
		Fees:     feeAmount.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}, nil
}

// Inverse derives the unit price from a desired cash total and quantity by
// inverting the fee formula: buy p = total / (q*(1+r)), sell p = total / (q*(1-r)).
func (c Calculator) Inverse(total, quantity float64, transactionType models.TransactionType) (Breakdown, error) {
	if err := validateType(transactionType); err != nil {
		return Breakdown{}, err
	}
	if quantity <= 0 {
		return Breakdown{}, portfolioErrors.NewValidationError("quantity must be greater than zero")
	}
	if total <= 0 {
		return Breakdown{}, portfolioErrors.NewValidationError("total must be greater than zero")
	}

	t := decimal.NewFromFloat(total)
	q := decimal.NewFromFloat(quantity)
	one := decimal.NewFromInt(1)

	factor := one.Add(c.rate)
	if transactionType == models.TransactionSell {
		factor = one.Sub(c.rate)
	}

	price := t.Div(q.Mul(factor))
	feeAmount := price.Mul(q).Mul(c.rate)

	return Breakdown{
		Price:    price.InexactFloat64(),
		Quantity: quantity,
		Fees:     feeAmount.InexactFloat64(),
		Total:    total,
	}, nil
}

func validateType(transactionType models.TransactionType) error {
	if transactionType != models.TransactionBuy && transactionType != models.TransactionSell {
		return portfolioErrors.NewValidationErrorf("transaction type must be %q or %q", models.TransactionBuy, models.TransactionSell)
	}
	return nil
}
