package portfolio

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	portfolioErrors "github.com/jiahaozhu/StockTracker/internal/portfolio/errors"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/fees"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/ledger"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/models"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/watchlist"
)

type Handler struct {
	ledgerService    ledger.Service
	watchlistService watchlist.Service
	portfolioService Service
	quoteService     QuoteService
	calculator       fees.Calculator
	respondJSON      func(w http.ResponseWriter, status int, payload interface{})
	respondError     func(w http.ResponseWriter, status int, message string)
}

func NewHandler(
	ledgerService ledger.Service,
	watchlistService watchlist.Service,
	portfolioService Service,
	quoteService QuoteService,
	calculator fees.Calculator,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	return &Handler{
		ledgerService:    ledgerService,
		watchlistService: watchlistService,
		portfolioService: portfolioService,
		quoteService:     quoteService,
		calculator:       calculator,
		respondJSON:      respondJSON,
		respondError:     respondError,
	}
}

func (h *Handler) getUserIDReq(w http.ResponseWriter, r *http.Request) string {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return ""
	}
	return userID
}

// GET /api/protected/quotes/{code}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if userID := h.getUserIDReq(w, r); userID == "" {
		return
	}
	code := r.PathValue("code")
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "Stock code is required")
		return
	}

	quote, err := h.quoteService.GetQuote(r.Context(), code)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quote)
}

type watchlistRow struct {
	models.WatchlistEntry
	Quote *marketdata.Quote `json:"quote,omitempty"`
}

// GET /api/protected/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	entries, err := h.watchlistService.List(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		codes = append(codes, entry.StockCode)
	}
	quotes := h.quoteService.GetQuotes(r.Context(), codes)

	rows := make([]watchlistRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, watchlistRow{WatchlistEntry: entry, Quote: quotes[entry.StockCode]})
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"watchlist": rows})
}

type addWatchlistRequest struct {
	StockCode string `json:"stockCode"`
	StockName string `json:"stockName"`
}

// POST /api/protected/watchlist
func (h *Handler) AddWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req addWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.watchlistService.Add(r.Context(), userID, req.StockCode, req.StockName)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"item": entry})
}

// DELETE /api/protected/watchlist/{code}
func (h *Handler) RemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	if err := h.watchlistService.Remove(r.Context(), userID, r.PathValue("code")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GET /api/protected/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	transactions, err := h.ledgerService.List(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}

// POST /api/protected/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var input ledger.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := h.ledgerService.Create(r.Context(), userID, input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"transaction": transaction})
}

// PUT /api/protected/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var input ledger.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := h.ledgerService.Update(r.Context(), userID, r.PathValue("id"), input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"transaction": transaction})
}

// DELETE /api/protected/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	if err := h.ledgerService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type previewRequest struct {
	Type     models.TransactionType `json:"type"`
	Price    *float64               `json:"price,omitempty"`
	Total    *float64               `json:"total,omitempty"`
	Quantity float64                `json:"quantity"`
}

// POST /api/protected/transactions/preview
//
// Derives the complementary price/fees/total triple before a transaction
// is appended. Exactly one of price (forward mode) or total (inverse
// mode) must be given.
func (h *Handler) PreviewTransaction(w http.ResponseWriter, r *http.Request) {
	if userID := h.getUserIDReq(w, r); userID == "" {
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var breakdown fees.Breakdown
	var err error
	switch {
	case req.Price != nil && req.Total == nil:
		breakdown, err = h.calculator.Forward(*req.Price, req.Quantity, req.Type)
	case req.Total != nil && req.Price == nil:
		breakdown, err = h.calculator.Inverse(*req.Total, req.Quantity, req.Type)
	default:
		h.respondError(w, http.StatusBadRequest, "Provide exactly one of price or total")
		return
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	breakdown.Price = round2(breakdown.Price)
	breakdown.Fees = round2(breakdown.Fees)
	breakdown.Total = round2(breakdown.Total)
	h.respondJSON(w, http.StatusOK, breakdown)
}

// GET /api/protected/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	overview, err := h.portfolioService.Overview(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, overview)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case portfolioErrors.IsValidationError(err), errors.Is(err, marketdata.ErrInvalidStockCode):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrUnauthorized):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrTransactionNotFound), errors.Is(err, marketdata.ErrQuoteNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, marketdata.ErrInvalidFormat), errors.Is(err, marketdata.ErrUpstreamUnavailable):
		h.respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
