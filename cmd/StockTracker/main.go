package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	database "github.com/jiahaozhu/StockTracker/db"
	"github.com/jiahaozhu/StockTracker/internal/auth"
	"github.com/jiahaozhu/StockTracker/internal/kvstore"
	"github.com/jiahaozhu/StockTracker/internal/marketdata"
	"github.com/jiahaozhu/StockTracker/internal/portfolio"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/fees"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/ledger"
	"github.com/jiahaozhu/StockTracker/internal/portfolio/watchlist"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		log.Printf("Started %s %s [%s]", r.Method, r.URL.Path, requestID)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v [%s]", r.URL.Path, time.Since(start), requestID)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router           *http.ServeMux
	authMiddleware   *auth.Middleware
	portfolioHandler *portfolio.Handler
	dbService        *database.DBService
}

func NewServer(authMiddleware *auth.Middleware, portfolioHandler *portfolio.Handler, dbService *database.DBService) *Server {
	return &Server{
		authMiddleware:   authMiddleware,
		portfolioHandler: portfolioHandler,
		dbService:        dbService,
		router:           http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		return errors.New("no DB_CONNECTION_STRING Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	stats := s.dbService.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (caller identity required)
	requireUser := s.authMiddleware.RequireUser()
	protectedRoutes := http.NewServeMux()

	// QUOTES API
	protectedRoutes.Handle("GET /api/protected/quotes/{code}",
		requireUser(http.HandlerFunc(s.portfolioHandler.GetQuote)))

	// WATCHLIST API
	protectedRoutes.Handle("GET /api/protected/watchlist",
		requireUser(http.HandlerFunc(s.portfolioHandler.GetWatchlist)))

	protectedRoutes.Handle("POST /api/protected/watchlist",
		requireUser(http.HandlerFunc(s.portfolioHandler.AddWatchlist)))

	protectedRoutes.Handle("DELETE /api/protected/watchlist/{code}",
		requireUser(http.HandlerFunc(s.portfolioHandler.RemoveWatchlist)))

	// TRANSACTIONS API
	protectedRoutes.Handle("GET /api/protected/transactions",
		requireUser(http.HandlerFunc(s.portfolioHandler.ListTransactions)))

	protectedRoutes.Handle("POST /api/protected/transactions",
		requireUser(http.HandlerFunc(s.portfolioHandler.CreateTransaction)))

	protectedRoutes.Handle("POST /api/protected/transactions/preview",
		requireUser(http.HandlerFunc(s.portfolioHandler.PreviewTransaction)))

	protectedRoutes.Handle("PUT /api/protected/transactions/{id}",
		requireUser(http.HandlerFunc(s.portfolioHandler.UpdateTransaction)))

	protectedRoutes.Handle("DELETE /api/protected/transactions/{id}",
		requireUser(http.HandlerFunc(s.portfolioHandler.DeleteTransaction)))

	// PORTFOLIO API
	protectedRoutes.Handle("GET /api/protected/portfolio",
		requireUser(http.HandlerFunc(s.portfolioHandler.GetPortfolio)))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := dbService.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Could not prepare database schema: %v", err)
	}

	store := kvstore.NewPostgresStore(dbService.DB)

	resolver := marketdata.NewResolver(&http.Client{Timeout: 10 * time.Second})
	quoteService := marketdata.NewService(resolver)

	ledgerRepo := ledger.NewRepository(store)
	ledgerService := ledger.NewService(ledgerRepo)

	watchlistRepo := watchlist.NewRepository(store)
	watchlistService := watchlist.NewService(watchlistRepo, quoteService)

	portfolioService := portfolio.NewService(ledgerService, quoteService)

	portfolioHandler := portfolio.NewHandler(
		ledgerService,
		watchlistService,
		portfolioService,
		quoteService,
		fees.NewDefault(),
		respondJSON,
		respondError,
	)

	jwtManager := auth.NewJWTManager()
	authMiddleware := auth.NewMiddleware(jwtManager)

	server := NewServer(authMiddleware, portfolioHandler, dbService)
	server.RegisterRoutes()

	if err := StartWatchlistRefreshScheduler(watchlistService); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(http.HandlerFunc(server.router.ServeHTTP))
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// StartWatchlistRefreshScheduler re-resolves watchlist display names once a
// day. Names are the only cached thing in the system; prices are always
// fetched fresh.
func StartWatchlistRefreshScheduler(watchlistService watchlist.Service) error {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		updated, err := watchlistService.RefreshNames(context.Background())
		if err != nil {
			log.Printf("Error refreshing watchlist names: %v", err)
		} else {
			log.Printf("Watchlist names refreshed, %d updated.", updated)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
