package marketdata

import (
	"context"
	"log"
	"sync"
)

type Service interface {
	GetQuote(ctx context.Context, code string) (*Quote, error)
	GetQuotes(ctx context.Context, codes []string) map[string]*Quote
}

type service struct {
	resolver *Resolver
}

func NewService(resolver *Resolver) Service {
	return &service{resolver: resolver}
}

func (s *service) GetQuote(ctx context.Context, code string) (*Quote, error) {
	return s.resolver.Resolve(ctx, code)
}

// GetQuotes resolves several tickers concurrently. Resolutions are
// independent: a failed ticker is logged and omitted from the result, it
// never aborts the others.
func (s *service) GetQuotes(ctx context.Context, codes []string) map[string]*Quote {
	quotes := make(map[string]*Quote, len(codes))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			quote, err := s.resolver.Resolve(ctx, code)
			if err != nil {
				log.Printf("Could not resolve quote for %s: %v", code, err)
				return
			}
			mu.Lock()
			quotes[code] = quote
			mu.Unlock()
		}(code)
	}
	wg.Wait()

	return quotes
}
