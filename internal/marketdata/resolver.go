package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrQuoteNotFound       = errors.New("stock not found on any quote feed")
	ErrUpstreamUnavailable = errors.New("quote feed unavailable")
	ErrInvalidFormat       = errors.New("invalid quote payload received")
)

// resolveState drives the two-feed fallback chain:
// query primary -> parse primary -> [done | query secondary] ->
// parse secondary -> [done | not found].
type resolveState int

const (
	stateQueryPrimary resolveState = iota
	stateQuerySecondary
	stateDone
	stateNotFound
)

// Resolver resolves a normalized quote for a ticker against the Tencent
// feed first and the Sina feed as fallback. Each invocation performs at
// most two sequential outbound calls.
type Resolver struct {
	feeds            *feedClient
	primaryBaseURL   string
	secondaryBaseURL string
}

func NewResolver(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{
		feeds:            &feedClient{httpClient: httpClient},
		primaryBaseURL:   tencentBaseURL,
		secondaryBaseURL: sinaBaseURL,
	}
}

// NewResolverWithFeeds overrides the upstream base URLs, used in tests.
func NewResolverWithFeeds(httpClient *http.Client, primaryBaseURL, secondaryBaseURL string) *Resolver {
	r := NewResolver(httpClient)
	r.primaryBaseURL = primaryBaseURL
	r.secondaryBaseURL = secondaryBaseURL
	return r
}

// Resolve returns the current quote for a ticker.
//
// Failure semantics: a primary transport error other than a timeout is
// ErrUpstreamUnavailable and terminal. A primary timeout or an empty
// extraction falls through to the secondary, which is tried exactly once
// with the same symbol. A feed that responds with a payload that cannot be
// decomposed into the expected field count is ErrInvalidFormat, also
// terminal. When the secondary yields nothing parseable either, the result
// is ErrQuoteNotFound. No retries beyond this chain.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Quote, error) {
	market, symbol, err := Classify(code)
	if err != nil {
		return nil, err
	}

	var quote *Quote
	state := stateQueryPrimary

	for {
		switch state {
		case stateQueryPrimary:
			line, err := r.feeds.fetchLine(ctx, tencentURL(r.primaryBaseURL, symbol), tencentReferer)
			if err != nil {
				if isTimeout(err) {
					state = stateQuerySecondary
					continue
				}
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			payload, ok := extractQuoted(line)
			if !ok {
				state = stateQuerySecondary
				continue
			}
			quote, err = parseTencent(strings.Split(payload, "~"), code)
			if err != nil {
				return nil, err
			}
			state = stateDone

		case stateQuerySecondary:
			line, err := r.feeds.fetchLine(ctx, sinaURL(r.secondaryBaseURL, symbol), sinaReferer)
			if err != nil {
				state = stateNotFound
				continue
			}
			payload, ok := extractQuoted(line)
			if !ok {
				state = stateNotFound
				continue
			}
			quote, err = parseSina(strings.Split(payload, ","), code, market)
			if err != nil {
				return nil, err
			}
			state = stateDone

		case stateDone:
			return quote, nil

		case stateNotFound:
			return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, code)
		}
	}
}
