package marketdata

import (
	"errors"
	"strings"
)

var ErrInvalidStockCode = errors.New("invalid stock code format")

type Market int

const (
	MarketShanghai Market = iota
	MarketShenzhen
	MarketHongKong
)

// Classify maps a raw ticker to its market and the exchange-qualified
// symbol both feeds understand. Domestic 6-digit codes: prefix 6 is
// Shanghai, 0 and 3 are Shenzhen. Prefixes 5 and 1 are ETFs routed to the
// Shanghai-style symbol; that is a heuristic carried over from the
// upstream feeds' conventions, not verified against a listing registry,
// and may be wrong for some Shenzhen-listed funds. A 5-digit code
// starting with 00 is a Hong Kong instrument.
func Classify(code string) (Market, string, error) {
	if !isNumeric(code) {
		return 0, "", ErrInvalidStockCode
	}

	if len(code) == 5 && strings.HasPrefix(code, "00") {
		return MarketHongKong, "hk" + code, nil
	}

	if len(code) != 6 {
		return 0, "", ErrInvalidStockCode
	}

	switch code[0] {
	case '6':
		return MarketShanghai, "sh" + code, nil
	case '0', '3':
		return MarketShenzhen, "sz" + code, nil
	case '5', '1':
		// ETF heuristic: try the Shanghai symbol first.
		return MarketShanghai, "sh" + code, nil
	default:
		return 0, "", ErrInvalidStockCode
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
