package marketdata

import (
	"fmt"
	"strconv"
)

// Sina feed, the fallback. One line per symbol:
//
//	var hq_str_sh600519="贵州茅台,1688.000,1649.990,1670.000,...";
//
// Fields are comma-separated and the layout differs by market.
// Domestic: 0 name, 2 previous close, 3 last price.
// Hong Kong: 1 name, 3 previous close, 6 last price.
const (
	sinaBaseURL = "https://hq.sinajs.cn"
	sinaReferer = "https://finance.sina.com.cn/"

	sinaFieldName      = 0
	sinaFieldPrevClose = 2
	sinaFieldPrice     = 3
	sinaMinFields      = 4

	sinaHKFieldName      = 1
	sinaHKFieldPrevClose = 3
	sinaHKFieldPrice     = 6
	sinaHKMinFields      = 7
)

func sinaURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/list=%s", baseURL, symbol)
}

func parseSina(payload []string, code string, market Market) (*Quote, error) {
	nameIdx, priceIdx, prevCloseIdx, minFields := sinaFieldName, sinaFieldPrice, sinaFieldPrevClose, sinaMinFields
	if market == MarketHongKong {
		nameIdx, priceIdx, prevCloseIdx, minFields = sinaHKFieldName, sinaHKFieldPrice, sinaHKFieldPrevClose, sinaHKMinFields
	}

	if len(payload) < minFields || payload[nameIdx] == "" {
		return nil, fmt.Errorf("%w: got %d fields, want at least %d", ErrInvalidFormat, len(payload), minFields)
	}

	price, err := strconv.ParseFloat(payload[priceIdx], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad price %q", ErrInvalidFormat, payload[priceIdx])
	}
	prevClose, err := strconv.ParseFloat(payload[prevCloseIdx], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad previous close %q", ErrInvalidFormat, payload[prevCloseIdx])
	}

	return newQuote(code, payload[nameIdx], price, prevClose), nil
}
