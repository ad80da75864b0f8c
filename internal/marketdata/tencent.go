package marketdata

import (
	"fmt"
	"strconv"
)

// Tencent feed, the primary. One line per symbol:
//
//	v_sh600519="1~贵州茅台~600519~1670.00~1649.99~...";
//
// Fields are ~-separated: 0 market flag, 1 name, 2 code, 3 last price,
// 4 previous close. The same layout serves domestic and Hong Kong symbols.
const (
	tencentBaseURL = "https://qt.gtimg.cn"
	tencentReferer = "https://gu.qq.com/"

	tencentFieldName      = 1
	tencentFieldPrice     = 3
	tencentFieldPrevClose = 4
	tencentMinFields      = 5
)

func tencentURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/q=%s", baseURL, symbol)
}

func parseTencent(payload []string, code string) (*Quote, error) {
	if len(payload) < tencentMinFields || payload[tencentFieldName] == "" {
		return nil, fmt.Errorf("%w: got %d fields, want at least %d", ErrInvalidFormat, len(payload), tencentMinFields)
	}

	price, err := strconv.ParseFloat(payload[tencentFieldPrice], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad price %q", ErrInvalidFormat, payload[tencentFieldPrice])
	}
	prevClose, err := strconv.ParseFloat(payload[tencentFieldPrevClose], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad previous close %q", ErrInvalidFormat, payload[tencentFieldPrevClose])
	}

	return newQuote(code, payload[tencentFieldName], price, prevClose), nil
}
