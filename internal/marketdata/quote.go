package marketdata

import "math"

// Quote is a normalized snapshot from one of the upstream feeds. It is
// always fetched fresh; nothing here is cached. All fields are rounded to
// two decimal places at this boundary.
type Quote struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Change         float64 `json:"change"`
	ChangePercent  float64 `json:"changePercent"`
	YesterdayClose float64 `json:"yesterdayClose"`
}

func newQuote(code, name string, price, yesterdayClose float64) *Quote {
	change := price - yesterdayClose
	changePercent := 0.0
	if yesterdayClose > 0 {
		changePercent = change / yesterdayClose * 100
	}
	return &Quote{
		Code:           code,
		Name:           name,
		Price:          round2(price),
		Change:         round2(change),
		ChangePercent:  round2(changePercent),
		YesterdayClose: round2(yesterdayClose),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
