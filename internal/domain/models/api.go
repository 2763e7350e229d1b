package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
	Benchmark string `query:"benchmark" json:"benchmark"`
	Interval  string `query:"interval" json:"interval" default:"1d" validate:"oneof=1d 1wk"`
	Lookback  int    `query:"lookback" json:"lookback" default:"250" validate:"gte=60,lte=2000"`
}

type ScanMarket struct {
	Name      string   `json:"name" validate:"required"`
	Symbols   []string `json:"symbols" validate:"required,min=1,dive,required"`
	Benchmark string   `json:"benchmark"`
}

type ScanRequest struct {
	Markets   []ScanMarket `json:"markets" validate:"required,min=1,dive"`
	Threshold float64      `json:"threshold" default:"60" validate:"gte=0,lte=100"`
	TopK      int          `json:"top_k" default:"15" validate:"gte=1,lte=100"`
	Interval  string       `json:"interval" default:"1d" validate:"oneof=1d 1wk"`
	Lookback  int          `json:"lookback" default:"250" validate:"gte=60,lte=2000"`
}

type SizeRequest struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Entry    float64 `json:"entry" validate:"required,gt=0"`
	Stop     float64 `json:"stop" validate:"gte=0"`
	Override int64   `json:"override" validate:"gte=0"`
}

type BuyRequest struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Quantity int64   `json:"quantity" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Target   float64 `json:"target" validate:"gte=0"`
	Stop     float64 `json:"stop" validate:"gte=0"`
	Reason   string  `json:"reason"`
}

type SellRequest struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Quantity int64   `json:"quantity" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Reason   string  `json:"reason"`
}

type PortfolioRequest struct {
	Currency string `query:"currency" json:"currency" validate:"omitempty,len=3"`
}

type ResetRequest struct {
	Full bool `json:"full"`
}
