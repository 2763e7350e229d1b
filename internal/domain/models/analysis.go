package models

import "time"

// Indicator state labels. Each indicator maps its numeric value to
// exactly one label; the bands are contractual and mutually exclusive.
const (
	RSIOversold            = "oversold"
	RSIOversoldTerritory   = "oversold_territory"
	RSINeutral             = "neutral"
	RSIOverboughtTerritory = "overbought_territory"
	RSIOverbought          = "overbought"

	MACDBullishStrengthening = "bullish_strengthening"
	MACDBullishWeakening     = "bullish_weakening"
	MACDBearishStrengthening = "bearish_strengthening"
	MACDBearishWeakening     = "bearish_weakening"

	ADXWeak       = "weak"
	ADXModerate   = "moderate"
	ADXStrong     = "strong"
	ADXVeryStrong = "very_strong"

	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendMixed   = "mixed"

	VolumeVeryHigh = "very_high"
	VolumeHigh     = "high"
	VolumeNormal   = "normal"
	VolumeLow      = "low"
)

// IndicatorReading pairs a numeric indicator value with its state label.
type IndicatorReading struct {
	Value float64 `json:"value"`
	State string  `json:"state"`
}

// Level is a clustered support or resistance price level. Strength is
// derived from touch count: >=3 strong, 2 medium, 1 weak.
type Level struct {
	Price    float64 `json:"price"`
	Touches  int     `json:"touches"`
	Strength string  `json:"strength"`
}

// IndicatorSnapshot holds every indicator computed for one symbol at
// one point in time. Derived data; never persisted on its own.
type IndicatorSnapshot struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	Close  float64          `json:"close"`
	SMA20  float64          `json:"sma20"`
	SMA50  float64          `json:"sma50"`
	Trend  string           `json:"trend"`
	RSI    IndicatorReading `json:"rsi"`
	MACD   IndicatorReading `json:"macd"`
	ADX    IndicatorReading `json:"adx"`
	Volume IndicatorReading `json:"volume"`

	// Bollinger position: price percentile within [lower, upper].
	BollingerUpper    float64 `json:"bollinger_upper"`
	BollingerLower    float64 `json:"bollinger_lower"`
	BollingerPosition float64 `json:"bollinger_position"`

	// Annualized volatility of daily log returns.
	Volatility float64 `json:"volatility"`

	Supports    []Level `json:"supports"`
	Resistances []Level `json:"resistances"`
}

// Regime labels for the market context pass.
const (
	RegimeBull     = "bull"
	RegimeBear     = "bear"
	RegimeSideways = "sideways"
	RegimeUnknown  = "unknown"
)

// Relative performance labels versus the benchmark.
const (
	PerfOutperforming   = "outperforming"
	PerfInline          = "in_line"
	PerfUnderperforming = "underperforming"
	PerfUnknown         = "unknown"
)

// MarketContext classifies the environment a symbol trades in. A missing
// benchmark series degrades to unknown states, never to an error.
type MarketContext struct {
	Regime       string  `json:"regime"`
	RelPerf      string  `json:"relative_performance"`
	RelPerfValue float64 `json:"relative_performance_value"`
}

// ExternalSignals carries the optional normalized scalar inputs.
// Nil pointers mean the provider had nothing; scoring renormalizes.
type ExternalSignals struct {
	Sentiment *float64 `json:"sentiment,omitempty"`
	FearIndex *float64 `json:"fear_index,omitempty"`
}

// FactorContribution is one row of the score breakdown.
type FactorContribution struct {
	Category string  `json:"category"`
	Factor   string  `json:"factor"`
	State    string  `json:"state"`
	Points   float64 `json:"points"`
}

// Recommendation labels by score band.
const (
	RecStrongBuy = "strong_buy"
	RecBuy       = "buy"
	RecScaleIn   = "scale_in"
	RecWait      = "wait"
	RecAvoid     = "avoid"
)

// AnalysisResult is the immutable output of one scoring run. A new run
// always produces a new result.
type AnalysisResult struct {
	Symbol         string               `json:"symbol"`
	Timestamp      time.Time            `json:"timestamp"`
	Score          float64              `json:"score"`
	Recommendation string               `json:"recommendation"`
	Confidence     string               `json:"confidence"`
	Risk           string               `json:"risk"`
	Factors        []FactorContribution `json:"factors"`
	Indicators     *IndicatorSnapshot   `json:"indicators,omitempty"`
	Context        *MarketContext       `json:"context,omitempty"`
}

// OrderProposal is the advisory output of position sizing. It never
// touches the ledger; execution is a separate confirmed call.
type OrderProposal struct {
	Symbol    string  `json:"symbol"`
	Currency  string  `json:"currency"`
	Shares    int64   `json:"shares"`
	Entry     float64 `json:"entry"`
	Target    float64 `json:"target"`
	Stop      float64 `json:"stop"`
	RiskAmount float64 `json:"risk_amount"`
}

// ScanFailure records one symbol skipped during a scan.
type ScanFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// MarketScan aggregates one market's share of a scan.
type MarketScan struct {
	Market        string           `json:"market"`
	Opportunities []AnalysisResult `json:"opportunities"`
	Scanned       int              `json:"scanned"`
	Skipped       []ScanFailure    `json:"skipped,omitempty"`
}

// ScanSummary is the fan-in result of a full scan.
type ScanSummary struct {
	Markets      []MarketScan  `json:"markets"`
	TotalSymbols int           `json:"total_symbols"`
	Elapsed      time.Duration `json:"elapsed"`
	StartedAt    time.Time     `json:"started_at"`
	Cancelled    bool          `json:"cancelled,omitempty"`
}

// ScanProgress is one streaming progress event during a scan.
type ScanProgress struct {
	Market    string  `json:"market"`
	Symbol    string  `json:"symbol"`
	Done      int     `json:"done"`
	Total     int     `json:"total"`
	Score     float64 `json:"score,omitempty"`
	Skipped   bool    `json:"skipped,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}
