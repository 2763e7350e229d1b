package scoring

import (
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
)

// Weights is the factor table of the composite score. All analyzer
// variants collapse into this single strategy object; points are the
// per-factor budgets around the base of 50.
type Weights struct {
	Base      float64 `yaml:"base"`
	RSI       float64 `yaml:"rsi"`
	MACD      float64 `yaml:"macd"`
	Trend     float64 `yaml:"trend"`
	Volume    float64 `yaml:"volume"`
	Regime    float64 `yaml:"regime"`
	RelPerf   float64 `yaml:"rel_perf"`
	Sentiment float64 `yaml:"sentiment"`
	Fear      float64 `yaml:"fear"`
}

// DefaultWeights returns the contractual 60/25/15 split.
func DefaultWeights() Weights {
	return Weights{
		Base:      50,
		RSI:       15,
		MACD:      15,
		Trend:     15,
		Volume:    15,
		Regime:    15,
		RelPerf:   10,
		Sentiment: 7.5,
		Fear:      7.5,
	}
}

// Config tunes the scorer beyond the factor weights.
type Config struct {
	Weights Weights `yaml:"weights"`
	// StaleAfterDays degrades confidence when the last bar is older.
	StaleAfterDays int `yaml:"stale_after_days"`
	// Fear index band edges (VIX-style levels).
	FearHigh float64 `yaml:"fear_high"`
	FearLow  float64 `yaml:"fear_low"`
	// SupportGapPct degrades the risk label when the nearest support
	// is further below the close than this, or absent.
	SupportGapPct float64 `yaml:"support_gap_pct"`
}

func (c *Config) applyDefaults() {
	zero := Weights{}
	if c.Weights == zero {
		c.Weights = DefaultWeights()
	}
	if c.StaleAfterDays <= 0 {
		c.StaleAfterDays = 5
	}
	if c.FearHigh <= 0 {
		c.FearHigh = 30
	}
	if c.FearLow <= 0 {
		c.FearLow = 20
	}
	if c.SupportGapPct <= 0 {
		c.SupportGapPct = 8
	}
}

// Scorer folds indicator states, market context, and optional external
// scalars into one bounded score. It is pure and stateless.
type Scorer struct {
	cfg Config
	now func() time.Time
}

func NewScorer(cfg Config) *Scorer {
	cfg.applyDefaults()
	return &Scorer{cfg: cfg, now: time.Now}
}

// Score produces a new immutable AnalysisResult. When external inputs
// are absent their weight is renormalized across the remaining
// categories rather than silently depressing every score.
func (s *Scorer) Score(snap *models.IndicatorSnapshot, mctx models.MarketContext, ext models.ExternalSignals) *models.AnalysisResult {
	w := s.cfg.Weights
	var factors []models.FactorContribution
	add := func(category, factor, state string, points float64) {
		factors = append(factors, models.FactorContribution{
			Category: category, Factor: factor, State: state, Points: points,
		})
	}

	add("technical", "rsi", snap.RSI.State, rsiPoints(snap.RSI.State, w.RSI))
	add("technical", "macd", snap.MACD.State, macdPoints(snap.MACD.State, w.MACD))
	add("technical", "trend", snap.Trend, trendPoints(snap.Trend, snap.ADX.State, w.Trend))
	add("technical", "volume", snap.Volume.State, volumePoints(snap.Volume.State, w.Volume))
	add("market", "regime", mctx.Regime, regimePoints(mctx.Regime, w.Regime))
	add("market", "rel_perf", mctx.RelPerf, relPerfPoints(mctx.RelPerf, w.RelPerf))

	available := w.RSI + w.MACD + w.Trend + w.Volume + w.Regime + w.RelPerf
	if ext.Sentiment != nil {
		v := clampF(*ext.Sentiment, -1, 1)
		add("external", "sentiment", sentimentState(v), v*w.Sentiment)
		available += w.Sentiment
	}
	if ext.FearIndex != nil {
		state, pts := s.fearPoints(*ext.FearIndex, w.Fear)
		add("external", "fear", state, pts)
		available += w.Fear
	}

	total := w.RSI + w.MACD + w.Trend + w.Volume + w.Regime + w.RelPerf + w.Sentiment + w.Fear
	scale := 1.0
	if available > 0 && available < total {
		scale = total / available
	}

	sum := 0.0
	for _, f := range factors {
		sum += f.Points
	}
	score := clampF(w.Base+sum*scale, 0, 100)

	return &models.AnalysisResult{
		Symbol:         snap.Symbol,
		Timestamp:      snap.Timestamp,
		Score:          score,
		Recommendation: Recommendation(score),
		Confidence:     s.confidence(snap),
		Risk:           s.riskLabel(snap),
		Factors:        factors,
		Indicators:     snap,
		Context:        &mctx,
	}
}

// Recommendation maps a score to its action band.
func Recommendation(score float64) string {
	switch {
	case score >= 85:
		return models.RecStrongBuy
	case score >= 70:
		return models.RecBuy
	case score >= 55:
		return models.RecScaleIn
	case score >= 40:
		return models.RecWait
	default:
		return models.RecAvoid
	}
}

func rsiPoints(state string, budget float64) float64 {
	switch state {
	case models.RSIOversold:
		return budget
	case models.RSIOversoldTerritory:
		return budget * 8 / 15
	case models.RSIOverboughtTerritory:
		return -budget * 8 / 15
	case models.RSIOverbought:
		return -budget
	default:
		return 0
	}
}

func macdPoints(state string, budget float64) float64 {
	switch state {
	case models.MACDBullishStrengthening:
		return budget
	case models.MACDBullishWeakening:
		return budget * 8 / 15
	case models.MACDBearishWeakening:
		return -budget * 8 / 15
	case models.MACDBearishStrengthening:
		return -budget
	default:
		return 0
	}
}

// trendPoints scales the SMA trend direction by ADX strength; ADX is a
// confidence multiplier, never a directional signal.
func trendPoints(trend, adxBucket string, budget float64) float64 {
	dir := 0.0
	switch trend {
	case models.TrendBullish:
		dir = 1
	case models.TrendBearish:
		dir = -1
	default:
		return 0
	}
	switch adxBucket {
	case models.ADXStrong, models.ADXVeryStrong:
		return dir * budget
	case models.ADXModerate:
		return dir * budget * 10 / 15
	default:
		return dir * budget * 4 / 15
	}
}

func volumePoints(state string, budget float64) float64 {
	switch state {
	case models.VolumeVeryHigh:
		return budget
	case models.VolumeHigh:
		return budget * 10 / 15
	case models.VolumeNormal:
		return budget * 3 / 15
	default:
		return -budget * 10 / 15
	}
}

func regimePoints(regime string, budget float64) float64 {
	switch regime {
	case models.RegimeBull:
		return budget
	case models.RegimeBear:
		return -budget
	default:
		return 0
	}
}

func relPerfPoints(state string, budget float64) float64 {
	switch state {
	case models.PerfOutperforming:
		return budget
	case models.PerfUnderperforming:
		return -budget
	default:
		return 0
	}
}

func sentimentState(v float64) string {
	switch {
	case v > 0.2:
		return "positive"
	case v < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

func (s *Scorer) fearPoints(level, budget float64) (string, float64) {
	switch {
	case level > s.cfg.FearHigh:
		return "high_fear", -budget
	case level < s.cfg.FearLow:
		return "low_fear", budget
	default:
		return "moderate_fear", 0
	}
}

func (s *Scorer) confidence(snap *models.IndicatorSnapshot) string {
	level := 0
	switch snap.ADX.State {
	case models.ADXStrong, models.ADXVeryStrong:
		level = 2
	case models.ADXModerate:
		level = 1
	}
	if !snap.Timestamp.IsZero() {
		age := s.now().Sub(snap.Timestamp)
		if age > time.Duration(s.cfg.StaleAfterDays)*24*time.Hour {
			level--
		}
	}
	switch {
	case level >= 2:
		return "high"
	case level == 1:
		return "medium"
	default:
		return "low"
	}
}

func (s *Scorer) riskLabel(snap *models.IndicatorSnapshot) string {
	level := 0
	switch {
	case snap.Volatility > 0.40:
		level = 2
	case snap.Volatility > 0.20:
		level = 1
	}
	if supportGapTooWide(snap, s.cfg.SupportGapPct) {
		level++
	}
	switch {
	case level >= 2:
		return "high"
	case level == 1:
		return "medium"
	default:
		return "low"
	}
}

func supportGapTooWide(snap *models.IndicatorSnapshot, gapPct float64) bool {
	if len(snap.Supports) == 0 {
		return true
	}
	if snap.Close <= 0 {
		return true
	}
	gap := (snap.Close - snap.Supports[0].Price) / snap.Close * 100
	return gap > gapPct
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ domsvc.Scorer = (*Scorer)(nil)
