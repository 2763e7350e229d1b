package indicators

import (
	"fmt"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
)

// Config holds the lookback periods of every indicator the engine
// computes. Zero values fall back to the defaults below.
type Config struct {
	RSIPeriod      int     `yaml:"rsi_period"`
	MACDFast       int     `yaml:"macd_fast"`
	MACDSlow       int     `yaml:"macd_slow"`
	MACDSignal     int     `yaml:"macd_signal"`
	ADXPeriod      int     `yaml:"adx_period"`
	SMAShort       int     `yaml:"sma_short"`
	SMALong        int     `yaml:"sma_long"`
	BollingerK     float64 `yaml:"bollinger_k"`
	VolumePeriod   int     `yaml:"volume_period"`
	PivotWindow    int     `yaml:"pivot_window"`
	LevelTolerance float64 `yaml:"level_tolerance_pct"`
	VolWindow      int     `yaml:"volatility_window"`
}

func (c *Config) applyDefaults() {
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
	if c.MACDFast <= 0 {
		c.MACDFast = 12
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = 26
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = 9
	}
	if c.ADXPeriod <= 0 {
		c.ADXPeriod = 14
	}
	if c.SMAShort <= 0 {
		c.SMAShort = 20
	}
	if c.SMALong <= 0 {
		c.SMALong = 50
	}
	if c.BollingerK <= 0 {
		c.BollingerK = 2
	}
	if c.VolumePeriod <= 0 {
		c.VolumePeriod = 20
	}
	if c.PivotWindow <= 0 {
		c.PivotWindow = 5
	}
	if c.LevelTolerance <= 0 {
		c.LevelTolerance = 1.5
	}
	if c.VolWindow <= 0 {
		c.VolWindow = 30
	}
}

// Engine computes the full indicator snapshot for a bar series.
type Engine struct {
	cfg Config
}

// NewEngine builds an Engine, filling unset config fields with defaults.
func NewEngine(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// Compute derives every indicator from the series. The series must
// cover the longest configured lookback; the returned error names the
// first indicator that cannot be computed.
func (e *Engine) Compute(symbol string, bars []models.PriceBar) (*models.IndicatorSnapshot, error) {
	if err := e.checkHistory(bars); err != nil {
		return nil, err
	}

	closes := models.Closes(bars)
	volumes := models.Volumes(bars)
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}
	last := models.LastBar(bars)

	snap := &models.IndicatorSnapshot{
		Symbol:    symbol,
		Timestamp: last.Timestamp,
		Close:     last.Close,
		SMA20:     SMA(closes, e.cfg.SMAShort),
		SMA50:     SMA(closes, e.cfg.SMALong),
	}
	snap.Trend = trendState(last.Close, snap.SMA20, snap.SMA50)

	rsi := RSI(closes, e.cfg.RSIPeriod)
	snap.RSI = models.IndicatorReading{Value: rsi, State: RSIZone(rsi)}

	macd, sig, histPrev, histCur := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	snap.MACD = models.IndicatorReading{Value: macd - sig, State: macdState(macd, sig, histPrev, histCur)}

	adx := ADX(highs, lows, closes, e.cfg.ADXPeriod)
	snap.ADX = models.IndicatorReading{Value: adx, State: ADXBucket(adx)}

	avgVol := SMA(volumes, e.cfg.VolumePeriod)
	ratio := 0.0
	if avgVol > 0 {
		ratio = last.Volume / avgVol
	}
	snap.Volume = models.IndicatorReading{Value: ratio, State: VolumeState(ratio)}

	mid := snap.SMA20
	sd := StdDev(closes, e.cfg.SMAShort)
	snap.BollingerUpper = mid + e.cfg.BollingerK*sd
	snap.BollingerLower = mid - e.cfg.BollingerK*sd
	snap.BollingerPosition = bandPosition(last.Close, snap.BollingerLower, snap.BollingerUpper)

	rets := ComputeLogReturns(bars)
	w := e.cfg.VolWindow
	if len(rets) < w {
		w = len(rets)
	}
	snap.Volatility = AnnualizedVolatility(rets, w)

	snap.Supports, snap.Resistances = FindLevels(bars, e.cfg.PivotWindow, e.cfg.LevelTolerance)
	return snap, nil
}

func (e *Engine) checkHistory(bars []models.PriceBar) error {
	n := len(bars)
	checks := []struct {
		name string
		need int
	}{
		{"rsi", e.cfg.RSIPeriod + 1},
		{"macd", e.cfg.MACDSlow + e.cfg.MACDSignal},
		{"adx", 2*e.cfg.ADXPeriod + 1},
		{fmt.Sprintf("sma%d", e.cfg.SMAShort), e.cfg.SMAShort},
		{fmt.Sprintf("sma%d", e.cfg.SMALong), e.cfg.SMALong},
	}
	for _, c := range checks {
		if n < c.need {
			return fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, c.name, c.need, n)
		}
	}
	return nil
}

// RSIZone maps an RSI value to its contractual band. The bands are
// half-open below 70 and closed at the top.
func RSIZone(v float64) string {
	switch {
	case v < 30:
		return models.RSIOversold
	case v < 45:
		return models.RSIOversoldTerritory
	case v < 55:
		return models.RSINeutral
	case v < 70:
		return models.RSIOverboughtTerritory
	default:
		return models.RSIOverbought
	}
}

// ADXBucket maps trend strength irrespective of direction.
func ADXBucket(v float64) string {
	switch {
	case v < 20:
		return models.ADXWeak
	case v <= 30:
		return models.ADXModerate
	case v <= 50:
		return models.ADXStrong
	default:
		return models.ADXVeryStrong
	}
}

// VolumeState maps the volume ratio to its confirmation band.
func VolumeState(ratio float64) string {
	switch {
	case ratio > 2.0:
		return models.VolumeVeryHigh
	case ratio > 1.5:
		return models.VolumeHigh
	case ratio > 0.8:
		return models.VolumeNormal
	default:
		return models.VolumeLow
	}
}

// macdState classifies by two orthogonal facts: the sign of the
// MACD-signal spread and the histogram slope over the last 2 bars.
func macdState(macd, sig, histPrev, histCur float64) string {
	bullish := macd > sig
	rising := histCur >= histPrev
	switch {
	case bullish && rising:
		return models.MACDBullishStrengthening
	case bullish:
		return models.MACDBullishWeakening
	case !bullish && !rising:
		return models.MACDBearishStrengthening
	default:
		return models.MACDBearishWeakening
	}
}

func trendState(close, smaShort, smaLong float64) string {
	switch {
	case close > smaShort && smaShort > smaLong:
		return models.TrendBullish
	case close < smaShort && smaShort < smaLong:
		return models.TrendBearish
	default:
		return models.TrendMixed
	}
}

func bandPosition(price, lower, upper float64) float64 {
	if upper <= lower {
		return 50
	}
	p := (price - lower) / (upper - lower) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

var _ domsvc.IndicatorEngine = (*Engine)(nil)
