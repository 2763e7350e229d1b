package marketctx

import (
	"github.com/quantfra/swingdesk/internal/domain/models"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
	"github.com/quantfra/swingdesk/internal/services/indicators"
)

// Config tunes the context classification.
type Config struct {
	SMAShort   int     `yaml:"sma_short"`
	SMALong    int     `yaml:"sma_long"`
	ReturnBars int     `yaml:"return_bars"`
	PerfBand   float64 `yaml:"perf_band_pct"`
}

func (c *Config) applyDefaults() {
	if c.SMAShort <= 0 {
		c.SMAShort = 20
	}
	if c.SMALong <= 0 {
		c.SMALong = 50
	}
	if c.ReturnBars <= 0 {
		c.ReturnBars = 20
	}
	if c.PerfBand <= 0 {
		c.PerfBand = 2.0
	}
}

// Classifier derives trend regime and relative strength versus a
// benchmark. Context is an enhancement: a missing or short benchmark
// degrades to unknown states instead of failing.
type Classifier struct {
	cfg Config
}

func NewClassifier(cfg Config) *Classifier {
	cfg.applyDefaults()
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Classify(bars, benchmark []models.PriceBar) models.MarketContext {
	out := models.MarketContext{
		Regime:  models.RegimeUnknown,
		RelPerf: models.PerfUnknown,
	}
	if len(benchmark) >= c.cfg.SMALong {
		closes := models.Closes(benchmark)
		last := closes[len(closes)-1]
		smaS := indicators.SMA(closes, c.cfg.SMAShort)
		smaL := indicators.SMA(closes, c.cfg.SMALong)
		out.Regime = regime(last, smaS, smaL)
	}
	if len(bars) > c.cfg.ReturnBars && len(benchmark) > c.cfg.ReturnBars {
		diff := indicators.TrailingReturn(bars, c.cfg.ReturnBars) - indicators.TrailingReturn(benchmark, c.cfg.ReturnBars)
		out.RelPerfValue = diff * 100
		out.RelPerf = perfBand(out.RelPerfValue, c.cfg.PerfBand)
	}
	return out
}

func regime(close, smaShort, smaLong float64) string {
	switch {
	case close > smaShort && smaShort > smaLong:
		return models.RegimeBull
	case close < smaShort && smaShort < smaLong:
		return models.RegimeBear
	default:
		return models.RegimeSideways
	}
}

func perfBand(diffPct, band float64) string {
	switch {
	case diffPct > band:
		return models.PerfOutperforming
	case diffPct < -band:
		return models.PerfUnderperforming
	default:
		return models.PerfInline
	}
}

var _ domsvc.ContextClassifier = (*Classifier)(nil)
