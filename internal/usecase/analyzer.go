package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
	icache "github.com/quantfra/swingdesk/internal/service/cache"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// Analyzer runs the per-symbol pipeline: bar history, indicators,
// market context, optional external signals, then the composite score.
// The pipeline is read-only; it never touches ledger state.
type Analyzer struct {
	bars       domrepo.BarSource
	signals    domrepo.SignalSource
	engine     domsvc.IndicatorEngine
	classifier domsvc.ContextClassifier
	scorer     domsvc.Scorer
	cache      *icache.TTLCache
	resultTTL  time.Duration
	l          *applogger.Logger
}

func NewAnalyzer(
	bars domrepo.BarSource,
	signals domrepo.SignalSource,
	engine domsvc.IndicatorEngine,
	classifier domsvc.ContextClassifier,
	scorer domsvc.Scorer,
) *Analyzer {
	return &Analyzer{
		bars:       bars,
		signals:    signals,
		engine:     engine,
		classifier: classifier,
		scorer:     scorer,
		cache:      icache.NewTTLCache(),
		resultTTL:  5 * time.Minute,
	}
}

// SetLogger injects a structured logger.
func (a *Analyzer) SetLogger(l *applogger.Logger) { a.l = l }

// SetResultTTL overrides the memoization window for repeated analyses.
func (a *Analyzer) SetResultTTL(ttl time.Duration) {
	if ttl > 0 {
		a.resultTTL = ttl
	}
}

// AnalyzeParams names the inputs of one analysis run.
type AnalyzeParams struct {
	Symbol    string
	Benchmark string
	Lookback  int
	Interval  domrepo.Interval
}

// Analyze produces a fresh AnalysisResult for one symbol. Benchmark and
// external signal failures degrade the run; bar failures abort it.
func (a *Analyzer) Analyze(ctx context.Context, p AnalyzeParams) (*models.AnalysisResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Lookback <= 0 {
		p.Lookback = 250
	}
	key := fmt.Sprintf("analysis:%s:%s:%s:%d", p.Symbol, p.Benchmark, p.Interval, p.Lookback)
	if v, ok := a.cache.Get(key); ok {
		if res, ok2 := v.(*models.AnalysisResult); ok2 {
			return res, nil
		}
	}

	bars, err := a.bars.GetHistory(ctx, p.Symbol, p.Lookback, p.Interval)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", p.Symbol, err)
	}

	snap, err := a.engine.Compute(p.Symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("indicators %s: %w", p.Symbol, err)
	}

	var benchmark []models.PriceBar
	if p.Benchmark != "" {
		benchmark, err = a.bars.GetHistory(ctx, p.Benchmark, p.Lookback, p.Interval)
		if err != nil {
			if a.l != nil {
				a.l.Warn("benchmark unavailable",
					applogger.String("benchmark", p.Benchmark),
					applogger.Error(err),
				)
			}
			benchmark = nil
		}
	}
	mctx := a.classifier.Classify(bars, benchmark)

	ext := a.fetchSignals(ctx, p.Symbol, p.Benchmark)
	res := a.scorer.Score(snap, mctx, ext)
	a.cache.Set(key, res, a.resultTTL)
	return res, nil
}

// fetchSignals collects the optional scalars; anything that fails is
// treated as unavailable.
func (a *Analyzer) fetchSignals(ctx context.Context, symbol, market string) models.ExternalSignals {
	var ext models.ExternalSignals
	if a.signals == nil {
		return ext
	}
	s, err := a.signals.Sentiment(ctx, symbol)
	if err != nil {
		if a.l != nil {
			a.l.Debug("sentiment unavailable", applogger.String("symbol", symbol), applogger.Error(err))
		}
	} else {
		ext.Sentiment = s
	}
	f, err := a.signals.FearIndex(ctx, market)
	if err != nil {
		if a.l != nil {
			a.l.Debug("fear index unavailable", applogger.String("market", market), applogger.Error(err))
		}
	} else {
		ext.FearIndex = f
	}
	return ext
}
