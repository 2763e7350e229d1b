package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	"github.com/quantfra/swingdesk/internal/service/ratelimit"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

const providerBudgetKey = "provider"

// ScannerConfig bounds the fan-out and the provider rate budget.
type ScannerConfig struct {
	Workers       int
	RateCapacity  float64
	RateRefillSec float64
	Threshold     float64
	TopK          int
}

func (c *ScannerConfig) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.RateCapacity <= 0 {
		c.RateCapacity = 10
	}
	if c.RateRefillSec <= 0 {
		c.RateRefillSec = 5
	}
	if c.Threshold <= 0 {
		c.Threshold = 60
	}
	if c.TopK <= 0 {
		c.TopK = 15
	}
}

// Scanner fans symbol analyses out across a bounded worker pool. Scans
// are read-only by construction: a cancelled or partially failed scan
// cannot corrupt portfolio state. One symbol's failure never aborts
// the rest.
type Scanner struct {
	analyzer *Analyzer
	limiter  *ratelimit.Limiter
	cfg      ScannerConfig
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewScanner(analyzer *Analyzer, limiter *ratelimit.Limiter, cfg ScannerConfig, metrics domrepo.Metrics) *Scanner {
	cfg.applyDefaults()
	return &Scanner{analyzer: analyzer, limiter: limiter, cfg: cfg, metrics: metrics}
}

// SetLogger injects a structured logger.
func (s *Scanner) SetLogger(l *applogger.Logger) { s.l = l }

// ScanParams is one scan request after normalization.
type ScanParams struct {
	Markets   []models.ScanMarket
	Threshold float64
	TopK      int
	Lookback  int
	Interval  domrepo.Interval
}

type symbolTask struct {
	market    string
	symbol    string
	benchmark string
}

type symbolOutcome struct {
	market string
	symbol string
	result *models.AnalysisResult
	err    error
}

// Scan analyzes every symbol of every market, bounded by the worker
// pool and the provider rate budget. Progress events fire as symbols
// complete; a nil callback is allowed. Cancellation returns the
// partial summary with Cancelled set.
func (s *Scanner) Scan(ctx context.Context, p ScanParams, progress func(models.ScanProgress)) (*models.ScanSummary, error) {
	if p.Threshold <= 0 {
		p.Threshold = s.cfg.Threshold
	}
	if p.TopK <= 0 {
		p.TopK = s.cfg.TopK
	}

	var tasks []symbolTask
	for _, m := range p.Markets {
		for _, sym := range m.Symbols {
			tasks = append(tasks, symbolTask{market: m.Name, symbol: sym, benchmark: m.Benchmark})
		}
	}
	total := len(tasks)
	started := time.Now()

	taskCh := make(chan symbolTask)
	outCh := make(chan symbolOutcome, total)
	var wg sync.WaitGroup
	var done int64

	workers := s.cfg.Workers
	if workers > total && total > 0 {
		workers = total
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				outCh <- s.scanOne(ctx, t, p, total, &done, progress)
			}
		}()
	}

	cancelled := false
feed:
	for _, t := range tasks {
		select {
		case taskCh <- t:
		case <-ctx.Done():
			cancelled = true
			break feed
		}
	}
	close(taskCh)
	wg.Wait()
	close(outCh)

	byMarket := make(map[string]*models.MarketScan)
	for _, m := range p.Markets {
		byMarket[m.Name] = &models.MarketScan{Market: m.Name}
	}
	for out := range outCh {
		ms := byMarket[out.market]
		ms.Scanned++
		if out.err != nil {
			ms.Skipped = append(ms.Skipped, models.ScanFailure{Symbol: out.symbol, Reason: out.err.Error()})
			continue
		}
		if out.result.Score >= p.Threshold {
			ms.Opportunities = append(ms.Opportunities, *out.result)
		}
	}

	summary := &models.ScanSummary{
		TotalSymbols: total,
		StartedAt:    started,
		Elapsed:      time.Since(started),
		Cancelled:    cancelled || ctx.Err() != nil,
	}
	for _, m := range p.Markets {
		ms := byMarket[m.Name]
		sort.Slice(ms.Opportunities, func(i, j int) bool {
			return ms.Opportunities[i].Score > ms.Opportunities[j].Score
		})
		if len(ms.Opportunities) > p.TopK {
			ms.Opportunities = ms.Opportunities[:p.TopK]
		}
		if s.metrics != nil {
			s.metrics.RecordScan(m.Name, ms.Scanned, len(ms.Skipped))
		}
		summary.Markets = append(summary.Markets, *ms)
	}
	if s.metrics != nil {
		s.metrics.RecordLatency("scan", summary.Elapsed.Seconds())
	}
	if s.l != nil {
		s.l.Info("scan complete",
			applogger.Int("symbols", total),
			applogger.Duration("elapsed_ms", summary.Elapsed),
			applogger.Bool("cancelled", summary.Cancelled),
		)
	}
	return summary, nil
}

func (s *Scanner) scanOne(ctx context.Context, t symbolTask, p ScanParams, total int, done *int64, progress func(models.ScanProgress)) symbolOutcome {
	out := symbolOutcome{market: t.market, symbol: t.symbol}
	if err := s.limiter.Wait(ctx, providerBudgetKey, s.cfg.RateCapacity, s.cfg.RateRefillSec); err != nil {
		out.err = err
		s.report(t, p, total, done, progress, out)
		return out
	}
	res, err := s.analyzer.Analyze(ctx, AnalyzeParams{
		Symbol:    t.symbol,
		Benchmark: t.benchmark,
		Lookback:  p.Lookback,
		Interval:  p.Interval,
	})
	if err != nil {
		out.err = err
		if s.metrics != nil {
			s.metrics.RecordError("scan_symbol")
		}
		if s.l != nil {
			s.l.Warn("symbol skipped",
				applogger.String("market", t.market),
				applogger.String("symbol", t.symbol),
				applogger.Error(err),
			)
		}
	} else {
		out.result = res
		if s.metrics != nil {
			s.metrics.RecordAnalysis(t.symbol, res.Score)
		}
	}
	s.report(t, p, total, done, progress, out)
	return out
}

func (s *Scanner) report(t symbolTask, _ ScanParams, total int, done *int64, progress func(models.ScanProgress), out symbolOutcome) {
	n := atomic.AddInt64(done, 1)
	if progress == nil {
		return
	}
	ev := models.ScanProgress{
		Market: t.market,
		Symbol: t.symbol,
		Done:   int(n),
		Total:  total,
	}
	if out.err != nil {
		ev.Skipped = true
		ev.Reason = out.err.Error()
	} else if out.result != nil {
		ev.Score = out.result.Score
	}
	progress(ev)
}
