package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
)

// Sink receives scan progress events downstream of the pipeline.
type Sink interface {
	Send(ev models.ScanProgress) error
}

// ProgressPipeline sits between the scanner's progress callback and a
// streaming sink. It validates events, throttles per-market chatter so
// large scans cannot flood the socket, and buffers when the sink is
// slow. Terminal events (last symbol of a scan) always pass through.
type ProgressPipeline struct {
	sink     Sink
	metrics  domrepo.Metrics
	maxEPS   int
	bufSize  int
	bufCh    chan models.ScanProgress
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-market last forwarded time
}

type PipelineOption func(*ProgressPipeline)

// WithMaxEPS sets the max forwarded events per second per market.
func WithMaxEPS(n int) PipelineOption {
	return func(p *ProgressPipeline) {
		if n > 0 {
			p.maxEPS = n
		}
	}
}

// WithBufferSize sets the buffer used when the sink is slow.
func WithBufferSize(n int) PipelineOption {
	return func(p *ProgressPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewProgressPipeline creates a new pipeline.
func NewProgressPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *ProgressPipeline {
	p := &ProgressPipeline{
		sink:     sink,
		metrics:  metrics,
		maxEPS:   20,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.ScanProgress, p.bufSize)
	return p
}

// Start launches background draining of buffered events.
func (p *ProgressPipeline) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case ev := <-p.bufCh:
				if err := p.sink.Send(ev); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.recordError("progress_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- ev:
					default:
						p.recordError("progress_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop halts background draining.
func (p *ProgressPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Push validates and throttles one event, forwarding to the sink and
// buffering when the sink refuses it.
func (p *ProgressPipeline) Push(ev models.ScanProgress) error {
	now := time.Now()
	if err := validateEvent(ev); err != nil {
		p.recordError("progress_validate")
		return err
	}
	terminal := ev.Done >= ev.Total
	if !terminal && !p.allow(ev.Market, now) {
		// intermediate progress is lossy, terminal events are not
		return nil
	}

	if err := p.sink.Send(ev); err != nil {
		p.recordError("progress_send")
		select {
		case p.bufCh <- ev:
		default:
			p.recordError("progress_buffer_full")
		}
		return fmt.Errorf("progress sink: %w", err)
	}
	return nil
}

func validateEvent(ev models.ScanProgress) error {
	if ev.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if ev.Total <= 0 || ev.Done < 0 || ev.Done > ev.Total {
		return fmt.Errorf("bad progress counters %d/%d", ev.Done, ev.Total)
	}
	return nil
}

func (p *ProgressPipeline) allow(market string, now time.Time) bool {
	if p.maxEPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[market]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxEPS) {
		return false
	}
	p.lastSeen[market] = now
	return true
}

func (p *ProgressPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
