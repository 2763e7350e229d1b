package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

type recordingSink struct {
	mu   sync.Mutex
	sent []models.ScanProgress
	fail bool
}

func (s *recordingSink) Send(ev models.ScanProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("sink down")
	}
	s.sent = append(s.sent, ev)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSink) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

func TestPushRejectsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	p := NewProgressPipeline(sink, nil)

	cases := []models.ScanProgress{
		{Market: "us", Symbol: "", Done: 1, Total: 2},
		{Market: "us", Symbol: "AAPL", Done: 1, Total: 0},
		{Market: "us", Symbol: "AAPL", Done: -1, Total: 2},
		{Market: "us", Symbol: "AAPL", Done: 3, Total: 2},
	}
	for i, ev := range cases {
		if err := p.Push(ev); err == nil {
			t.Fatalf("case %d: invalid event must be rejected", i)
		}
	}
	if sink.count() != 0 {
		t.Fatalf("invalid events reached the sink")
	}
}

func TestPushThrottlesPerMarket(t *testing.T) {
	sink := &recordingSink{}
	p := NewProgressPipeline(sink, nil, WithMaxEPS(1))

	for i := 1; i <= 5; i++ {
		ev := models.ScanProgress{Market: "us", Symbol: "AAPL", Done: i, Total: 100}
		if err := p.Push(ev); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if got := sink.count(); got != 1 {
		t.Fatalf("rapid same-market events must be throttled, got %d", got)
	}

	// A second market has its own budget.
	ev := models.ScanProgress{Market: "my", Symbol: "MAYBANK", Done: 1, Total: 100}
	if err := p.Push(ev); err != nil {
		t.Fatalf("other market: %v", err)
	}
	if got := sink.count(); got != 2 {
		t.Fatalf("markets must be throttled independently, got %d", got)
	}
}

func TestPushTerminalEventBypassesThrottle(t *testing.T) {
	sink := &recordingSink{}
	p := NewProgressPipeline(sink, nil, WithMaxEPS(1))

	for i := 1; i <= 4; i++ {
		_ = p.Push(models.ScanProgress{Market: "us", Symbol: "A", Done: i, Total: 5})
	}
	if err := p.Push(models.ScanProgress{Market: "us", Symbol: "B", Done: 5, Total: 5}); err != nil {
		t.Fatalf("terminal push: %v", err)
	}
	sink.mu.Lock()
	last := sink.sent[len(sink.sent)-1]
	sink.mu.Unlock()
	if last.Done != 5 || last.Total != 5 {
		t.Fatalf("terminal event missing, last = %d/%d", last.Done, last.Total)
	}
}

func TestPushBuffersWhenSinkFails(t *testing.T) {
	sink := &recordingSink{fail: true}
	p := NewProgressPipeline(sink, nil, WithBufferSize(10))

	ev := models.ScanProgress{Market: "us", Symbol: "AAPL", Done: 10, Total: 10}
	if err := p.Push(ev); err == nil {
		t.Fatalf("failed send must surface an error")
	}

	// Once the sink recovers the drainer delivers the buffered event.
	sink.setFail(false)
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered event never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	sink.mu.Lock()
	got := sink.sent[0]
	sink.mu.Unlock()
	if got.Symbol != "AAPL" || got.Done != 10 {
		t.Fatalf("flushed event = %+v", got)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	p := NewProgressPipeline(&recordingSink{}, nil)
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}
