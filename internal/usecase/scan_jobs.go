package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	icache "github.com/quantfra/swingdesk/internal/service/cache"
	"github.com/quantfra/swingdesk/pkg/queue"
)

const (
	scanJobType      = "scan.request"
	scanResultPrefix = "scan:result:"
)

// ScanJobPayload is the queued form of one background scan request.
type ScanJobPayload struct {
	ID        string              `json:"id"`
	Markets   []models.ScanMarket `json:"markets"`
	Threshold float64             `json:"threshold"`
	TopK      int                 `json:"top_k"`
	Lookback  int                 `json:"lookback"`
	Interval  string              `json:"interval"`
}

// ScanJob consumes queued scan requests and parks the summary in the
// result cache for later pickup.
type ScanJob struct {
	scanner   *Scanner
	results   icache.BytesCache
	resultTTL time.Duration
}

func NewScanJob(scanner *Scanner, results icache.BytesCache, resultTTL time.Duration) *ScanJob {
	if resultTTL <= 0 {
		resultTTL = time.Hour
	}
	return &ScanJob{scanner: scanner, results: results, resultTTL: resultTTL}
}

func (j *ScanJob) Name() string { return "market-scan" }
func (j *ScanJob) Type() string { return scanJobType }

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ScanJobPayload](payload)
	if err != nil {
		return fmt.Errorf("scan payload: %w", err)
	}
	summary, err := j.scanner.Scan(ctx, ScanParams{
		Markets:   p.Markets,
		Threshold: p.Threshold,
		TopK:      p.TopK,
		Lookback:  p.Lookback,
		Interval:  domrepo.NormalizeInterval(p.Interval),
	}, nil)
	if err != nil {
		return fmt.Errorf("scan %s: %w", p.ID, err)
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return j.results.SetBytes(scanResultPrefix+p.ID, b, j.resultTTL)
}

// AsyncScans enqueues scans and serves their parked results.
type AsyncScans struct {
	q       queue.QueueService
	results icache.BytesCache
}

func NewAsyncScans(q queue.QueueService, results icache.BytesCache) *AsyncScans {
	return &AsyncScans{q: q, results: results}
}

// Enqueue submits a scan for background execution under the given id.
func (a *AsyncScans) Enqueue(ctx context.Context, p ScanJobPayload) error {
	if a.q == nil {
		return fmt.Errorf("scan queue not configured")
	}
	return a.q.PublishMessage(ctx, scanJobType, p)
}

// Result returns the parked summary for id, if the scan has finished.
func (a *AsyncScans) Result(id string) (*models.ScanSummary, bool, error) {
	b, ok, err := a.results.GetBytes(scanResultPrefix + id)
	if err != nil || !ok {
		return nil, false, err
	}
	var summary models.ScanSummary
	if err := json.Unmarshal(b, &summary); err != nil {
		return nil, false, fmt.Errorf("parse summary: %w", err)
	}
	return &summary, true, nil
}
