package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
	"github.com/quantfra/swingdesk/pkg/util"
)

// HTTPBarSource implements BarSource against an upstream quotes API
// that serves JSON OHLCV history.
type HTTPBarSource struct {
	baseURL string
	client  *xhttp.Client
}

func NewHTTPBarSource(baseURL string, timeout time.Duration) *HTTPBarSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBarSource{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type historyResponse struct {
	Symbol string `json:"symbol"`
	Bars   []struct {
		// Providers disagree on the timestamp encoding: RFC3339
		// strings and unix seconds both occur in the wild.
		Timestamp json.RawMessage `json:"t"`
		Open      float64         `json:"o"`
		High      float64         `json:"h"`
		Low       float64         `json:"l"`
		Close     float64         `json:"c"`
		Volume    float64         `json:"v"`
	} `json:"bars"`
}

func (s *HTTPBarSource) GetHistory(ctx context.Context, symbol string, lookback int, interval domrepo.Interval) ([]models.PriceBar, error) {
	var resp historyResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/history",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"lookback": {strconv.Itoa(lookback)},
			"interval": {string(interval)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, symbol, err)
	}
	if len(resp.Bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", models.ErrDataUnavailable, symbol)
	}
	out := make([]models.PriceBar, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		ts := util.ParseTimeDefault(strings.Trim(string(b.Timestamp), `"`), time.Time{})
		if ts.IsZero() {
			continue
		}
		out = append(out, models.PriceBar{
			// Align to the bucket so identical bars from different
			// providers dedupe on timestamp.
			Timestamp: util.BucketStart(ts, string(interval)),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no parseable bars for %s", models.ErrDataUnavailable, symbol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *HTTPBarSource) Health(ctx context.Context) error {
	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/health",
	}, nil)
}

func (s *HTTPBarSource) Close() error { return nil }

var _ domrepo.BarSource = (*HTTPBarSource)(nil)
