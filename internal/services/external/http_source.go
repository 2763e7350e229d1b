package external

import (
	"context"
	"fmt"
	"time"

	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	"github.com/quantfra/swingdesk/pkg/config"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
)

// HTTPSignalSource fetches the optional sentiment and fear-index
// scalars from a sidecar feed. Every failure degrades to "unavailable"
// (nil value, nil error is reserved for genuinely absent data).
type HTTPSignalSource struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPSignalSource builds the client with timeout and base URL from config.
func NewHTTPSignalSource(cfg *config.Config) *HTTPSignalSource {
	timeout := cfg.Signals.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPSignalSource{
		baseURL: cfg.Signals.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type scalarResponse struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

func (s *HTTPSignalSource) Sentiment(ctx context.Context, symbol string) (*float64, error) {
	return s.fetch(ctx, "/signals/sentiment", symbol)
}

func (s *HTTPSignalSource) FearIndex(ctx context.Context, market string) (*float64, error) {
	return s.fetch(ctx, "/signals/fear", market)
}

func (s *HTTPSignalSource) fetch(ctx context.Context, path, key string) (*float64, error) {
	if s.client == nil || s.baseURL == "" {
		return nil, nil
	}
	var resp scalarResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         s.baseURL + path,
		QueryParams: map[string][]string{"key": {key}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if !resp.Available {
		return nil, nil
	}
	v := resp.Value
	return &v, nil
}

var _ domrepo.SignalSource = (*HTTPSignalSource)(nil)
