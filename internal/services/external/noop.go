package external

import (
	"context"

	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
)

// NoopSignalSource reports every signal as unavailable. Used when no
// feed is configured; scoring renormalizes around the missing inputs.
type NoopSignalSource struct{}

func (NoopSignalSource) Sentiment(context.Context, string) (*float64, error) { return nil, nil }
func (NoopSignalSource) FearIndex(context.Context, string) (*float64, error) { return nil, nil }

var _ domrepo.SignalSource = NoopSignalSource{}
