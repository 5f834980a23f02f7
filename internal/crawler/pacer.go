package crawler

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces out page requests. *rate.Limiter implements it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewRatePacer returns a Pacer allowing rps page requests per second across
// every chain that shares it. A non-positive rps returns nil (no pacing).
func NewRatePacer(rps float64) Pacer {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
