package predict

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Skufu/heartform/internal/metrics"
)

const defaultWakeTimeout = 10 * time.Second

// Waker owns the process-wide readiness flag of the inference service. The
// flag starts false, becomes true after the first probe that completes
// without a transport error and is never reset.
type Waker struct {
	client  *Client
	timeout time.Duration
	logger  *log.Logger

	ready atomic.Bool
	group singleflight.Group
}

func NewWaker(client *Client, timeout time.Duration, logger *log.Logger) *Waker {
	if logger == nil {
		logger = log.Default()
	}
	if timeout <= 0 {
		timeout = defaultWakeTimeout
	}
	return &Waker{client: client, timeout: timeout, logger: logger}
}

func (w *Waker) Ready() bool {
	return w.ready.Load()
}

// Probe sends one wake request, joining a probe already in flight, and
// reports readiness afterwards. It never returns an error: a cold service
// may refuse the request and still start.
func (w *Waker) Probe(ctx context.Context) bool {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = w.group.Do("wake", func() (any, error) {
		probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()

		if err := w.client.Wake(probeCtx); err != nil {
			metrics.RecordWakeProbe(false)
			w.logger.Printf("wake probe sent to %s, service not answering yet: %v", w.client.BaseURL(), err)
			return nil, nil
		}
		metrics.RecordWakeProbe(true)
		if !w.ready.Swap(true) {
			w.logger.Printf("inference service at %s is awake", w.client.BaseURL())
		}
		return nil, nil
	})
	return w.Ready()
}
