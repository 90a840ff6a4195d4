package predict

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Skufu/heartform/internal/form"
	"github.com/Skufu/heartform/internal/metrics"
)

// StartupMessage is shown when a submission is deferred because the
// inference service has not answered a wake probe yet.
const StartupMessage = "Server is starting up. Please click predict again after 15 seconds..."

const defaultRequestTimeout = 30 * time.Second

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the request state of one form. Result is set only when
// Succeeded. Err is set when Failed, or on Idle right after a submission was
// deferred for cold start.
type State struct {
	Status Status
	Result Result
	Err    string
}

func (s State) Loading() bool {
	return s.Status == StatusPending
}

// Snapshot is everything a view needs to render one form.
type Snapshot struct {
	Form    map[string]string `json:"form"`
	Status  string            `json:"status"`
	Loading bool              `json:"loading"`
	Error   string            `json:"error,omitempty"`
	Ready   bool              `json:"ready"`
	Result  Result            `json:"result,omitempty"`
}

// Controller owns one form's field values and request state and runs its
// submissions against the inference service.
type Controller struct {
	waker   *Waker
	client  *Client
	form    *form.State
	timeout time.Duration
	logger  *log.Logger

	initOnce sync.Once

	mu       sync.Mutex
	state    State
	disposed bool
}

func NewController(waker *Waker, timeout time.Duration, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Controller{
		waker:   waker,
		client:  waker.client,
		form:    form.NewState(),
		timeout: timeout,
		logger:  logger,
	}
}

// Initialize fires the wake probe in the background. Only the first call
// has an effect.
func (c *Controller) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		c.logger.Printf("form loaded, waking inference service...")
		go c.waker.Probe(ctx)
	})
}

// UpdateField replaces one raw field value. Nothing is coerced here.
func (c *Controller) UpdateField(name, raw string) error {
	return c.form.Set(name, raw)
}

func (c *Controller) Field(name string) string {
	return c.form.Get(name)
}

// Form returns a copy of the raw field values.
func (c *Controller) Form() map[string]string {
	return c.form.Snapshot()
}

// Submit sends the form to the inference service and returns the state it
// ends in. While the service is not known to be awake the submission is
// deferred with StartupMessage and another probe is fired. A Submit while a
// previous one is pending is ignored.
func (c *Controller) Submit(ctx context.Context) State {
	c.mu.Lock()
	if c.disposed || c.state.Status == StatusPending {
		st := c.state
		c.mu.Unlock()
		return st
	}
	if !c.waker.Ready() {
		c.state = State{Status: StatusIdle, Err: StartupMessage}
		st := c.state
		c.mu.Unlock()

		metrics.RecordPrediction(metrics.OutcomeDeferred, 0)
		go c.waker.Probe(ctx)
		return st
	}
	c.state = State{Status: StatusPending}
	payload := form.BuildPayload(c.form.Snapshot())
	c.mu.Unlock()

	next := State{Status: StatusFailed, Err: transportFailure}
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed {
			return
		}
		c.state = next
	}()

	next = c.request(ctx, payload)
	return next
}

func (c *Controller) request(ctx context.Context, payload form.Payload) State {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.client.Predict(reqCtx, payload)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeFailed, time.Since(start))
		c.logger.Printf("prediction failed: %v", err)
		return State{Status: StatusFailed, Err: errorMessage(err)}
	}
	metrics.RecordPrediction(metrics.OutcomeSucceeded, time.Since(start))
	return State{Status: StatusSucceeded, Result: result}
}

// ResetPrediction drops the result or error and returns to Idle. Field values
// are kept.
func (c *Controller) ResetPrediction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.state.Status == StatusPending {
		return
	}
	c.state = State{Status: StatusIdle}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Ready() bool {
	return c.waker.Ready()
}

func (c *Controller) Snapshot() Snapshot {
	st := c.State()
	return Snapshot{
		Form:    c.form.Snapshot(),
		Status:  st.Status.String(),
		Loading: st.Loading(),
		Error:   st.Err,
		Ready:   c.waker.Ready(),
		Result:  st.Result,
	}
}

// Close disposes the controller. Requests still in flight finish but their
// outcome is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return transportFailure
}
