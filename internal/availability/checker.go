// Package availability runs the debounced username-availability check. A
// burst of keystrokes collapses into one remote lookup for the final
// candidate; a result that arrives for anything but the live candidate is
// discarded, never applied.
package availability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/biszaal/expenzez-sub001/internal/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type State string

const (
	StateIdle      State = "idle"
	StateChecking  State = "checking"
	StateAvailable State = "available"
	StateTaken     State = "taken"
	StateErrored   State = "error"
)

// Result is the checker's snapshot for one candidate. Candidate records the
// exact input the state refers to.
type Result struct {
	Candidate string
	State     State
	Message   string
}

// Client is the remote availability lookup. Exists=true means the candidate
// is already registered.
type Client interface {
	CheckUsername(ctx context.Context, candidate string) (exists bool, err error)
}

type Checker struct {
	client    Client
	logger    *zap.Logger
	debounce  time.Duration
	timeout   time.Duration
	minLength int
	limiter   *rate.Limiter

	mu        sync.Mutex
	gen       uint64
	candidate string
	timer     *time.Timer
	result    Result
	subs      []func(Result)
	closed    bool
}

func New(client Client, cfg config.AvailabilityConfig, logger *zap.Logger) *Checker {
	return &Checker{
		client:    client,
		logger:    logger,
		debounce:  cfg.Debounce,
		timeout:   cfg.Timeout,
		minLength: cfg.MinLength,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		result:    Result{State: StateIdle},
	}
}

// Submit feeds the current input value. Each call supersedes any pending or
// in-flight check; the lookup fires only after the debounce interval passes
// with no newer input.
func (c *Checker) Submit(candidate string) {
	candidate = strings.TrimSpace(candidate)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.gen++
	gen := c.gen
	c.candidate = candidate
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if len(candidate) < c.minLength {
		c.result = Result{Candidate: candidate, State: StateIdle}
		c.notifyLocked()
		c.mu.Unlock()
		return
	}

	c.result = Result{Candidate: candidate, State: StateChecking}
	c.notifyLocked()
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen, candidate)
	})
	c.mu.Unlock()
}

func (c *Checker) fire(gen uint64, candidate string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		exists bool
		err    error
	)
	if err = c.limiter.Wait(ctx); err == nil {
		exists, err = c.client.CheckUsername(ctx, candidate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// A newer candidate superseded this check while it was in flight.
		c.logger.Debug("discarding stale availability result",
			zap.String("candidate", candidate))
		return
	}

	switch {
	case err != nil:
		c.logger.Warn("availability check failed",
			zap.String("candidate", candidate), zap.Error(err))
		c.result = Result{
			Candidate: candidate,
			State:     StateErrored,
			Message:   "could not verify username availability",
		}
	case exists:
		c.result = Result{
			Candidate: candidate,
			State:     StateTaken,
			Message:   "this username is already taken",
		}
	default:
		c.result = Result{Candidate: candidate, State: StateAvailable}
	}
	c.notifyLocked()
}

// Result returns the current snapshot.
func (c *Checker) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Subscribe registers a callback invoked on every state change. Callbacks
// run on the checker's goroutine and must not call back into the checker.
func (c *Checker) Subscribe(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Close cancels any pending check. Results from lookups already in flight
// are discarded.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Checker) notifyLocked() {
	for _, fn := range c.subs {
		fn(c.result)
	}
}
