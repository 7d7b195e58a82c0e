package availability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/biszaal/expenzez-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []string
	taken map[string]bool
	err   error
	gates map[string]chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		taken: map[string]bool{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeClient) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, candidate)
	gate := f.gates[candidate]
	taken := f.taken[candidate]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return taken, err
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func testConfig() config.AvailabilityConfig {
	return config.AvailabilityConfig{
		Debounce:  20 * time.Millisecond,
		Timeout:   500 * time.Millisecond,
		MinLength: 3,
		RPS:       1000,
		Burst:     1000,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDebounceCoalescesBurst(t *testing.T) {
	client := newFakeClient()
	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	for _, candidate := range []string{"a", "al", "ali", "alic", "alice"} {
		checker.Submit(candidate)
	}

	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateAvailable
	})

	// One lookup, for the final candidate only.
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "alice", client.lastCall())
	assert.Equal(t, "alice", checker.Result().Candidate)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	client := newFakeClient()
	gate := make(chan struct{})
	client.gates["alice"] = gate
	client.taken["alice"] = true

	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	checker.Submit("alice")
	waitFor(t, time.Second, func() bool { return client.callCount() == 1 })

	// The user keeps typing while the first lookup is stuck in flight.
	checker.Submit("alice2")
	waitFor(t, time.Second, func() bool {
		result := checker.Result()
		return result.Candidate == "alice2" && result.State == StateAvailable
	})

	// The late "taken" answer for the old candidate must not be applied.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	result := checker.Result()
	assert.Equal(t, "alice2", result.Candidate)
	assert.Equal(t, StateAvailable, result.State)
}

func TestShortCandidateNeverFires(t *testing.T) {
	client := newFakeClient()
	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	checker.Submit("ab")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, client.callCount())
	assert.Equal(t, StateIdle, checker.Result().State)
}

func TestTakenCandidate(t *testing.T) {
	client := newFakeClient()
	client.taken["bob"] = true

	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	checker.Submit("bob")
	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateTaken
	})
	assert.NotEmpty(t, checker.Result().Message)
}

func TestLookupFailureIsNeverADefinitiveAnswer(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("boom")

	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	checker.Submit("carol")
	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateErrored
	})
	assert.Equal(t, "could not verify username availability", checker.Result().Message)
}

func TestLookupTimesOutToErrored(t *testing.T) {
	client := newFakeClient()
	client.gates["dave"] = make(chan struct{}) // never released

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond

	checker := New(client, cfg, zap.NewNop())
	defer checker.Close()

	checker.Submit("dave")
	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateErrored
	})
}

func TestEditInvalidatesPreviousResult(t *testing.T) {
	client := newFakeClient()
	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	checker.Submit("erin")
	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateAvailable
	})

	// Any edit moves the state back to checking until a fresh lookup lands,
	// even when re-typing a previously checked value.
	checker.Submit("erin2")
	require.Equal(t, StateChecking, checker.Result().State)

	checker.Submit("erin")
	require.Equal(t, StateChecking, checker.Result().State)
	waitFor(t, time.Second, func() bool {
		return checker.Result().State == StateAvailable
	})

	// The pending "erin2" lookup was superseded before its debounce
	// elapsed, so only the two "erin" checks ever fired.
	assert.Equal(t, 2, client.callCount())
}

func TestSubscribeSeesEveryTransition(t *testing.T) {
	client := newFakeClient()
	checker := New(client, testConfig(), zap.NewNop())
	defer checker.Close()

	var (
		mu     sync.Mutex
		states []State
	)
	checker.Subscribe(func(r Result) {
		mu.Lock()
		states = append(states, r.State)
		mu.Unlock()
	})

	checker.Submit("frank")
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateChecking, StateAvailable}, states)
}
