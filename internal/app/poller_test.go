package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/five82/kbchat/internal/kb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	errAt map[int]error // 1-based call index → error
	gate  chan struct{} // when set, each fetch waits for a receive
}

func (f *fakeFetcher) FetchStatus(ctx context.Context) (*kb.StatusResponse, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if err := f.errAt[n]; err != nil {
		return nil, err
	}
	return &kb.StatusResponse{
		ScrapingInProgress: true,
		Progress:           &kb.Progress{PagesScraped: n, TotalPages: 10},
	}, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*manualTicker
	periods []time.Duration
}

func (tf *tickerFactory) New(d time.Duration) Ticker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	tf.tickers = append(tf.tickers, t)
	tf.periods = append(tf.periods, d)
	return t
}

func (tf *tickerFactory) Count() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return len(tf.tickers)
}

func (tf *tickerFactory) Last() *manualTicker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.tickers[len(tf.tickers)-1]
}

func collect() (func(kb.Observation), <-chan kb.Observation) {
	ch := make(chan kb.Observation, 16)
	return func(obs kb.Observation) { ch <- obs }, ch
}

func recv(t *testing.T, ch <-chan kb.Observation) kb.Observation {
	t.Helper()
	select {
	case obs := <-ch:
		return obs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for observation")
		return kb.Observation{}
	}
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not exit")
	}
}

func TestPoller_StartTwiceRunsOneTicker(t *testing.T) {
	fetcher := &fakeFetcher{}
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), fetcher, zap.NewNop(), WithTicker(tf.New))

	deliver, got := collect()
	require.True(t, p.Start(2*time.Second, deliver))
	require.False(t, p.Start(2*time.Second, deliver), "second Start must be a no-op")
	require.Equal(t, 1, tf.Count())
	require.True(t, p.Running())

	ticker := tf.Last()
	for i := 1; i <= 3; i++ {
		ticker.ch <- time.Now()
		obs := recv(t, got)
		snap, ok := obs.Snapshot()
		require.True(t, ok)
		require.Equal(t, i, snap.Progress.PagesScraped)
	}
	require.Equal(t, 3, fetcher.Calls())

	p.Stop()
	waitDone(t, p)
	require.True(t, ticker.stopped.Load(), "ticker should be released on stop")
	require.False(t, p.Running())
}

func TestPoller_NoFetchBeforeFirstTick(t *testing.T) {
	fetcher := &fakeFetcher{}
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), fetcher, zap.NewNop(), WithTicker(tf.New))

	deliver, got := collect()
	require.True(t, p.Start(time.Second, deliver))

	select {
	case <-got:
		t.Fatal("observation delivered before the first tick")
	case <-time.After(50 * time.Millisecond):
	}
	require.Zero(t, fetcher.Calls())

	p.Stop()
	waitDone(t, p)
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), &fakeFetcher{}, zap.NewNop(), WithTicker(tf.New))

	require.NotPanics(t, p.Stop, "stop before start")

	require.True(t, p.Start(time.Second, nil))
	p.Stop()
	require.NotPanics(t, p.Stop, "stop after stop")
	waitDone(t, p)

	// A stopped poller can be started again.
	require.True(t, p.Start(time.Second, nil))
	require.Equal(t, 2, tf.Count())
	p.Stop()
	waitDone(t, p)
}

func TestPoller_FailedTickYieldsUnavailableAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{errAt: map[int]error{2: errors.New("connection refused")}}
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), fetcher, zap.NewNop(), WithTicker(tf.New))

	deliver, got := collect()
	require.True(t, p.Start(time.Second, deliver))
	ticker := tf.Last()

	ticker.ch <- time.Now()
	require.True(t, recv(t, got).Available())

	ticker.ch <- time.Now()
	obs := recv(t, got)
	require.False(t, obs.Available())
	require.EqualError(t, obs.Err(), "connection refused")

	ticker.ch <- time.Now()
	require.True(t, recv(t, got).Available(), "polling continues after a failure")

	p.Stop()
	waitDone(t, p)
}

func TestPoller_StopDoesNotCancelInFlightFetch(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), fetcher, zap.NewNop(), WithTicker(tf.New))

	deliver, got := collect()
	require.True(t, p.Start(time.Second, deliver))
	tf.Last().ch <- time.Now()

	// The fetch is blocked on the gate; stopping now must not drop it.
	p.Stop()
	fetcher.gate <- struct{}{}

	require.True(t, recv(t, got).Available())
	waitDone(t, p)
	require.Equal(t, 1, fetcher.Calls())
}

func TestPoller_ContextCancelEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tf := &tickerFactory{}
	p := NewPoller(ctx, &fakeFetcher{}, zap.NewNop(), WithTicker(tf.New))

	require.True(t, p.Start(time.Second, nil))
	cancel()
	waitDone(t, p)
	require.False(t, p.Running())
}

func TestPoller_NonPositiveIntervalUsesDefault(t *testing.T) {
	tf := &tickerFactory{}
	p := NewPoller(context.Background(), &fakeFetcher{}, zap.NewNop(), WithTicker(tf.New))

	require.True(t, p.Start(0, nil))
	p.Stop()
	waitDone(t, p)

	tf.mu.Lock()
	defer tf.mu.Unlock()
	require.Equal(t, []time.Duration{defaultPollInterval}, tf.periods)
}

func TestPoller_FetchOnceNilResponse(t *testing.T) {
	p := NewPoller(context.Background(), nilFetcher{}, nil)
	obs := p.FetchOnce(context.Background())
	require.False(t, obs.Available())
	require.Error(t, obs.Err())
}

type nilFetcher struct{}

func (nilFetcher) FetchStatus(context.Context) (*kb.StatusResponse, error) { return nil, nil }

func TestPoller_RealTickerFires(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := NewPoller(context.Background(), fetcher, zap.NewNop())

	deliver, got := collect()
	require.True(t, p.Start(10*time.Millisecond, deliver))
	recv(t, got)
	p.Stop()
	waitDone(t, p)
}
