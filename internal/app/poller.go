package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/five82/kbchat/internal/kb"
)

const defaultPollInterval = 2 * time.Second

// Ticker is the subset of *time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Poller owns at most one recurring status fetch.
type Poller struct {
	ctx       context.Context
	fetcher   kb.StatusFetcher
	logger    *zap.Logger
	newTicker TickerFunc
	group     singleflight.Group

	mu   sync.Mutex
	stop chan struct{} // nil when stopped
	done chan struct{} // closed when the most recent loop exits
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithTicker replaces the ticker factory.
func WithTicker(fn TickerFunc) PollerOption {
	return func(p *Poller) {
		if fn != nil {
			p.newTicker = fn
		}
	}
}

// NewPoller builds a stopped Poller. ctx bounds every fetch it performs;
// stopping the poller does not cancel a fetch already in flight.
func NewPoller(ctx context.Context, fetcher kb.StatusFetcher, logger *zap.Logger, opts ...PollerOption) *Poller {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller{
		ctx:       ctx,
		fetcher:   fetcher,
		logger:    logger.Named("poller"),
		newTicker: newRealTicker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins calling onSnapshot with a fresh observation every interval,
// first after one interval has elapsed. It returns false and does nothing if
// the poller is already running.
func (p *Poller) Start(interval time.Duration, onSnapshot func(kb.Observation)) bool {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runningLocked() {
		return false
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop = stop
	p.done = done

	ticker := p.newTicker(interval)
	go p.loop(ticker, stop, done, onSnapshot)

	p.logger.Debug("poller started", zap.Duration("interval", interval))
	return true
}

// Stop cancels the active ticker. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
	p.logger.Debug("poller stopped")
}

// Running reports whether a poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

func (p *Poller) runningLocked() bool {
	if p.stop == nil {
		return false
	}
	select {
	case <-p.done:
		// loop ended with the context
		p.stop = nil
		return false
	default:
		return true
	}
}

func (p *Poller) loop(ticker Ticker, stop, done chan struct{}, onSnapshot func(kb.Observation)) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C():
		}

		// A tick and a stop can be ready together; stop wins.
		select {
		case <-stop:
			return
		default:
		}

		obs := p.FetchOnce(p.ctx)
		if onSnapshot != nil {
			onSnapshot(obs)
		}
	}
}

// FetchOnce performs one status request. Failures come back as
// kb.Unavailable; concurrent callers share a single request.
func (p *Poller) FetchOnce(ctx context.Context) kb.Observation {
	v, _, _ := p.group.Do("status", func() (any, error) {
		resp, err := p.fetcher.FetchStatus(ctx)
		if err != nil {
			p.logger.Warn("status poll failed", zap.Error(err))
			return kb.Unavailable(err), nil
		}
		if resp == nil {
			err := fmt.Errorf("empty status response")
			p.logger.Warn("status poll failed", zap.Error(err))
			return kb.Unavailable(err), nil
		}
		snap := resp.Snapshot()
		p.logger.Debug("status polled",
			zap.Bool("scraping", snap.ScrapingInProgress),
			zap.Bool("ready", snap.ChatbotReady),
			zap.String("progress", snap.Progress.String()),
		)
		return kb.Observed(snap), nil
	})
	return v.(kb.Observation)
}
