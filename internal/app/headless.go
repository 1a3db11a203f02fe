package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/kbchat/internal/kb"
	"github.com/five82/kbchat/internal/session"
	"github.com/five82/kbchat/internal/state"
)

var errNotReady = errors.New("ingestion finished but the knowledge base is not ready")

// headless drives a Coordinator without a terminal. The calling goroutine is
// the event loop: tasks run inline and poll observations arrive on obs.
type headless struct {
	coord  *session.Coordinator
	poller session.Poller
	out    io.Writer

	obs       chan kb.Observation
	done      chan struct{}
	closeOnce sync.Once
}

func newHeadless(svc kb.Service, poller session.Poller, store *state.Store, logger *zap.Logger, interval time.Duration, out io.Writer) *headless {
	h := &headless{
		poller: poller,
		out:    out,
		obs:    make(chan kb.Observation, 1),
		done:   make(chan struct{}),
	}
	h.coord = session.New(session.Options{
		Service:  svc,
		Poller:   poller,
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Deliver:  h.deliver,
	})
	return h
}

// deliver runs on the poller goroutine.
func (h *headless) deliver(obs kb.Observation) {
	select {
	case h.obs <- obs:
	case <-h.done:
	}
}

// close stops polling and releases a delivery blocked on a loop that has
// already returned.
func (h *headless) close() {
	h.closeOnce.Do(func() {
		h.poller.Stop()
		close(h.done)
	})
}

func (h *headless) run(ctx context.Context, task session.Task) {
	if task == nil {
		return
	}
	done := task(ctx)
	done(h.coord)
}

func (h *headless) status(ctx context.Context) error {
	h.run(ctx, h.coord.Refresh())
	h.printSurface()

	s := h.coord.Surface()
	if p := s.Progress; p != nil {
		fmt.Fprintf(h.out, "%-9s %s pages (%.0f%%)\n", "progress", p, p.Fraction()*100)
	}

	last := h.coord.Store().Snapshot().Last
	if last.Available() {
		return nil
	}
	if err := last.Err(); err != nil {
		return fmt.Errorf("knowledge base unavailable: %w", err)
	}
	return errors.New("knowledge base unavailable")
}

func (h *headless) scrape(ctx context.Context, target session.Target, wait bool) error {
	// Learn the current mode first so a running job is rejected.
	h.run(ctx, h.coord.Refresh())

	task, err := h.coord.RequestIngestion(target)
	if err != nil {
		return err
	}
	h.run(ctx, task)

	s := h.coord.Surface()
	if s.StatusIsError {
		return errors.New(s.Status)
	}
	fmt.Fprintln(h.out, s.Status)

	if !wait {
		return nil
	}
	return h.waitReady(ctx)
}

// waitReady applies poll observations until the knowledge base is ready. A
// job observed running that then ends without readiness is an error.
func (h *headless) waitReady(ctx context.Context) error {
	sawScraping := false
	for h.coord.Mode() != session.Ready {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case obs := <-h.obs:
			if !h.coord.Apply(obs) {
				continue
			}
			h.printSurface()
			switch h.coord.Mode() {
			case session.Scraping:
				sawScraping = true
			case session.Offline:
				if sawScraping && obs.Available() {
					return errNotReady
				}
			}
		}
	}
	return nil
}

func (h *headless) ask(ctx context.Context, question string) error {
	h.run(ctx, h.coord.Refresh())

	task, changed := h.coord.SubmitQuestion(question)
	if !changed {
		return errors.New("question is empty")
	}
	if task == nil {
		return fmt.Errorf("%s %s", session.UnavailableText, h.coord.Surface().Status)
	}
	h.run(ctx, task)

	msgs := h.coord.Messages()
	reply := msgs[len(msgs)-1]
	if reply.Failed {
		return errors.New(reply.Text)
	}
	fmt.Fprintln(h.out, reply.Text)
	return nil
}

func (h *headless) printSurface() {
	s := h.coord.Surface()
	fmt.Fprintf(h.out, "%-9s %s\n", s.Mode, s.Status)
}
