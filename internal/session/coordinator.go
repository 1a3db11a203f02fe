package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/kbchat/internal/kb"
	"github.com/five82/kbchat/internal/state"
)

// Transcript texts appended by the coordinator.
const (
	WelcomeText     = "Hello! The knowledge base is ready. Ask me anything about it."
	UnavailableText = "The assistant is unavailable until the knowledge base is ready."
	replyErrorText  = "Sorry, something went wrong: "
)

const defaultInterval = 2 * time.Second

// Poller is the status poller the coordinator controls.
type Poller interface {
	Start(interval time.Duration, onSnapshot func(kb.Observation)) bool
	Stop()
	Running() bool
	FetchOnce(ctx context.Context) kb.Observation
}

// Task is a network call the owner runs off the event loop. The returned
// Completion must be applied back on the loop.
type Task func(ctx context.Context) Completion

// Completion resumes a Task on the event loop.
type Completion func(c *Coordinator)

// Target selects what an ingestion request crawls.
type Target struct {
	url    string
	single bool
}

// WholeSite targets the service's configured site.
func WholeSite() Target { return Target{} }

// SingleURL targets one page.
func SingleURL(u string) Target { return Target{url: u, single: true} }

// URL returns the page for single-URL targets.
func (t Target) URL() string { return t.url }

// IsSingle reports whether t is a single-URL target.
func (t Target) IsSingle() bool { return t.single }

func (t Target) op() string {
	if t.single {
		return "POST /scrape_url"
	}
	return "GET /scrape"
}

// Options wire a Coordinator.
type Options struct {
	Service  kb.Service
	Poller   Poller
	Store    *state.Store
	Logger   *zap.Logger
	Interval time.Duration
	// Deliver receives poll observations on the poller's goroutine and must
	// hand them back to the event loop, where Apply is called.
	Deliver func(kb.Observation)
	Now     func() time.Time
}

// Coordinator owns mode, surface and transcript for one session. It is not
// safe for concurrent use; every method runs on the owner's event loop.
type Coordinator struct {
	svc      kb.Service
	poller   Poller
	store    *state.Store
	logger   *zap.Logger
	interval time.Duration
	deliver  func(kb.Observation)
	now      func() time.Time

	surface    Surface
	inline     string
	transcript Transcript
	welcomed   bool
	ingesting  bool
	chatSeq    uint64
}

// New builds a Coordinator in Offline mode.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		svc:      opts.Service,
		poller:   opts.Poller,
		store:    opts.Store,
		logger:   opts.Logger,
		interval: opts.Interval,
		deliver:  opts.Deliver,
		now:      opts.Now,
		surface:  Describe(kb.Observation{}),
	}
	if c.store == nil {
		c.store = &state.Store{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("session")
	if c.interval <= 0 {
		c.interval = defaultInterval
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// SetDeliver replaces the poll callback. Owners that create their event loop
// after the coordinator use it before the first ingestion request.
func (c *Coordinator) SetDeliver(fn func(kb.Observation)) {
	c.deliver = fn
}

// Mode returns the current mode.
func (c *Coordinator) Mode() Mode { return c.surface.Mode }

// Surface returns the state the front end should display.
func (c *Coordinator) Surface() Surface {
	s := c.surface
	s.Inline = c.inline
	return s
}

// Messages returns a copy of the transcript.
func (c *Coordinator) Messages() []Message { return c.transcript.Messages() }

// Store exposes the observation history.
func (c *Coordinator) Store() *state.Store { return c.store }

// Ingesting reports whether an ingestion request is awaiting its response.
func (c *Coordinator) Ingesting() bool { return c.ingesting }

// Apply reconciles an observation. It reports whether anything visible changed,
// so repeated identical observations return false.
func (c *Coordinator) Apply(obs kb.Observation) bool {
	c.store.Record(obs)

	if c.ingesting {
		// Keep the optimistic Scraping surface until the request returns.
		c.logger.Debug("observation held while ingestion request is pending")
		return false
	}

	next := Describe(obs)
	prev := c.surface
	changed := !next.Equal(prev)
	c.surface = next

	if prev.Mode != next.Mode {
		if c.inline != "" {
			c.inline = ""
			changed = true
		}
		fields := []zap.Field{
			zap.Stringer("from", prev.Mode),
			zap.Stringer("mode", next.Mode),
		}
		if err := obs.Err(); err != nil {
			fields = append(fields, zap.Error(err))
		}
		c.logger.Info("mode changed", fields...)
	}

	if next.Mode == Scraping && c.poller != nil && !c.poller.Running() {
		// A job started elsewhere, or before this session.
		if c.poller.Start(c.interval, c.deliver) {
			c.logger.Info("poller started for running job", zap.Duration("interval", c.interval))
		}
	}

	if next.Mode == Ready {
		if c.poller != nil && c.poller.Running() {
			c.poller.Stop()
			c.logger.Debug("poller stopped on ready")
		}
		if !c.welcomed {
			c.welcomed = true
			c.appendMessage(SenderBot, WelcomeText)
			changed = true
		}
	}
	return changed
}

// DismissInline clears the validation message, e.g. when the URL prompt is
// cancelled. It reports whether there was one.
func (c *Coordinator) DismissInline() bool {
	if c.inline == "" {
		return false
	}
	c.inline = ""
	return true
}

// Refresh returns a task performing one immediate status fetch.
func (c *Coordinator) Refresh() Task {
	poller := c.poller
	return func(ctx context.Context) Completion {
		obs := poller.FetchOnce(ctx)
		return func(c *Coordinator) { c.Apply(obs) }
	}
}

// RequestIngestion validates target, forces Scraping and returns the request
// task. Validation failures are shown inline and return no task.
func (c *Coordinator) RequestIngestion(target Target) (Task, error) {
	if target.single {
		normalized, err := validateTarget(target.url)
		if err != nil {
			c.inline = kb.UserMessage(err)
			c.logger.Info("ingestion rejected", zap.String("reason", c.inline))
			return nil, err
		}
		target.url = normalized
	}
	if c.ingesting || c.surface.Mode == Scraping {
		err := kb.Validation(target.op(), "An ingestion job is already running.")
		c.inline = err.UserMessage()
		c.logger.Info("ingestion rejected", zap.String("reason", c.inline))
		return nil, err
	}

	c.inline = ""
	c.ingesting = true
	c.surface = busySurface(StatusStarting)
	c.logger.Info("ingestion requested",
		zap.Bool("single", target.single),
		zap.String("url", target.url),
		zap.Stringer("mode", c.surface.Mode),
	)

	svc := c.svc
	return func(ctx context.Context) Completion {
		var (
			resp kb.ScrapeResponse
			err  error
		)
		if target.single {
			resp, err = svc.ScrapeURL(ctx, target.url)
		} else {
			resp, err = svc.StartScrape(ctx)
		}
		return func(c *Coordinator) { c.finishIngestion(resp, err) }
	}, nil
}

func (c *Coordinator) finishIngestion(resp kb.ScrapeResponse, err error) {
	c.ingesting = false

	if err != nil {
		c.surface = Describe(c.store.Snapshot().Last)
		c.surface.Status = "Could not start ingestion: " + kb.UserMessage(err)
		c.surface.StatusIsError = true
		c.logger.Warn("ingestion request failed",
			zap.Error(err),
			zap.Stringer("mode", c.surface.Mode),
		)
		return
	}

	msg := strings.TrimSpace(resp.Message)
	if msg == "" {
		msg = StatusIngestStarted
	}
	c.surface.Status = msg

	if c.poller != nil && c.poller.Start(c.interval, c.deliver) {
		c.logger.Info("poller started", zap.Duration("interval", c.interval))
	}
}

// SubmitQuestion appends text to the transcript and returns the chat task.
// Blank input is ignored. It reports whether the transcript changed.
func (c *Coordinator) SubmitQuestion(text string) (Task, bool) {
	question := strings.TrimSpace(text)
	if question == "" {
		return nil, false
	}

	if c.surface.Mode != Ready {
		c.appendMessage(SenderBot, UnavailableText)
		c.logger.Info("question refused", zap.Stringer("mode", c.surface.Mode))
		return nil, true
	}

	c.appendMessage(SenderUser, question)
	c.chatSeq++
	seq := c.chatSeq
	c.logger.Debug("question submitted", zap.Uint64("seq", seq))

	svc := c.svc
	return func(ctx context.Context) Completion {
		resp, err := svc.Ask(ctx, question)
		return func(c *Coordinator) { c.finishQuestion(seq, resp, err) }
	}, true
}

func (c *Coordinator) finishQuestion(seq uint64, resp kb.ChatResponse, err error) {
	fields := []zap.Field{
		zap.Uint64("seq", seq),
		zap.Uint64("latest", c.chatSeq),
	}
	if err != nil {
		c.transcript.Append(Message{Sender: SenderBot, Text: replyErrorText + kb.UserMessage(err), At: c.now(), Failed: true})
		c.logger.Warn("chat request failed", append(fields, zap.Error(err))...)
		return
	}
	c.appendMessage(SenderBot, resp.Answer)
	c.logger.Debug("chat reply received", fields...)
}

func (c *Coordinator) appendMessage(sender Sender, text string) {
	c.transcript.Append(Message{Sender: sender, Text: text, At: c.now()})
}

// validateTarget trims and checks a single-page URL. A missing scheme
// defaults to https.
func validateTarget(raw string) (string, error) {
	const op = "POST /scrape_url"
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", kb.Validation(op, "Enter a URL to ingest.")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", &kb.Error{Kind: kb.KindValidation, Op: op, Detail: fmt.Sprintf("%q is not a valid URL.", raw), Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", kb.Validation(op, "Only http and https URLs can be ingested.")
	}
	if u.Host == "" {
		return "", kb.Validation(op, fmt.Sprintf("%q is missing a host.", strings.TrimSpace(raw)))
	}
	return u.String(), nil
}
