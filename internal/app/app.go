package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/kbchat/internal/config"
	"github.com/five82/kbchat/internal/kb"
	"github.com/five82/kbchat/internal/logging"
	"github.com/five82/kbchat/internal/prefs"
	"github.com/five82/kbchat/internal/session"
	"github.com/five82/kbchat/internal/state"
	"github.com/five82/kbchat/internal/ui"
)

// Options configure a kbchat run. Non-zero fields override the config file.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/kbchat/prefs.toml
	APIURL       string
	PollInterval time.Duration
	LogLevel     string
	Version      string // sent in the User-Agent header
}

// runtime is everything a TUI or headless run shares.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	flush  func()
	client *kb.Client
	store  *state.Store
	poller *Poller
}

// bootstrap loads config, opens the log and builds the client and poller.
func bootstrap(ctx context.Context, opts Options) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if opts.PollInterval > 0 {
		cfg.PollInterval = opts.PollInterval
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	logger, flush, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	logger = logger.Named("kbchat")

	client, err := kb.NewClient(cfg.APIURL, kb.Options{
		RequestTimeout: cfg.RequestTimeout,
		ChatTimeout:    cfg.ChatTimeout,
		UserAgent:      userAgent(opts.Version),
		Logger:         logger,
	})
	if err != nil {
		flush()
		return nil, fmt.Errorf("init kb client: %w", err)
	}

	logger.Info("kbchat starting",
		zap.String("version", opts.Version),
		zap.String("api_url", client.BaseURL()),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		flush:  flush,
		client: client,
		store:  &state.Store{},
		poller: NewPoller(ctx, client, logger),
	}, nil
}

// userAgent returns the User-Agent for version, or empty for the client default.
func userAgent(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	return "kbchat/" + version
}

// coordinator builds a session over the runtime's client and poller.
func (rt *runtime) coordinator(deliver func(kb.Observation)) *session.Coordinator {
	return session.New(session.Options{
		Service:  rt.client,
		Poller:   rt.poller,
		Store:    rt.store,
		Logger:   rt.logger,
		Interval: rt.cfg.PollInterval,
		Deliver:  deliver,
	})
}

func (rt *runtime) headless(out io.Writer) *headless {
	return newHeadless(rt.client, rt.poller, rt.store, rt.logger, rt.cfg.PollInterval, out)
}

func (rt *runtime) close() {
	rt.poller.Stop()
	rt.logger.Info("kbchat exiting")
	rt.flush()
}

// Run boots the kbchat TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		rt.logger.Warn("load prefs failed, using defaults", zap.Error(err))
	}

	// The UI installs the real deliver func once its program exists.
	coord := rt.coordinator(nil)

	return ui.Run(ui.Options{
		Context:      ctx,
		Coordinator:  coord,
		APIURL:       rt.client.BaseURL(),
		LogPath:      rt.cfg.LogFile,
		ThemeName:    userPrefs.Theme,
		PlainAnswers: userPrefs.PlainAnswers,
		PrefsPath:    opts.PrefsPath,
		Logger:       rt.logger,
	})
}

// Status prints the knowledge base's current state to out.
func Status(ctx context.Context, opts Options, out io.Writer) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	h := rt.headless(out)
	defer h.close()
	return h.status(ctx)
}

// Scrape starts ingestion of target. A single-URL target is validated before
// any request. With wait it follows progress until the knowledge base is ready.
func Scrape(ctx context.Context, opts Options, target session.Target, wait bool, out io.Writer) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	h := rt.headless(out)
	defer h.close()
	return h.scrape(ctx, target, wait)
}

// Ask sends one question and prints the answer.
func Ask(ctx context.Context, opts Options, question string, out io.Writer) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	h := rt.headless(out)
	defer h.close()
	return h.ask(ctx, question)
}
