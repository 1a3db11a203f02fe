package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/kbchat/internal/app"
	"github.com/five82/kbchat/internal/kb"
	"github.com/five82/kbchat/internal/session"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "kbchat: %s\n", kb.UserMessage(err))
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := app.Options{Version: version}

	root := &cobra.Command{
		Use:           "kbchat",
		Short:         "Chat with a knowledge base built from a crawled site",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/kbchat/config.toml)")
	flags.StringVar(&opts.APIURL, "api", "", "knowledge-base API URL (overrides config)")
	flags.DurationVar(&opts.PollInterval, "poll", 0, "status poll interval while scraping, e.g. 2s (overrides config)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		statusCmd(&opts),
		scrapeCmd(&opts),
		askCmd(&opts),
		versionCmd(),
	)
	return root
}

func statusCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the knowledge-base mode and scrape progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Status(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
}

func scrapeCmd(opts *app.Options) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Start ingestion of the whole site, or of a single page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := session.WholeSite()
			if len(args) == 1 {
				// An explicit argument is always a single page, even when blank.
				target = session.SingleURL(args[0])
			}
			return app.Scrape(cmd.Context(), *opts, target, wait, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "follow progress until the knowledge base is ready")
	return cmd
}

func askCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Ask(cmd.Context(), *opts, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kbchat version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kbchat %s\n", version)
		},
	}
}
