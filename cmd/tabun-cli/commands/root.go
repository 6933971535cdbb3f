package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tabun-api/lib/pagecache"
	"tabun-api/lib/restyutil"
	"tabun-api/lib/session"
	"tabun-api/lib/telemetry"

	"github.com/dgraph-io/badger/v4"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
	interval   *time.Duration
	cacheDir   *string
	dumpDir    *string
)

var (
	cfg     Config
	client  *session.Client
	cacheDB *badger.DB
)

var rootCmd = &cobra.Command{
	Use:               "tabun-cli",
	Short:             "tabun-cli reads tabun from the command line.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if cacheDB != nil {
			cacheDB.Close()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "tabun.json5", "The config file with credentials and defaults.")
	debug = flags.Bool("debug", false, "Log every request.")
	interval = flags.Duration("interval", 0, "Minimum time between requests, overrides the config.")
	cacheDir = flags.String("cache", "", "Cache anonymous pages in this directory, overrides the config.")
	dumpDir = flags.String("dump", "", "Write every http exchange to this directory.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	telemetry.InitSlog(*debug)

	var err error
	cfg, err = readConfig(*configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if cmd.Flags().Changed("interval") {
		cfg.QueryIntervalMs = int(interval.Milliseconds())
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}

	opts := session.TransportOptions{CloudflareBypass: cfg.CloudflareBypass}
	if *dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpDir)
		if err != nil {
			return fmt.Errorf("prepare dump directory: %w", err)
		}
		opts.Dumps = output
	}
	var transport session.Transport = session.NewRestyTransport(opts)

	if cfg.CacheDir != "" {
		cacheDB, err = badger.Open(badger.DefaultOptions(cfg.CacheDir).WithLogger(nil))
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		transport = pagecache.New(transport, cacheDB, cfg.cacheTTL())
	}

	client, err = session.New(session.Options{
		BaseURL:       cfg.BaseURL,
		SessionID:     cfg.SessionID,
		SecurityKey:   cfg.SecurityKey,
		Key:           cfg.Key,
		QueryInterval: cfg.queryInterval(),
		Transport:     transport,
	})
	if err != nil {
		return err
	}

	if cfg.SessionID == "" && cfg.Username != "" && cfg.Password != "" {
		slog.Info("logging in", "username", cfg.Username)
		if err := client.Login(cmd.Context(), cfg.Username, cfg.Password, false); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	return nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func blogName(blog string) string {
	if blog == "" {
		return "-"
	}
	return blog
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func optional[T any](v *T) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
