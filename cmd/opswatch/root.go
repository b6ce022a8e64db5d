package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/opswatch/console/internal/api"
	"github.com/opswatch/console/internal/auth"
	"github.com/opswatch/console/internal/config"
	"github.com/opswatch/console/internal/events"
	"github.com/opswatch/console/internal/notify"
	"github.com/opswatch/console/internal/terminal"
	"github.com/opswatch/console/internal/transport"
	"github.com/opswatch/console/internal/ui"
)

var (
	flagConfig string
	flagServer string
)

var rootCmd = &cobra.Command{
	Use:   "opswatch",
	Short: "Terminal console for the opswatch infrastructure backend",
	Long: `opswatch is a terminal client for the opswatch backend: browse managed
servers, open SSH terminal sessions to them, and watch monitoring check
updates arrive live.`,
	SilenceUsage: true,
	RunE:         runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "backend base URL (overrides config)")
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.Server.URL = flagServer
	}
	return cfg, nil
}

// newLogger writes structured logs next to the state files so they never
// bleed into the TUI.
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	dir := filepath.Dir(cfg.History.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "console.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger, func() { f.Close() }, nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	authCtx := &auth.Context{}
	if err := authCtx.Load(cfg.Session.Path); err != nil {
		return err
	}
	if !authCtx.LoggedIn() {
		return fmt.Errorf("not logged in; run 'opswatch login' first")
	}

	apiClient := api.New(cfg.Server.URL, authCtx, logger)
	dialer := &transport.WebsocketDialer{Logger: logger}
	mux := terminal.NewMultiplexer(cfg.WSBase(), dialer, authCtx, logger)

	store, err := notify.NewStore(cfg.History.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	updates := make(chan events.CheckUpdate, 16)
	sink := notify.Fanout{
		store,
		notify.Func(func(u events.CheckUpdate) {
			select {
			case updates <- u:
			default:
			}
		}),
	}
	channel := events.New(cfg.WSBase(), dialer, authCtx, sink, cfg.Events.RetryDelay, logger)
	channel.Start()
	defer channel.Stop()

	p := tea.NewProgram(ui.New(mux, apiClient, updates), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	// Keep the refreshed token for the next run.
	return authCtx.Save(cfg.Session.Path)
}
