package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tasklist/internal/config"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
	"github.com/sandeepkv93/tasklist/internal/reminder"
	"github.com/sandeepkv93/tasklist/internal/scheduler"
	"github.com/sandeepkv93/tasklist/internal/storage"
	"github.com/sandeepkv93/tasklist/internal/store"
	"github.com/sandeepkv93/tasklist/internal/update"
)

var Version = "dev"

type options struct {
	configPath string
	backend    string
	dbPath     string
	headless   bool
}

func main() {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "tasklist",
		Short:        "Terminal task list with due-date reminders",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to config.toml")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Storage backend (sqlite, json, memory)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the task database or state file")
	rootCmd.Flags().BoolVar(&opts.headless, "headless", false, "Deliver reminders without the interactive UI")

	rootCmd.AddCommand(listCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [term]",
		Short: "Print tasks, optionally filtered by a search term",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.close()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			out := cmd.OutOrStdout()
			for t := range app.store.Query(term) {
				check := " "
				if t.Completed {
					check = "x"
				}
				line := fmt.Sprintf("[%s] %-6s %-9s %s", check, t.Priority, t.Category, t.Title)
				if t.HasDueDate() {
					line += "  due " + t.DueDate.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	return cmd
}

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	sched    *reminder.Scheduler
	feedback *notify.Log
	closers  []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown", "err", err)
		}
	}
}

func loadConfig(opts *options) (config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadOrCreate(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg = config.FromEnv(cfg)
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.dbPath != "" {
		if cfg.Backend() == storage.BackendJSON {
			cfg.Storage.StatePath = opts.dbPath
		} else {
			cfg.Storage.DBPath = opts.dbPath
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.LogPath == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f.Close, nil
}

func setup(ctx context.Context, opts *options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	repo, err := storage.Open(ctx, cfg.Backend(), cfg.StoragePath())
	if err != nil {
		a.close()
		return nil, err
	}
	var storeRepo store.Repository
	if repo != nil {
		storeRepo = repo
		a.closers = append(a.closers, repo.Close)
	}

	a.feedback = notify.NewLog(0)
	feedback := notify.Fanout{a.feedback, notify.SlogFeedback{Logger: logger}}

	s, err := store.New(ctx, storeRepo,
		store.WithFeedback(feedback),
		store.WithLogger(logger),
		store.WithCategories(cfg.CategoryList()),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = s

	var deliverer notify.Deliverer = notify.Disabled{}
	if cfg.Reminders.DesktopNotifications {
		deliverer = notify.NewExecDeliverer()
	}
	a.sched = reminder.NewScheduler(s, reminder.Config{
		Windows:   cfg.Windows(),
		Deliverer: deliverer,
		Fallback:  feedback,
		Logger:    logger,
	})
	s.Observe(a.sched)

	if key := cfg.SortKey(); key != model.SortByCreatedAt {
		if err := s.SortBy(ctx, key); err != nil {
			logger.Warn("apply default sort", "key", key, "err", err)
		}
	}
	logger.Info("tasklist ready", "backend", cfg.Backend(), "path", cfg.StoragePath(), "tasks", s.Len())
	return a, nil
}

func run(ctx context.Context, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	engine := scheduler.NewEngine(a.cfg.TickInterval(), a.cfg.Reminders.Buffer)
	engine.Start()
	defer engine.Stop()
	a.sched.Arm(engine, time.Now())

	if opts.headless {
		a.logger.Info("running headless", "interval", engine.Interval())
		a.sched.Run(ctx, engine.C())
		return nil
	}

	program := tea.NewProgram(update.NewModel(ctx, update.Deps{
		Store:     a.store,
		Reminders: a.sched,
		Engine:    engine,
		Feedback:  a.feedback,
		Logger:    a.logger,
		SortKey:   a.cfg.SortKey(),
	}), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tasklist failed: %w", err)
	}
	return nil
}
