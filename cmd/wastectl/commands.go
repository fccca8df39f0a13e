package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"deliwaste/server/internal/config"
	"deliwaste/server/internal/database"
	"deliwaste/server/internal/logging"
	"deliwaste/server/internal/services"
	"deliwaste/server/internal/store"
	"deliwaste/server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalOptions struct {
	Driver  string
	Timeout time.Duration
}

// session is what every subcommand needs: a migrated store plus settings.
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	store store.Store
	close func() error
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{Timeout: 2 * time.Minute}

	root := &cobra.Command{
		Use:           "wastectl",
		Short:         "Seed and inspect the deli waste database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Driver, "driver", "", "Database driver override: postgres|sqlite|memory (default from DATABASE_DRIVER)")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Overall command timeout")

	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newDashboardCmd(opts))
	return root
}

func openSession(opts *globalOptions) (*session, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	if opts.Driver != "" {
		cfg.DatabaseDriver = opts.Driver
	}
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.DatabaseDriver)
	}

	log, err := logging.New(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	st, closeStore, err := database.OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, store: st, close: closeStore}, nil
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		s.log.Warn("close store failed", zap.Error(err))
	}
	_ = s.log.Sync()
}

func commandContext(cmd *cobra.Command, opts *globalOptions) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opts.Timeout)
}

// dropCachedResults clears the server's cached dashboards and plans after a
// direct write to the store. Without Redis there is nothing to clear.
func dropCachedResults(ctx context.Context, sess *session) {
	cfg := sess.cfg
	if cfg.RedisURL == "" && len(cfg.RedisSentinelAddrs) == 0 {
		return
	}
	client, err := database.ConnectRedis(cfg.RedisURL, cfg.RedisSentinelAddrs, cfg.RedisMasterName, sess.log)
	if err != nil {
		sess.log.Warn("redis unavailable, cached results expire after CACHE_TTL", zap.Error(err))
		return
	}
	defer func() { _ = database.CloseRedis(client) }()

	services.NewRedisResultCache(utils.NewRedisClient(client), cfg.CacheTTL, sess.log).Invalidate(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSeedCmd(opts *globalOptions) *cobra.Command {
	var (
		days int
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default items and random waste history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			seeder := services.NewSeeder(sess.store, rand.New(rand.NewSource(seed)), sess.cfg.Location(), sess.log)
			res, err := seeder.Seed(ctx, days)
			if err != nil {
				return err
			}
			dropCachedResults(ctx, sess)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items and %d waste entries over %d days\n",
				res.ItemsCreated, res.EntriesCreated, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Number of days of history, today included")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	return cmd
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the cook plan for a day as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			svc := services.NewTomorrowPlanService(sess.store, nil,
				services.PlanSettingsFromConfig(sess.cfg), sess.cfg.Location(), sess.log)
			plan, err := svc.BuildTomorrowPlan(ctx, target)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target date YYYY-MM-DD (default tomorrow)")
	return cmd
}

func newDashboardCmd(opts *globalOptions) *cobra.Command {
	var view, anchor string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard for a view as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			svc := services.NewDashboardService(sess.store, nil, sess.cfg.Location(), sess.log)
			dashboard, err := svc.BuildDashboard(ctx, view, anchor)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dashboard)
		},
	}
	cmd.Flags().StringVar(&view, "view", string(services.ViewWeek), "day, week or month")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Anchor date YYYY-MM-DD (default today)")
	return cmd
}
