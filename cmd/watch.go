package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/logger"
	"github.com/vslobodin/jobscout/internal/profile"
	"github.com/vslobodin/jobscout/internal/schedule"
)

const (
	defaultWatchInterval = 15 * time.Minute
	defaultRunTimeout    = 5 * time.Minute
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scheduled-search loop until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		zlog.Fatal("config is required")
	}

	orchestrator, cleanup, err := buildOrchestrator(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building orchestrator", zap.Error(err))
	}
	defer cleanup()

	interval := defaultWatchInterval
	if config.Watch != nil {
		if interval, err = parseDuration(config.Watch.Interval, defaultWatchInterval); err != nil {
			zlog.Fatal("parsing watch interval", zap.Error(err))
		}
	}

	tick := func() {
		if err := orchestrator.Tick(ctx); err != nil {
			zlog.Error("tick failed", zap.Error(err))
		}
	}

	if err := runWatch(ctx, zlog, interval, tick); err != nil {
		zlog.Fatal("running watch loop", zap.Error(err))
	}
}

// runWatch drives tick on the cron interval until ctx is cancelled. The
// first run fires immediately so due schedules do not wait a full interval;
// shutdown waits for that run as well as for cron's in-flight jobs.
func runWatch(ctx context.Context, zlog *zap.Logger, interval time.Duration, tick func()) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), tick); err != nil {
		return fmt.Errorf("registering cron job: %w", err)
	}

	c.Start()
	zlog.Info("watch loop started", zap.Duration("interval", interval))

	var initial sync.WaitGroup
	initial.Add(1)
	go func() {
		defer initial.Done()
		tick()
	}()

	<-ctx.Done()
	zlog.Info("shutting down", zap.String("reason", "signal received"))

	// Let in-flight ticks finish before exiting, the startup one included.
	<-c.Stop().Done()
	initial.Wait()
	zlog.Info("watch loop stopped")
	return nil
}

// buildOrchestrator wires store, source, profiles, ranker, notifier and the
// optional dedup set into a ready orchestrator.
func buildOrchestrator(ctx context.Context, config *Config, zlog *zap.Logger) (*schedule.Orchestrator, func(), error) {
	store, closeStore, err := buildStore(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	cleanup := closeStore
	fail := func(err error) (*schedule.Orchestrator, func(), error) {
		cleanup()
		return nil, nil, err
	}

	source, err := buildSource(config, zlog)
	if err != nil {
		return fail(err)
	}

	ranker, err := buildRanker(ctx, config, zlog)
	if err != nil {
		return fail(err)
	}

	notifier, err := buildNotifier(config, zlog)
	if err != nil {
		return fail(err)
	}

	profilesDir := config.ProfilesDir
	if profilesDir == "" {
		profilesDir = "profiles"
	}
	profiles := profile.NewFileProvider(profilesDir)

	orchestrator := schedule.NewOrchestrator(store, source, profiles, ranker, notifier, zlog)

	if config.Watch != nil {
		if config.Watch.Concurrency > 0 {
			orchestrator.Concurrency = config.Watch.Concurrency
		}
		timeout, err := parseDuration(config.Watch.RunTimeout, defaultRunTimeout)
		if err != nil {
			return fail(err)
		}
		orchestrator.RunTimeout = timeout
	}

	seen, closeSeen, err := buildSeenSet(ctx, config)
	if err != nil {
		return fail(err)
	}
	if seen != nil {
		orchestrator.WithSeenSet(seen)
		storeCleanup := cleanup
		cleanup = func() {
			closeSeen()
			storeCleanup()
		}
	}

	return orchestrator, cleanup, nil
}
