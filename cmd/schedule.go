package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/jobsource"
	"github.com/vslobodin/jobscout/internal/logger"
	"github.com/vslobodin/jobscout/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recurring search schedules",
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a schedule from the configured search criteria",
	Run: func(cmd *cobra.Command, _ []string) {
		withScheduleStore(func(ctx context.Context, store schedule.Store, config *Config, zlog *zap.Logger) error {
			owner, _ := cmd.Flags().GetString("owner")
			if owner == "" {
				owner = config.Owner
			}

			rawCadence, _ := cmd.Flags().GetString("cadence")
			cadence, err := schedule.ParseCadence(rawCadence)
			if err != nil {
				return err
			}

			threshold, _ := cmd.Flags().GetFloat64("threshold")

			s := &schedule.Schedule{
				ID:             uuid.NewString(),
				Owner:          owner,
				Cadence:        cadence,
				Criteria:       jobsource.Criteria(config.Search),
				ScoreThreshold: threshold,
				NextRunAt:      time.Now(),
				Status:         schedule.StatusActive,
			}

			if err := store.Create(ctx, s); err != nil {
				return err
			}

			zlog.Info("schedule created",
				zap.String("schedule", s.ID),
				zap.String("owner", s.Owner),
				zap.String("cadence", string(s.Cadence)),
				zap.Float64("threshold", s.ScoreThreshold),
			)
			return nil
		})
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	Run: func(cmd *cobra.Command, _ []string) {
		withScheduleStore(func(ctx context.Context, store schedule.Store, config *Config, _ *zap.Logger) error {
			owner, _ := cmd.Flags().GetString("owner")

			schedules, err := store.List(ctx, owner)
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Println("no schedules found")
				return nil
			}

			fmt.Printf("%-38s %-12s %-8s %-8s %-22s %s\n", "ID", "OWNER", "CADENCE", "STATUS", "NEXT RUN", "LAST ERROR")
			for _, s := range schedules {
				fmt.Printf("%-38s %-12s %-8s %-8s %-22s %s\n",
					s.ID, s.Owner, s.Cadence, s.Status,
					s.NextRunAt.Format(time.RFC3339), s.LastError,
				)
			}
			return nil
		})
	},
}

var schedulePauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause an active schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		transitionSchedule(args[0], schedule.StatusPaused, nil)
	},
}

var scheduleResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		transitionSchedule(args[0], schedule.StatusActive, nil)
	},
}

var scheduleRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Reactivate a failed schedule and make it due immediately",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		transitionSchedule(args[0], schedule.StatusActive, func(s *schedule.Schedule) {
			s.LastError = ""
			s.NextRunAt = time.Now()
		})
	},
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withScheduleStore(func(ctx context.Context, store schedule.Store, _ *Config, zlog *zap.Logger) error {
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			zlog.Info("schedule deleted", zap.String("schedule", args[0]))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleCreateCmd, scheduleListCmd, schedulePauseCmd, scheduleResumeCmd, scheduleRetryCmd, scheduleDeleteCmd)

	scheduleCreateCmd.Flags().StringP("owner", "o", "", "schedule owner (defaults to the configured owner)")
	scheduleCreateCmd.Flags().StringP("cadence", "c", "DAILY", "run cadence: DAILY or WEEKLY")
	scheduleCreateCmd.Flags().Float64P("threshold", "t", 0.6, "minimum final score for a match to be delivered")

	scheduleListCmd.Flags().StringP("owner", "o", "", "only list schedules for this owner")
}

// withScheduleStore runs fn against the configured schedule store with the
// shared logger/config boilerplate handled.
func withScheduleStore(fn func(ctx context.Context, store schedule.Store, config *Config, zlog *zap.Logger) error) {
	ctx := context.Background()

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

	store, cleanup, err := buildStore(ctx, config)
	if err != nil {
		zlog.Fatal("building schedule store", zap.Error(err))
	}
	defer cleanup()

	if err := fn(ctx, store, config, zlog); err != nil {
		zlog.Fatal("schedule command failed", zap.Error(err))
	}
}

// transitionSchedule moves a schedule to the target status. The store rejects
// transitions the state machine does not allow.
func transitionSchedule(id string, to schedule.Status, mutate func(*schedule.Schedule)) {
	withScheduleStore(func(ctx context.Context, store schedule.Store, _ *Config, zlog *zap.Logger) error {
		s, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		if !schedule.IsTransitionAllowed(s.Status, to) {
			return fmt.Errorf("schedule %s is %s, cannot move to %s", id, s.Status, to)
		}

		s.Status = to
		if mutate != nil {
			mutate(s)
		}
		if err := store.Update(ctx, s); err != nil {
			return err
		}

		zlog.Info("schedule updated", zap.String("schedule", id), zap.String("status", string(to)))
		return nil
	})
}
