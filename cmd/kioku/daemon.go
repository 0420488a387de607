package main

import (
	"fmt"
	"log/slog"

	"github.com/harunnryd/kioku/internal/briefing"
	"github.com/harunnryd/kioku/internal/scheduler"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background tracker",
	Long:  `Hold the workspace open with autosave, stale-session sweeping, and periodic briefing exports until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, lock, err := openLockedStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		s.OnFailure(func(err error) {
			slog.Error("Snapshot save failed, running on cached data", "error", err)
		})

		gen := briefing.NewGenerator(s, cfg.Briefing.RecentSessions)
		engine, err := scheduler.NewEngine(s, gen, cfg.Scheduler, cfg.Briefing.ExportPath)
		if err != nil {
			return err
		}

		s.StartAutoSave()
		if err := engine.Start(); err != nil {
			s.StopAutoSave()
			return err
		}

		fmt.Println("kioku daemon running, press Ctrl+C to stop")

		waitForShutdown()

		engine.Stop()
		s.StopAutoSave()

		// Final flush so nothing dirtied after the last tick is lost.
		if s.Dirty() {
			if err := s.Save(); err != nil {
				slog.Error("Final save failed", "error", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
