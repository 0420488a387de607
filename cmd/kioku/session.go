package main

import (
	"fmt"
	"time"

	"github.com/harunnryd/kioku/internal/session"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage work sessions",
	Long:  `Start, end, and inspect work sessions per project.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <project>",
	Short: "Start a session on a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, lock, err := openLockedStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		started, err := session.NewManager(s).StartSession(args[0])
		if err != nil {
			return err
		}
		if err := s.ImmediateSave(); err != nil {
			return err
		}

		fmt.Printf("Started session %s on %s\n", started.ID, started.ProjectID)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, lock, err := openLockedStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		ended, err := session.NewManager(s).EndSession(args[0])
		if err != nil {
			return err
		}
		if err := s.ImmediateSave(); err != nil {
			return err
		}

		fmt.Printf("Ended session %s (%s)\n", ended.ID, ended.ExitTime.Sub(ended.EntryTime).Round(time.Minute))
		return nil
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls <project>",
	Short: "List a project's sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		sessions := s.GetSessionsByProject(args[0])
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			fmt.Println("\nRun 'kioku session start' to create one.")
			return nil
		}

		for _, sess := range sessions {
			state := "open"
			if sess.ExitTime != nil {
				state = "ended " + sess.ExitTime.Format("2006-01-02 15:04")
			}
			fmt.Printf("- %s  entered %s  %s\n", sess.ID, sess.EntryTime.Format("2006-01-02 15:04"), state)
		}

		fmt.Printf("\nTotal: %d session(s)\n", len(sessions))
		return nil
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <session-id> <rating>",
	Short: "Rate a session from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rating int
		if _, err := fmt.Sscanf(args[1], "%d", &rating); err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}

		s, lock, err := openLockedStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		if err := session.NewManager(s).RecordFeedback(args[0], rating); err != nil {
			return err
		}
		return s.ImmediateSave()
	},
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(feedbackCmd)
}
