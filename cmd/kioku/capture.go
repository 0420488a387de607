package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kioku/internal/capture"
	"github.com/harunnryd/kioku/internal/extractor"
	"github.com/harunnryd/kioku/internal/session"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/spf13/cobra"
)

var captureInterrupt bool

var captureCmd = &cobra.Command{
	Use:   "capture <project> <text...>",
	Short: "Capture context at the end of a session",
	Long:  `Record a context snapshot against the project's active session and force it to disk.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, lock, err := openLockedStore(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		projectID := args[0]
		input := strings.Join(args[1:], " ")

		active, ok := session.NewManager(s).ActiveSession(projectID)
		if !ok {
			return fmt.Errorf("no active session on project %s", projectID)
		}

		capType := store.CaptureQuick
		if captureInterrupt {
			capType = store.CaptureInterrupt
		}

		mod := capture.NewModule(s, extractor.NewRegexExtractor())
		done, err := mod.Complete(context.Background(), active.ID, capType, input)
		if err != nil {
			return err
		}

		fmt.Printf("Captured %s against session %s\n", done.ID, active.ID)
		return nil
	},
}

func init() {
	captureCmd.Flags().BoolVarP(&captureInterrupt, "interrupt", "i", false, "mark the capture as an interruption")
	rootCmd.AddCommand(captureCmd)
}
