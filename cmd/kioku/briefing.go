package main

import (
	"fmt"

	"github.com/harunnryd/kioku/internal/briefing"

	"github.com/spf13/cobra"
)

var briefingExport string

var briefingCmd = &cobra.Command{
	Use:   "briefing <project>",
	Short: "Show a project briefing",
	Long:  `Render the project's recent sessions and the latest captured context.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		b := briefing.NewGenerator(s, cfg.Briefing.RecentSessions).ForProject(args[0])

		if briefingExport != "" {
			if err := b.Export(briefingExport); err != nil {
				return fmt.Errorf("export briefing: %w", err)
			}
			fmt.Printf("Briefing written to %s\n", briefingExport)
			return nil
		}

		fmt.Println(b.Render())
		return nil
	},
}

func init() {
	briefingCmd.Flags().StringVarP(&briefingExport, "output", "o", "", "write a plain-text briefing to a file instead of the terminal")
	rootCmd.AddCommand(briefingCmd)
}
