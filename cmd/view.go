package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/rulemig/internal/domain"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [report]",
		Short: "View a saved migration run report",
		Long: `Print the summary table of a YAML run report written by migrate --report.
Without an argument the configured output.report path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath := m.Path(viper.GetString(reportConfigKey))
			if len(args) == 1 {
				reportPath = m.Path(args[0])
			}

			_, err := workflow.View(cmd.Context(), domain.ViewArgs{
				Report: reportPath,
				Color:  viper.GetBool(colorConfigKey),
			})

			return err
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
