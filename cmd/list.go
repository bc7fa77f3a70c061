package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"amalgam.dev/pkg/amalgam/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List input files and what each pass would do with them",
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := loadPlan(cmd.Context())
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), domain.ListArgs{
				Plan:     plan,
				Parallel: viper.GetInt(buildParallelKey),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
