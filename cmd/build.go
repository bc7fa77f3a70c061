package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"amalgam.dev/pkg/amalgam/internal/domain"
	m "amalgam.dev/pkg/amalgam/internal/model"
)

var manifestFlag string

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the amalgamated interface and implementation files",
		Long:  buildLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := loadPlan(cmd.Context())
			if err != nil {
				return err
			}

			return workflow.Build(cmd.Context(), domain.BuildArgs{
				Plan:     plan,
				Parallel: viper.GetInt(buildParallelKey),
				Manifest: m.Path(viper.GetString(buildManifestKey)),
			})
		},
	}

	configureBuildFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func configureBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&manifestFlag, manifestFlagName, "m", "", "also write a YAML manifest of inputs and outputs to this path")
	bindFlagToConfig(cmd.Flags().Lookup(manifestFlagName), buildManifestKey)
}
