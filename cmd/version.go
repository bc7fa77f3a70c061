package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "(devel)"

// buildVersion returns the module version and, when recorded, the VCS revision
// amalgam was built from.
func buildVersion(info *debug.BuildInfo) (string, string) {
	version := info.Main.Version
	if version == "" {
		version = unknownVersion
	}

	var revision string

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			revision = setting.Value
		}
	}

	return version, revision
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the amalgam version",
		Long:  "Print the amalgam module version, the VCS revision and the Go toolchain it was built with.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("amalgam", unknownVersion)
				return
			}

			version, revision := buildVersion(info)

			cmd.Println("amalgam", version)

			if revision != "" {
				cmd.Println("revision", revision)
			}

			cmd.Println("go", info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
