package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/quacker/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for quacker",
	Example: `  # Show version info
  quacker version

  # Plain output (for scripts)
  quacker version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), versionPlain)
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

func printVersion(out io.Writer, plain bool) {
	label := fmt.Sprint
	if !plain {
		label = color.New(color.FgCyan, color.Bold).SprintFunc()
	}
	info := build.Current()
	fmt.Fprintf(out, "%s %s\n", label("quacker"), info.Version)
	fmt.Fprintf(out, "commit: %s\n", info.Commit)
	fmt.Fprintf(out, "built: %s\n", info.BuildDate)
	fmt.Fprintf(out, "go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "platform: %s\n", info.Platform)
}
