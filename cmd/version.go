package cmd

import (
	"fmt"
	"runtime"

	"golang-netstate/internal/pkg/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and git info",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetGitInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "Tag: %s\nBranch: %s\nCommit: %s\nDirty: %v\nGo: %s\n",
			info.Tag, info.Branch, info.Commit, info.Dirty, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
