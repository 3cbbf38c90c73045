package cli

import (
	"github.com/spf13/cobra"
)

// versionInfo is the payload of the version command.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func addVersionCommand(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  positional(0, 0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{Version: a.info.Version, Commit: a.info.Commit, Date: a.info.Date}
			if info.Version == "" {
				info.Version = "dev"
			}
			if info.Commit == "" {
				info.Commit = "none"
			}
			if info.Date == "" {
				info.Date = "unknown"
			}
			return a.render(cmd.OutOrStdout(), info)
		},
	})
}
