package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(cfg *GlobalConfig) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show scaffold version information.

Displays:
  - scaffold version, commit, and build date
  - the Go toolchain found on PATH, which the app generator targets`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			info := version.Get()
			tc := version.DetectToolchain(c.Context())

			if format == "" {
				fmt.Fprintln(cfg.out(), version.FullVersionString(info, tc))
				if tc.Found && !tc.Compatible {
					output.Warn("go toolchain is older than supported", "version", tc.Version, "minimum", version.MinGoVersion)
				}
				return nil
			}

			return printValue(cfg, format, struct {
				version.Info
				Toolchain version.ToolchainInfo `json:"toolchain"`
			}{info, tc})
		},
	}

	c.Flags().StringVarP(&format, "output", "o", "", "Output format: yaml, json (default: text)")

	return c
}
