package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xbuild/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "xbuild",
	Short:        "Cross-compile the sysroot for custom targets",
	Long:         `Builds a cross-compiled sysroot for targets the installed toolchain has no precompiled libraries for, then drives the external cargo toolchain against it`,
	RunE:         runBuild,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("target", "t", "", "Target triple or path to a custom target spec file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("manifest-path", "", "Path to Cargo.toml")
	rootCmd.AddCommand(buildCmd)
}
