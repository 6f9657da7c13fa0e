package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug identifies the GitHub repository releases are published to.
const githubRepoSlug = "giantswarm/mcp-vsphere"

// newSelfUpdateCmd creates the Cobra command for updating the binary in place.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update mcp-vsphere to the latest version",
		Long: `Update the mcp-vsphere binary to the latest release published
on GitHub. The running executable is replaced in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd)
		},
	}
}

// runSelfUpdate checks GitHub for a newer release and replaces the current
// executable with it.
func runSelfUpdate(cmd *cobra.Command) error {
	version := rootCmd.Version
	if version == "" || version == "dev" {
		return fmt.Errorf("cannot self-update a development version; install a released build first")
	}

	ctx := cmd.Context()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s in %s", runtime.GOOS, runtime.GOARCH, githubRepoSlug)
	}

	if latest.LessOrEqual(version) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current version (%s) is the latest\n", version)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updating from %s to %s...\n", version, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated to version %s\n", latest.Version())
	return nil
}
