package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/client/github"
	"github.com/garrettladley/fixit/internal/version"
)

const (
	repoOwner = "garrettladley"
	repoName  = "fixit"
)

func upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Check for updates and install if available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			currentVersion := version.Get()

			client := github.NewClient(github.WithUserAgent("fixit/" + currentVersion))
			latest, err := client.LatestRelease(ctx, repoOwner, repoName)
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}

			if !version.IsNewer(currentVersion, latest.TagName) {
				fmt.Fprintf(cmd.OutOrStdout(), "fixit is up to date (%s)\n", currentVersion)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updating fixit %s → %s\n", currentVersion, latest.TagName)

			if version.IsHomebrew() {
				return runUpgrade(ctx, "brew", "upgrade", repoName)
			}
			return runUpgrade(ctx, "go", "install", "github.com/"+repoOwner+"/"+repoName+"/cmd/fixit@"+latest.TagName)
		},
	}
}

func runUpgrade(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	fmt.Println("Successfully updated!")
	return nil
}
