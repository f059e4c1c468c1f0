package main

import (
	"context"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default config file for the operator to fill in.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Default config written to %s\n\n", configPath)
	r.writePlain("Enter your Spotify application's Client ID and Secret.\n")
	r.writePlain("Make sure the redirect_uri is registered on the application.\n")

	return nil
}
