package main

import (
	"context"
	"fmt"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/server"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/services"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/session"
	"github.com/urfave/cli/v3"
)

// Auth performs the interactive authorization flow once and stores the
// resulting refresh token, so a later serve starts without user interaction.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.loadConfig(configPath)
	if err := config.Validate(); err != nil {
		return err
	}

	exchange, err := services.NewTokenExchange(
		config.Spotify.ClientID,
		config.Spotify.ClientSecret,
		config.Spotify.RedirectURI,
	)
	if err != nil {
		return fmt.Errorf("failed to create token exchange: %w", err)
	}

	authAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.AuthPort)
	flow := server.NewAuthFlow(r.logger, authAddr, exchange.AuthURL)

	code, err := flow.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("authorization flow failed: %w", err)
	}

	token, err := exchange.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	store := session.NewStore(config.Spotify.RefreshTokenPath)
	if err := store.Save(token.RefreshToken); err != nil {
		return err
	}

	player := services.NewSpotifyService(services.TokenProviderFunc(
		func(context.Context) (string, error) { return token.AccessToken, nil },
	), nil)

	if user, err := player.CurrentUser(ctx); err == nil {
		r.writePlain("✓ Authorized as %s\n", user.DisplayName)
	} else {
		r.logger.Warnf("failed to fetch user profile %v", err)
		r.writePlain("✓ Authorization successful\n")
	}

	r.writePlain("✓ Refresh token saved to %s\n", store.Path())
	r.writePlain("✓ Access valid until %s\n", token.Expiry.Local())

	return nil
}
