package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/server"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/services"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/session"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/shared"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/tracker"
	"github.com/urfave/cli/v3"
)

// Serve runs the bridge: the credential manager, the playback poll loop, and
// the websocket server, until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.loadConfig(configPath)
	if err := config.Validate(); err != nil {
		r.writePlain("Enter your Spotify application's Client ID and Secret into %s.\n", configPath)
		r.writePlain("Make sure %q is set as the application's redirect URI.\n", config.Spotify.RedirectURI)
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

	manager := session.NewManager(session.ManagerOpts{
		Logger:     shared.WithLogger(r.logger, "component", "session"),
		Exchange:   exchange,
		Authorizer: flow,
		Store:      session.NewStore(config.Spotify.RefreshTokenPath),
	})

	player := services.NewSpotifyService(manager, nil)

	hub := server.NewHub(shared.WithLogger(r.logger, "component", "hub"))
	defer hub.Close()

	svc := tracker.NewService(tracker.ServiceOpts{
		Player:          player,
		Hub:             hub,
		Logger:          shared.WithLogger(r.logger, "component", "tracker"),
		RefreshInterval: time.Duration(config.Tracker.RefreshIntervalMs) * time.Millisecond,
		IdleBackoff:     time.Duration(config.Tracker.IdleBackoffMs) * time.Millisecond,
	})
	hub.SetController(svc)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(hub)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{Addr: serverAddr, Handler: router}

	errs := make(chan error, 1)
	go func() {
		r.logger.Info("websocket server running", "addr", serverAddr, "path", server.BridgePath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	go func() {
		if err := manager.Run(ctx); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	// Log who we are acting for once the first credential lands.
	go func() {
		if _, err := manager.Token(ctx); err != nil {
			return
		}
		if user, err := player.CurrentUser(ctx); err == nil {
			r.logger.Info("authorized", "user", user.DisplayName)
		}
	}()

	go func() {
		if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutting down")
	case err = <-errs:
		r.logger.Error("fatal error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		r.logger.Warn("server shutdown failed", "error", shutdownErr)
	}

	return err
}
