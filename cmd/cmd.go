// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the bridge service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playback tracker and WebSocket server",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// authCommand performs the interactive Spotify authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and store the refresh token",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// setupCommand writes the default configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a default config.toml to fill in",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}
