package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/demostack/usersapi/internal/app"
	"github.com/demostack/usersapi/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the server entrypoint and exits on unrecoverable errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(args []string) error {
	fs := flag.NewFlagSet("usersapi", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "server port (overrides config)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	path := strings.TrimSpace(*cfgPath)
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, errLoad := config.Load(path)
	if errLoad != nil {
		return errLoad
	}
	if *port != 0 {
		if errValidate := validatePort(*port); errValidate != nil {
			return errValidate
		}
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
