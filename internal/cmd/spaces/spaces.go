// Package spaces parses spaces service flags and launches the service.
package spaces

import (
	"context"
	"flag"

	entrypoint "github.com/campuscommons/campuscommons/internal/platform/cmd"
	server "github.com/campuscommons/campuscommons/internal/services/spaces/app"
)

// Config holds spaces command configuration.
type Config struct {
	Port int `env:"CAMPUS_COMMONS_SPACES_PORT" envDefault:"8081"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The spaces gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the spaces service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSpaces, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
