package main

import (
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/pack"
	"github.com/mmlnetwork/mmlpack/internal/postgresutil"
	"github.com/mmlnetwork/mmlpack/internal/server"
)

// config holds the application configuration.
type config struct {
	Development bool       `env:"DEVELOPMENT"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	Auth     auth.Config         `envPrefix:"AUTH_"`
	Pack     pack.Config         `envPrefix:"PACK_"`
	Postgres postgresutil.Config `envPrefix:"POSTGRES_"`
	Server   server.Config       `envPrefix:"SERVER_"`

	S3ConnectionString   string `env:"S3_CONNECTION_STRING"`   // empty disables build log archival
	AMQPConnectionString string `env:"AMQP_CONNECTION_STRING"` // empty disables build events
}

// parseConfig parses the application configuration from the environment variables.
func parseConfig(environ []string) (*config, error) {
	var cfg config

	err := env.ParseWithOptions(&cfg, env.Options{
		Environment: env.ToMap(environ),
		Prefix:      "MML_",
	})
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
