// Command setup prepares the service's external state: it applies the
// database migrations and creates the build archive bucket.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/mmlnetwork/mmlpack/internal/postgresutil"
	"github.com/mmlnetwork/mmlpack/internal/s3util"
)

type config struct {
	Postgres           postgresutil.Config `envPrefix:"POSTGRES_"`
	S3ConnectionString string              `env:"S3_CONNECTION_STRING"`
}

func main() {
	if err := run(context.Background(), os.Environ()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func run(ctx context.Context, environ []string) error {
	var cfg config
	err := env.ParseWithOptions(&cfg, env.Options{
		Environment: env.ToMap(environ),
		Prefix:      "MML_",
	})
	if err != nil {
		return err
	}

	if err = postgresutil.Setup(cfg.Postgres.DSN); err != nil {
		return err
	}

	if cfg.S3ConnectionString == "" {
		return nil
	}
	s3Client, err := s3util.NewClient(cfg.S3ConnectionString)
	if err != nil {
		return err
	}
	return s3util.SetupBucket(ctx, s3Client)
}
