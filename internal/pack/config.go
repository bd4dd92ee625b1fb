package pack

import (
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mmlnetwork/mmlpack/internal/luau"
	"github.com/mmlnetwork/mmlpack/internal/rojo"
)

// Runner kinds.
const (
	RunnerProcess = "process"
	RunnerDocker  = "docker"
)

// Config holds the packaging configuration.
type Config struct {
	WorkDir             string        `env:"WORK_DIR" envDefault:"temp"`
	LibraryDir          string        `env:"LIBRARY_DIR" envDefault:"roblox"`
	Tool                string        `env:"TOOL" envDefault:"rojo"`
	Runner              string        `env:"RUNNER" envDefault:"process"` // process or docker
	DockerImage         string        `env:"DOCKER_IMAGE" envDefault:"mml-rojo"`
	Timeout             time.Duration `env:"TIMEOUT" envDefault:"2m"`
	MaxAttempts         int           `env:"MAX_ATTEMPTS" envDefault:"2"`
	MaxConcurrentBuilds int64         `env:"MAX_CONCURRENT_BUILDS" envDefault:"4"`
	ProbeVersion        bool          `env:"PROBE_VERSION"`

	APIBaseURL         string        `env:"API_BASE_URL" envDefault:"http://localhost:3000/api/v1"`
	UpdateInterval     time.Duration `env:"UPDATE_INTERVAL" envDefault:"30s"`
	DebugScripts       bool          `env:"DEBUG_SCRIPTS"`
	EnablePositionSync bool          `env:"ENABLE_POSITION_SYNC" envDefault:"true"`
}

// NewPackager returns a packager configured by cfg that builds with runner.
func NewPackager(cfg *Config, runner rojo.Runner, log *slog.Logger) *Packager {
	var slots *semaphore.Weighted
	if cfg.MaxConcurrentBuilds > 0 {
		slots = semaphore.NewWeighted(cfg.MaxConcurrentBuilds)
	}

	return &Packager{
		Invoker: &rojo.Invoker{
			Runner:      runner,
			MaxAttempts: cfg.MaxAttempts,
			Timeout:     cfg.Timeout,
			Log:         log.With("component", "rojo"),
		},
		WorkDir:    cfg.WorkDir,
		LibraryDir: cfg.LibraryDir,
		Options: &luau.Options{
			APIBaseURL:         cfg.APIBaseURL,
			UpdateInterval:     cfg.UpdateInterval,
			DebugMode:          cfg.DebugScripts,
			EnablePositionSync: cfg.EnablePositionSync,
		},
		Slots:        slots,
		ProbeVersion: cfg.ProbeVersion,
		Log:          log.With("component", "pack"),
	}
}
