package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/integrity"
	"github.com/mmlnetwork/mmlpack/internal/pack"
	"github.com/mmlnetwork/mmlpack/internal/rojo"
	"github.com/mmlnetwork/mmlpack/internal/workspace"
)

var errUnverified = errors.New("build marker not found")

// packFlags are the packaging flags shared by the commands.
type packFlags struct {
	cfg pack.Config
}

func (f *packFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.cfg.LibraryDir, "library-dir", "roblox", "directory of the shared library files")
	flags.StringVar(&f.cfg.APIBaseURL, "api-base-url", "http://localhost:3000/api/v1", "API base URL embedded in the scripts")
	flags.DurationVar(&f.cfg.UpdateInterval, "update-interval", 30*time.Second, "update interval embedded in the scripts")
	flags.BoolVar(&f.cfg.DebugScripts, "debug-scripts", false, "enable debug output in the scripts")
	flags.BoolVar(&f.cfg.EnablePositionSync, "position-sync", true, "enable position sync in the scripts")
}

func newRenderCommand() *cobra.Command {
	var (
		pf      packFlags
		outDir  string
		buildID string
	)

	cmd := &cobra.Command{
		Use:   "render GAME_FILE",
		Short: "Write the workspace of a game without building it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGameFile(args[0])
			if err != nil {
				return err
			}
			if buildID == "" {
				if buildID, err = pack.NewBuildID(time.Now(), nil); err != nil {
					return err
				}
			}

			ws, err := workspace.Prepare(outDir, buildID)
			if err != nil {
				return err
			}
			p := pack.NewPackager(&pf.cfg, nil, slog.Default())
			if err = p.Populate(ws, g); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ws.Dir)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to create the workspace in")
	cmd.Flags().StringVar(&buildID, "build-id", "", "build id (default: generated)")
	return cmd
}

func newBuildCommand() *cobra.Command {
	var (
		pf     packFlags
		out    string
		runner string
	)

	cmd := &cobra.Command{
		Use:   "build GAME_FILE",
		Short: "Build the package of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGameFile(args[0])
			if err != nil {
				return err
			}

			r, err := newRunner(&pf.cfg, runner)
			if err != nil {
				return err
			}

			p := pack.NewPackager(&pf.cfg, r, slog.Default())
			artifact, err := p.Generate(cmd.Context(), g)
			if err != nil {
				return err
			}

			name := out
			if name == "" {
				name = artifact.Filename
			}
			if err = os.WriteFile(name, artifact.Data, 0o666); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s build_id=%s verified=%t attempts=%d\n", name, artifact.BuildID, artifact.Verified, artifact.Attempts)
			return nil
		},
	}
	pf.register(cmd)
	pf.registerBuild(cmd, &runner)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: the package file name)")
	return cmd
}

func newPrebuiltCommand() *cobra.Command {
	var (
		pf     packFlags
		outDir string
		runner string
	)

	cmd := &cobra.Command{
		Use:   "prebuilt [TYPE...]",
		Short: "Build container models not bound to a game (default: every type)",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := args
			if len(types) == 0 {
				for _, t := range prebuiltTypes {
					types = append(types, string(t))
				}
			}
			for _, t := range types {
				if _, ok := game.ContainerTypeFromString(t); !ok {
					return fmt.Errorf("%w: %q", pack.ErrInvalidContainerType, t)
				}
			}

			r, err := newRunner(&pf.cfg, runner)
			if err != nil {
				return err
			}
			p := pack.NewPackager(&pf.cfg, r, slog.Default())

			if err = os.MkdirAll(outDir, 0o777); err != nil {
				return err
			}
			for _, t := range types {
				artifact, err := p.Prebuilt(cmd.Context(), t)
				if err != nil {
					return err
				}
				name := filepath.Join(outDir, artifact.Filename)
				if err = os.WriteFile(name, artifact.Data, 0o666); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s build_id=%s verified=%t attempts=%d\n", name, artifact.BuildID, artifact.Verified, artifact.Attempts)
			}
			return nil
		},
	}
	pf.registerBuild(cmd, &runner)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the models to")
	return cmd
}

var prebuiltTypes = []game.ContainerType{game.ContainerTypeDisplay, game.ContainerTypeNPC, game.ContainerTypeMinigame}

// registerBuild registers the flags of commands that run the build tool.
func (f *packFlags) registerBuild(cmd *cobra.Command, runner *string) {
	flags := cmd.Flags()
	flags.StringVar(runner, "runner", pack.RunnerProcess, "process or docker")
	flags.StringVar(&f.cfg.Tool, "tool", "rojo", "build tool executable")
	flags.StringVar(&f.cfg.DockerImage, "docker-image", "mml-rojo", "build tool image for the docker runner")
	flags.StringVar(&f.cfg.WorkDir, "work-dir", os.TempDir(), "workspace root")
	flags.DurationVar(&f.cfg.Timeout, "timeout", 2*time.Minute, "per-attempt timeout")
	flags.IntVar(&f.cfg.MaxAttempts, "max-attempts", 2, "build attempts")
	flags.BoolVar(&f.cfg.ProbeVersion, "probe-version", true, "log the build tool version")
}

func newRunner(cfg *pack.Config, runner string) (rojo.Runner, error) {
	switch runner {
	case pack.RunnerProcess:
		return &rojo.ProcessRunner{Tool: cfg.Tool}, nil
	case pack.RunnerDocker:
		return rojo.NewDockerRunner(cfg.DockerImage, slog.Default())
	default:
		return nil, fmt.Errorf("unknown runner %q", runner)
	}
}

func newVerifyCommand() *cobra.Command {
	var buildID string

	cmd := &cobra.Command{
		Use:   "verify PACKAGE_FILE",
		Short: "Check that a package carries the marker of a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !integrity.Verify(data, buildID) {
				return fmt.Errorf("%s: %w", filepath.Base(args[0]), errUnverified)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&buildID, "build-id", "", "expected build id")
	_ = cmd.MarkFlagRequired("build-id")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		ownerID string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an owner session token with MML_AUTH_SESSION_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("MML_AUTH_SESSION_SECRET")
			if secret == "" {
				return errors.New("MML_AUTH_SESSION_SECRET is not set")
			}
			id, err := uuid.Parse(ownerID)
			if err != nil {
				return fmt.Errorf("invalid owner id: %w", err)
			}

			s, err := auth.New(&auth.Config{SessionSecret: secret}).CreateSession(id, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "owner id")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
