package rojo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// ContainerWorkDir is where DockerRunner mounts the workspace.
const ContainerWorkDir = "/workspace"

var _ Runner = (*DockerRunner)(nil)

// DockerRunner runs the build tool inside a throwaway container whose
// entrypoint is the tool. The workspace is bind-mounted read-write and
// the container has no network.
type DockerRunner struct {
	Client *client.Client // required
	Image  string         // required
	Log    *slog.Logger
}

// NewDockerRunner connects to the Docker daemon configured by the environment.
func NewDockerRunner(image string, log *slog.Logger) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("rojo.NewDockerRunner: %w", err)
	}
	return &DockerRunner{Client: cli, Image: image, Log: log}, nil
}

// Run implements Runner.
func (r *DockerRunner) Run(ctx context.Context, dir string, args []string, out io.Writer) (int, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	cfg := &container.Config{
		Image:        r.Image,
		Cmd:          strslice.StrSlice(args),
		AttachStdout: true,
		AttachStderr: true,
	}
	hostCfg := &container.HostConfig{
		NetworkMode:    "none",
		CapDrop:        strslice.StrSlice{"ALL"},
		ReadonlyRootfs: true,
	}
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return -1, err
		}
		cfg.WorkingDir = ContainerWorkDir
		hostCfg.Mounts = []mount.Mount{{
			Type:   mount.TypeBind,
			Source: absDir,
			Target: ContainerWorkDir,
		}}
	}

	createResp, err := r.Client.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		if client.IsErrNotFound(err) {
			return -1, fmt.Errorf("%w: %w", ErrToolNotFound, err)
		}
		return -1, err
	}
	defer func() {
		// Force also kills a container left running by a cancelled ctx.
		removeCtx := context.WithoutCancel(ctx)
		err := r.Client.ContainerRemove(removeCtx, createResp.ID, container.RemoveOptions{Force: true})
		if err != nil {
			log.Error("didn't remove container", "id", createResp.ID, "error", err)
		}
	}()
	if len(createResp.Warnings) > 0 {
		log.Warn("container created with warnings", "id", createResp.ID, "warnings", createResp.Warnings)
	}

	if err = r.Client.ContainerStart(ctx, createResp.ID, container.StartOptions{}); err != nil {
		return -1, err
	}

	var waitResp container.WaitResponse
	waitRespCh, errCh := r.Client.ContainerWait(ctx, createResp.ID, container.WaitConditionNotRunning)
	select {
	case err = <-errCh:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, ctxErr
		}
		return -1, err
	case waitResp = <-waitRespCh:
	case <-ctx.Done():
		return -1, ctx.Err()
	}
	if waitResp.Error != nil {
		return -1, errors.New(waitResp.Error.Message)
	}

	logs, err := r.Client.ContainerLogs(ctx, createResp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return -1, err
	}
	defer logs.Close()
	if _, err = stdcopy.StdCopy(out, out, logs); err != nil {
		return -1, err
	}

	return int(waitResp.StatusCode), nil
}
