// Package pack turns a game into a downloadable package: it renders the
// sources, lays out a workspace, runs the build tool and checks the result.
package pack

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/integrity"
	"github.com/mmlnetwork/mmlpack/internal/luau"
	"github.com/mmlnetwork/mmlpack/internal/rojo"
	"github.com/mmlnetwork/mmlpack/internal/workspace"
)

var ErrNoAPIKey = errors.New("game has no api key")

// LibraryModules are the shared library files copied into every package.
var LibraryModules = []string{
	"MMLGameNetwork.lua",
	"MMLContainerManager.lua",
	"MMLContainerStreamer.lua",
	"MMLRequestManager.lua",
	"MMLAssetStorage.lua",
	"MMLImpressionTracker.lua",
	"MMLUtil.lua",
}

// Event types published after a build.
const (
	EventBuilt  = "package.built"
	EventFailed = "package.failed"
)

// BuildLogFile is the archived name of the build tool output.
const BuildLogFile = "build.log"

// Archive stores build files. See s3util.Archive.
type Archive interface {
	Put(ctx context.Context, gameID, buildID, name, contentType string, body io.Reader) error
}

// Publisher publishes build events. See amqputil.Client.
type Publisher interface {
	PublishJSON(ctx context.Context, typ string, v any) error
}

// Event describes a finished build.
type Event struct {
	BuildID  string    `json:"buildId"`
	GameID   string    `json:"gameId,omitempty"`
	Attempts int       `json:"attempts"`
	Verified bool      `json:"verified"`
	Size     int       `json:"size,omitempty"`
	Prebuilt string    `json:"prebuilt,omitempty"` // container type of a prebuilt model
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// Artifact is a generated file ready to be sent to a client.
type Artifact struct {
	BuildID     string
	Filename    string
	ContentType string
	Data        []byte
	Verified    bool
	Attempts    int
}

// Packager generates game packages. The zero value isn't usable: Invoker
// is required.
type Packager struct {
	Invoker      *rojo.Invoker // required
	WorkDir      string        // default: "temp"
	LibraryDir   string        // default: "roblox"
	Library      []string      // default: LibraryModules
	Options      *luau.Options
	Slots        *semaphore.Weighted // nil means unbounded
	ProbeVersion bool
	Archive      Archive   // optional
	Events       Publisher // optional
	Log          *slog.Logger

	Now    func() time.Time // default: time.Now
	Random io.Reader        // default: crypto/rand
}

func (p *Packager) workDir() string {
	if p.WorkDir == "" {
		return "temp"
	}
	return p.WorkDir
}

func (p *Packager) libraryDir() string {
	if p.LibraryDir == "" {
		return "roblox"
	}
	return p.LibraryDir
}

func (p *Packager) library() []string {
	if p.Library == nil {
		return LibraryModules
	}
	return p.Library
}

func (p *Packager) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Packager) log() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

// NewBuildID returns "{unix milliseconds}_{6 hex chars}".
// If random is nil, crypto/rand is used.
func NewBuildID(now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	b := make([]byte, 3)
	if _, err := io.ReadFull(random, b); err != nil {
		return "", fmt.Errorf("new build id: %w", err)
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + hex.EncodeToString(b), nil
}

// Filename returns the package file name, falling back to the game id
// when the game has no name.
func Filename(gameName, gameID string) string {
	name := gameName
	if name == "" {
		name = gameID
	}
	return luau.PackageName(name) + ".rbxm"
}

// ViewFromGame returns what the renderer needs from g.
func ViewFromGame(g *game.Game) *luau.GameView {
	view := &luau.GameView{
		ID:         g.ID,
		Name:       g.Name,
		APIKey:     g.ServerAPIKey,
		Containers: make([]luau.ContainerView, 0, len(g.Containers)),
	}
	for _, c := range g.Containers {
		cv := luau.ContainerView{ID: c.ID, Name: c.Name, Type: string(c.Type)}
		if c.Position != nil {
			cv.Position = &luau.Vector3{X: c.Position.X, Y: c.Position.Y, Z: c.Position.Z}
		}
		view.Containers = append(view.Containers, cv)
	}
	return view
}

// Generate builds the package of g. The workspace is removed before
// Generate returns, whatever the outcome.
func (p *Packager) Generate(ctx context.Context, g *game.Game) (*Artifact, error) {
	if !g.HasAPIKey() {
		return nil, fmt.Errorf("pack.Packager: %w", ErrNoAPIKey)
	}

	buildID, err := NewBuildID(p.now(), p.Random)
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	log := p.log().With("build_id", buildID, "game_id", g.ID)

	ws, err := workspace.Prepare(p.workDir(), buildID)
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	ws.Log = log
	defer func() {
		if removeErr := ws.Remove(); removeErr != nil {
			log.Warn("didn't remove workspace", "dir", ws.Dir, "error", removeErr)
		}
	}()

	if err = p.Populate(ws, g); err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}

	result, verified, err := p.build(ctx, log, ws, &buildTarget{
		archiveKey: g.ID,
		event:      Event{BuildID: buildID, GameID: g.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}

	return &Artifact{
		BuildID:     buildID,
		Filename:    Filename(g.Name, g.ID),
		ContentType: "application/octet-stream",
		Data:        result.Data,
		Verified:    verified,
		Attempts:    result.Attempts,
	}, nil
}

// buildTarget describes what a build produces, for archival and events.
type buildTarget struct {
	output     string // default: rojo.OutputFile
	archiveKey string
	event      Event
}

// build runs the build tool in ws once a slot is free, then archives the
// log, verifies the output and publishes an event. Only the build itself
// can fail it.
func (p *Packager) build(ctx context.Context, log *slog.Logger, ws *workspace.Workspace, target *buildTarget) (*rojo.Result, bool, error) {
	if p.Slots != nil {
		if err := p.Slots.Acquire(ctx, 1); err != nil {
			return nil, false, err
		}
		defer p.Slots.Release(1)
	}

	if p.ProbeVersion {
		if version, err := p.Invoker.Version(ctx); err != nil {
			log.Warn("didn't probe build tool version", "error", err)
		} else {
			log.Info("probed build tool version", "version", version)
		}
	}

	started := p.now()
	result, err := p.Invoker.Build(ctx, &rojo.BuildParams{
		Dir:         ws.Dir,
		Output:      target.output,
		BeforeRetry: ws.RewriteManifest,
	})
	if err != nil {
		if buildErr := (*rojo.BuildError)(nil); errors.As(err, &buildErr) {
			p.archiveLog(ctx, log, target.archiveKey, ws.BuildID, buildErr.Log)
			log.Error("build failed", "attempts", buildErr.Attempts, "exit_code", buildErr.ExitCode, "timeout", buildErr.Timeout, "error", err)
			e := target.event
			e.Attempts = buildErr.Attempts
			e.Error = err.Error()
			p.publish(ctx, log, EventFailed, &e)
		}
		return nil, false, err
	}
	p.archiveLog(ctx, log, target.archiveKey, ws.BuildID, result.Log)

	verified := integrity.Verify(result.Data, ws.BuildID)
	if !verified {
		log.Warn("didn't find build marker in package")
	}
	log.Info("built package", "attempts", result.Attempts, "size", len(result.Data), "verified", verified, "duration", p.now().Sub(started))

	e := target.event
	e.Attempts = result.Attempts
	e.Verified = verified
	e.Size = len(result.Data)
	p.publish(ctx, log, EventBuilt, &e)

	return result, verified, nil
}

// Populate writes the rendered sources, the library and the manifest of g
// into ws.
func (p *Packager) Populate(ws *workspace.Workspace, g *game.Game) error {
	files := luau.Render(ViewFromGame(g), ws.BuildID, p.Options)
	if err := ws.WriteFiles(files); err != nil {
		return err
	}

	copied, err := ws.CopyLibrary(p.libraryDir(), p.library())
	if err != nil {
		return err
	}

	modules := append([]string{luau.ConfigModuleFile}, copied...)
	scripts := []string{luau.IntegrationScriptFile, luau.ContainerScriptFile, luau.SetupScriptFile}
	return ws.WriteManifest(workspace.NewManifest(luau.PackageName(g.Name), modules, scripts))
}

func (p *Packager) archiveLog(ctx context.Context, log *slog.Logger, gameID, buildID string, data []byte) {
	if p.Archive == nil {
		return
	}
	// The log is worth keeping even when the request was canceled.
	ctx = context.WithoutCancel(ctx)
	if err := p.Archive.Put(ctx, gameID, buildID, BuildLogFile, "text/plain; charset=utf-8", bytes.NewReader(data)); err != nil {
		log.Warn("didn't archive build log", "error", err)
	}
}

func (p *Packager) publish(ctx context.Context, log *slog.Logger, typ string, e *Event) {
	if p.Events == nil {
		return
	}
	e.Time = p.now().UTC()
	if err := p.Events.PublishJSON(context.WithoutCancel(ctx), typ, e); err != nil {
		log.Warn("didn't publish build event", "type", typ, "error", err)
	}
}

// readLibrary reads the library modules, skipping missing ones.
func (p *Packager) readLibrary(log *slog.Logger) ([]libraryFile, error) {
	var files []libraryFile
	for _, name := range p.library() {
		content, err := os.ReadFile(filepath.Join(p.libraryDir(), name))
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("didn't find library file", "name", name, "dir", p.libraryDir())
			continue
		} else if err != nil {
			return nil, err
		}
		files = append(files, libraryFile{Name: name, Content: content})
	}
	return files, nil
}

type libraryFile struct {
	Name    string
	Content []byte
}
