package pack

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/luau"
	"github.com/mmlnetwork/mmlpack/internal/workspace"
)

var ErrInvalidContainerType = errors.New("invalid container type")

// PrebuiltOutputFile is the artifact the build tool writes for a prebuilt model.
const PrebuiltOutputFile = "prebuilt.rbxmx"

// prebuiltArchiveKey groups the build logs of prebuilt models in the archive.
const prebuiltArchiveKey = "prebuilt"

// PrebuiltFilename returns the file name of the prebuilt model of t.
func PrebuiltFilename(t game.ContainerType) string {
	return "MMLContainer_" + string(t) + ".rbxmx"
}

// NewPrebuiltManifest returns the project of a container model of type t
// not yet bound to a game: a Model holding empty metadata, a stage part and
// the runtime script.
func NewPrebuiltManifest(t game.ContainerType) *workspace.Manifest {
	metadata := &workspace.Node{
		Name:      "MMLMetadata",
		ClassName: "Folder",
		Children: []*workspace.Node{
			{Name: "ContainerId", ClassName: "StringValue", Properties: map[string]any{"Value": ""}},
			{Name: "GameId", ClassName: "StringValue", Properties: map[string]any{"Value": ""}},
			{Name: "Type", ClassName: "StringValue", Properties: map[string]any{"Value": string(t)}},
			{Name: "EnablePositionSync", ClassName: "BoolValue", Properties: map[string]any{"Value": true}},
		},
	}

	stage := &workspace.Node{
		Name:      "Stage",
		ClassName: "Part",
		Properties: map[string]any{
			"Anchored":   true,
			"CanCollide": false,
			"Size":       stageSize(t),
			"Material":   "SmoothPlastic",
			"Color":      []float64{0.6392, 0.6353, 0.6471}, // Medium stone grey
		},
	}
	if t == game.ContainerTypeDisplay {
		stage.Children = []*workspace.Node{{
			Name:      "MMLDisplaySurface",
			ClassName: "SurfaceGui",
			Children: []*workspace.Node{{
				Name:      "Frame",
				ClassName: "Frame",
				Children: []*workspace.Node{
					{Name: "AdImage", ClassName: "ImageLabel"},
					{Name: "AdVideo", ClassName: "VideoFrame"},
				},
			}},
		}}
	}

	return &workspace.Manifest{
		Name: "MMLContainer_" + string(t),
		Tree: &workspace.Node{
			ClassName: "Model",
			Children: []*workspace.Node{
				metadata,
				stage,
				{Name: "MMLContainerRuntime", Path: luau.ContainerRuntimeFile},
			},
		},
	}
}

func stageSize(t game.ContainerType) []float64 {
	switch t {
	case game.ContainerTypeDisplay:
		return []float64{10, 5, 0.5}
	case game.ContainerTypeNPC:
		return []float64{4, 4, 4}
	default:
		return []float64{12, 8, 12}
	}
}

// Prebuilt builds a container model of the named type that isn't bound to
// any game. The type is case-insensitive.
func (p *Packager) Prebuilt(ctx context.Context, containerType string) (*Artifact, error) {
	t, ok := game.ContainerTypeFromString(containerType)
	if !ok {
		return nil, fmt.Errorf("pack.Packager: %w: %q", ErrInvalidContainerType, containerType)
	}

	buildID, err := NewBuildID(p.now(), p.Random)
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	log := p.log().With("build_id", buildID, "container_type", string(t))

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

	err = ws.WriteFiles(map[string]string{
		luau.ContainerRuntimeFile: luau.RenderContainerRuntime(string(t), buildID),
	})
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	if err = ws.WriteManifest(NewPrebuiltManifest(t)); err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}

	result, verified, err := p.build(ctx, log, ws, &buildTarget{
		output:     PrebuiltOutputFile,
		archiveKey: prebuiltArchiveKey,
		event:      Event{BuildID: buildID, Prebuilt: string(t)},
	})
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}

	return &Artifact{
		BuildID:     buildID,
		Filename:    PrebuiltFilename(t),
		ContentType: "application/octet-stream",
		Data:        result.Data,
		Verified:    verified,
		Attempts:    result.Attempts,
	}, nil
}
