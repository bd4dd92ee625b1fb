package pack

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmlnetwork/mmlpack/internal/game"
	"github.com/mmlnetwork/mmlpack/internal/integrity"
	"github.com/mmlnetwork/mmlpack/internal/luau"
	"github.com/mmlnetwork/mmlpack/internal/rbxmx"
)

// BootstrapVersion is written into the manifest folder of bootstrap bundles.
const BootstrapVersion = "2.0.0"

const modelContentType = "application/xml"

// Bootstrap returns an XML model bundling the library modules and a
// bootstrap script for g. No build tool is involved.
func (p *Packager) Bootstrap(ctx context.Context, g *game.Game) (*Artifact, error) {
	if !g.HasAPIKey() {
		return nil, fmt.Errorf("pack.Packager: %w", ErrNoAPIKey)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}

	buildID, err := NewBuildID(p.now(), p.Random)
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	log := p.log().With("build_id", buildID, "game_id", g.ID)

	files, err := p.readLibrary(log)
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	modules := make([]rbxmx.Module, 0, len(files))
	for _, f := range files {
		modules = append(modules, rbxmx.Module{
			Name:   strings.TrimSuffix(f.Name, ".lua"),
			Source: string(f.Content),
		})
	}

	data, err := rbxmx.Bootstrap(&rbxmx.BootstrapParams{
		GameID:          g.ID,
		BuildID:         buildID,
		Version:         BootstrapVersion,
		Modules:         modules,
		BootstrapSource: luau.RenderBootstrap(ViewFromGame(g), buildID, p.Options),
	})
	if err != nil {
		return nil, fmt.Errorf("pack.Packager: %w", err)
	}
	verified := integrity.Verify(data, buildID)
	if !verified {
		log.Warn("didn't find build marker in bootstrap")
	}
	log.Info("built bootstrap", "modules", len(modules), "size", len(data), "verified", verified)

	return &Artifact{
		BuildID:     buildID,
		Filename:    "MML_Bootstrap_" + luau.Sanitize(g.ID) + ".rbxmx",
		ContentType: modelContentType,
		Data:        data,
		Verified:    verified,
	}, nil
}

// ContainerModel returns an XML model of a single container.
func ContainerModel(c *game.Container) (*Artifact, error) {
	data, err := rbxmx.ContainerModel(&rbxmx.ContainerModelParams{
		ContainerID:   c.ID,
		ContainerType: string(c.Type),
		GameID:        c.GameID,
	})
	if err != nil {
		return nil, fmt.Errorf("pack.ContainerModel: %w", err)
	}

	name := c.Name
	if name == "" {
		name = c.ID
	}
	return &Artifact{
		Filename:    "MMLContainer_" + luau.Sanitize(name) + ".rbxmx",
		ContentType: modelContentType,
		Data:        data,
		Verified:    true,
	}, nil
}
