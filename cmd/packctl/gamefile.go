package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mmlnetwork/mmlpack/internal/game"
)

// gameFile is the JSON form of a game accepted by render and build.
type gameFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	APIKey     string `json:"apiKey"`
	Containers []struct {
		ID       string         `json:"id"`
		Name     string         `json:"name"`
		Type     string         `json:"type"`
		Position *game.Position `json:"position"`
	} `json:"containers"`
}

func readGameFile(name string) (*game.Game, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var f gameFile
	if err = json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if f.ID == "" {
		return nil, fmt.Errorf("%s: missing id", name)
	}

	g := &game.Game{ID: f.ID, Name: f.Name, ServerAPIKey: f.APIKey}
	for _, c := range f.Containers {
		typ, ok := game.ContainerTypeFromString(c.Type)
		if !ok {
			return nil, fmt.Errorf("%s: container %s: unknown type %q", name, c.ID, c.Type)
		}
		g.Containers = append(g.Containers, game.Container{
			ID:       c.ID,
			GameID:   f.ID,
			Name:     c.Name,
			Type:     typ,
			Position: c.Position,
		})
	}
	return g, nil
}
