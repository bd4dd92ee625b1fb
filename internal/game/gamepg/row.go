package gamepg

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmlnetwork/mmlpack/internal/game"
)

type ownerRow struct {
	ID    uuid.UUID `db:"id"`
	Email string    `db:"email"`
}

func rowToOwner(collectableRow pgx.CollectableRow) (*game.Owner, error) {
	collectedRow, err := pgx.RowToStructByName[ownerRow](collectableRow)
	if err != nil {
		return nil, fmt.Errorf("row to owner: %w", err)
	}
	return &game.Owner{ID: collectedRow.ID, Email: collectedRow.Email}, nil
}

type gameRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	OwnerID      uuid.UUID `db:"game_owner_id"`
	ServerAPIKey *string   `db:"server_api_key"`
}

func rowToGame(collectableRow pgx.CollectableRow) (*game.Game, error) {
	collectedRow, err := pgx.RowToStructByName[gameRow](collectableRow)
	if err != nil {
		return nil, fmt.Errorf("row to game: %w", err)
	}

	g := &game.Game{
		ID:         collectedRow.ID,
		Name:       collectedRow.Name,
		OwnerID:    collectedRow.OwnerID,
		Containers: []game.Container{},
	}
	if collectedRow.ServerAPIKey != nil {
		g.ServerAPIKey = *collectedRow.ServerAPIKey
	}
	return g, nil
}

type containerRow struct {
	ID        string   `db:"id"`
	GameID    string   `db:"game_id"`
	Name      string   `db:"name"`
	Type      string   `db:"type"`
	Status    string   `db:"status"`
	PositionX *float64 `db:"position_x"`
	PositionY *float64 `db:"position_y"`
	PositionZ *float64 `db:"position_z"`
}

func rowToContainer(collectableRow pgx.CollectableRow) (game.Container, error) {
	collectedRow, err := pgx.RowToStructByName[containerRow](collectableRow)
	if err != nil {
		return game.Container{}, fmt.Errorf("row to container: %w", err)
	}

	containerType, known := game.ContainerTypeFromString(collectedRow.Type)
	if !known {
		slog.Default().Warn(
			"unknown type encountered while reading container",
			"type", collectedRow.Type,
			"container_id", collectedRow.ID,
		)
	}

	c := game.Container{
		ID:     collectedRow.ID,
		GameID: collectedRow.GameID,
		Name:   collectedRow.Name,
		Type:   containerType,
		Status: collectedRow.Status,
	}
	// A position is only meaningful when all axes are known.
	if collectedRow.PositionX != nil && collectedRow.PositionY != nil && collectedRow.PositionZ != nil {
		c.Position = &game.Position{
			X: *collectedRow.PositionX,
			Y: *collectedRow.PositionY,
			Z: *collectedRow.PositionZ,
		}
	}
	return c, nil
}
