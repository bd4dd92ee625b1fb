package gamepg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmlnetwork/mmlpack/internal/game"
)

var _ game.Database = (*Database)(nil)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Database struct {
	db Querier // required
}

func NewDatabase(db Querier) *Database {
	return &Database{db: db}
}

const (
	gameColumns      = `id, name, game_owner_id, server_api_key`
	containerColumns = `id, game_id, name, type, status, position_x, position_y, position_z`
)

// GetOwner implements game.Database.
func (d *Database) GetOwner(ctx context.Context, ownerID uuid.UUID) (*game.Owner, error) {
	query := `
		SELECT id, email
		FROM game_owners
		WHERE id = $1
	`
	args := []any{ownerID}

	rows, _ := d.db.Query(ctx, query, args...)
	o, err := pgx.CollectExactlyOneRow(rows, rowToOwner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	return o, nil
}

// GetOwnedGame implements game.Database.
func (d *Database) GetOwnedGame(ctx context.Context, ownerID uuid.UUID, gameID string) (*game.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1 AND game_owner_id = $2
	`
	args := []any{gameID, ownerID}

	rows, _ := d.db.Query(ctx, query, args...)
	g, err := pgx.CollectExactlyOneRow(rows, rowToGame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrGameNotFound
		}
		return nil, fmt.Errorf("get owned game: %w", err)
	}

	g.Containers, err = d.listContainers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("get owned game: %w", err)
	}

	return g, nil
}

// GetGame implements game.Database.
func (d *Database) GetGame(ctx context.Context, gameID string) (*game.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1
	`
	args := []any{gameID}

	rows, _ := d.db.Query(ctx, query, args...)
	g, err := pgx.CollectExactlyOneRow(rows, rowToGame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	g.Containers, err = d.listContainers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	return g, nil
}

// GetGameByAPIKey implements game.Database.
func (d *Database) GetGameByAPIKey(ctx context.Context, apiKey string) (*game.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE server_api_key = $1
	`
	args := []any{apiKey}

	rows, _ := d.db.Query(ctx, query, args...)
	g, err := pgx.CollectExactlyOneRow(rows, rowToGame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game by api key: %w", err)
	}

	g.Containers, err = d.listContainers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("get game by api key: %w", err)
	}

	return g, nil
}

// GetOwnedContainer implements game.Database.
func (d *Database) GetOwnedContainer(ctx context.Context, ownerID uuid.UUID, containerID string) (*game.Container, *game.Game, error) {
	query := `
		SELECT ` + containerColumns + `
		FROM ad_containers
		WHERE id = $1
	`
	args := []any{containerID}

	rows, _ := d.db.Query(ctx, query, args...)
	c, err := pgx.CollectExactlyOneRow(rows, rowToContainer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrContainerNotFound
		}
		return nil, nil, fmt.Errorf("get owned container: %w", err)
	}

	query = `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1 AND game_owner_id = $2
	`
	args = []any{c.GameID, ownerID}

	rows, _ = d.db.Query(ctx, query, args...)
	g, err := pgx.CollectExactlyOneRow(rows, rowToGame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrContainerNotFound
		}
		return nil, nil, fmt.Errorf("get owned container: %w", err)
	}

	return &c, g, nil
}

// GetContainer implements game.Database.
func (d *Database) GetContainer(ctx context.Context, gameID, containerID string) (*game.Container, error) {
	query := `
		SELECT ` + containerColumns + `
		FROM ad_containers
		WHERE id = $1 AND game_id = $2
	`
	args := []any{containerID, gameID}

	rows, _ := d.db.Query(ctx, query, args...)
	c, err := pgx.CollectExactlyOneRow(rows, rowToContainer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrContainerNotFound
		}
		return nil, fmt.Errorf("get container: %w", err)
	}

	return &c, nil
}

// SetServerAPIKey implements game.Database.
func (d *Database) SetServerAPIKey(ctx context.Context, ownerID uuid.UUID, gameID, apiKey string) (*game.Game, error) {
	query := `
		UPDATE games
		SET server_api_key = $3
		WHERE id = $1 AND game_owner_id = $2
		RETURNING ` + gameColumns + `
	`
	args := []any{gameID, ownerID, apiKey}

	rows, _ := d.db.Query(ctx, query, args...)
	g, err := pgx.CollectExactlyOneRow(rows, rowToGame)
	if err != nil {
		if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			err = game.ErrAPIKeyConflict
		} else if errors.Is(err, pgx.ErrNoRows) {
			err = game.ErrGameNotFound
		}
		return nil, fmt.Errorf("set server api key: %w", err)
	}

	g.Containers, err = d.listContainers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("set server api key: %w", err)
	}

	return g, nil
}

func (d *Database) listContainers(ctx context.Context, gameID string) ([]game.Container, error) {
	query := `
		SELECT ` + containerColumns + `
		FROM ad_containers
		WHERE game_id = $1
		ORDER BY created_at, id
	`
	args := []any{gameID}

	rows, _ := d.db.Query(ctx, query, args...)
	containers, err := pgx.CollectRows(rows, rowToContainer)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return containers, nil
}
