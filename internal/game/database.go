package game

import (
	"context"

	"github.com/google/uuid"
)

// Database is the read side of game storage plus API key issuing.
type Database interface {
	GetOwner(ctx context.Context, ownerID uuid.UUID) (*Owner, error)

	// GetOwnedGame returns ErrGameNotFound when the game is missing or
	// belongs to another owner.
	GetOwnedGame(ctx context.Context, ownerID uuid.UUID, gameID string) (*Game, error)
	GetGame(ctx context.Context, gameID string) (*Game, error)
	GetGameByAPIKey(ctx context.Context, apiKey string) (*Game, error)
	GetOwnedContainer(ctx context.Context, ownerID uuid.UUID, containerID string) (*Container, *Game, error)
	GetContainer(ctx context.Context, gameID, containerID string) (*Container, error)

	SetServerAPIKey(ctx context.Context, ownerID uuid.UUID, gameID, apiKey string) (*Game, error)
}
