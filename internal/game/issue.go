package game

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const issueAPIKeyAttempts = 3

// IssueAPIKey generates a server API key for an owned game and stores it,
// replacing the previous one. A key collision is retried with a new key.
func IssueAPIKey(ctx context.Context, db Database, random io.Reader, ownerID uuid.UUID, gameID string) (*Game, error) {
	var lastErr error
	for range issueAPIKeyAttempts {
		key, err := NewAPIKey(random)
		if err != nil {
			return nil, fmt.Errorf("game.IssueAPIKey: %w", err)
		}

		g, err := db.SetServerAPIKey(ctx, ownerID, gameID, key)
		if errors.Is(err, ErrAPIKeyConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("game.IssueAPIKey: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("game.IssueAPIKey: %w", lastErr)
}
